package source

import (
	"context"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/transport/workday"
)

// Querier lists postings from the job board.
type Querier interface {
	QueryAll(ctx context.Context, q workday.Query, limit int) ([]*record.Record, error)
}

// Fetcher returns the raw detail JSON of a posting, possibly from a cache.
type Fetcher interface {
	Fetch(ctx context.Context, externalPath string) ([]byte, error)
}
