// Package source loads job records from the job board and enriches them with
// posting details.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/transport/workday"
)

// DefaultParallelism bounds concurrent detail fetches.
const DefaultParallelism = 4

// Loader queries postings and enriches them with bounded concurrency.
type Loader struct {
	query       Querier
	fetch       Fetcher
	parallelism int
	logger      *zap.Logger
}

// New creates a loader.
func New(q Querier, f Fetcher) *Loader {
	return &Loader{
		query:       q,
		fetch:       f,
		parallelism: DefaultParallelism,
		logger:      zap.NewNop(),
	}
}

// WithParallelism configures the number of concurrent detail fetches.
func (l *Loader) WithParallelism(n int) *Loader {
	if n > 0 {
		l.parallelism = n
	}
	return l
}

// WithLogger sets the logger.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load queries up to limit postings (limit <= 0 means all) and enriches them.
// Records whose detail cannot be fetched are kept unenriched.
func (l *Loader) Load(ctx context.Context, q workday.Query, limit int) ([]*record.Record, error) {
	recs, err := l.query.QueryAll(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	l.logger.Info("Postings retrieved", zap.Int("count", len(recs)))

	if _, err := l.Enrich(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Enrich fetches details for every record that still needs them and
// returns how many were enriched. Only context cancellation aborts the run.
func (l *Loader) Enrich(ctx context.Context, recs []*record.Record) (int, error) {
	pending := make([]*record.Record, 0, len(recs))
	for _, r := range recs {
		if r.NeedsEnrichment() {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	enriched := make([]bool, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)

	for i, r := range pending {
		g.Go(func() error {
			if err := workday.EnrichWith(gctx, l.fetch, r); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Warn("Failed to enrich posting",
					zap.String("external_path", r.ExternalPath()),
					zap.String("title", r.Title()),
					zap.Error(err),
				)
				return nil
			}
			enriched[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("enrich postings: %w", err)
	}

	n := 0
	for _, ok := range enriched {
		if ok {
			n++
		}
	}
	l.logger.Info("Postings enriched", zap.Int("enriched", n), zap.Int("pending", len(pending)))
	return n, nil
}
