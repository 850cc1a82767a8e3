package source

import (
	"context"
	"errors"
	"sync"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/transport/workday"
)

type mockQuerier struct {
	recs      []*record.Record
	err       error
	gotLimit  int
	gotSearch string
}

func (m *mockQuerier) QueryAll(_ context.Context, q workday.Query, limit int) ([]*record.Record, error) {
	m.gotLimit = limit
	m.gotSearch = q.SearchText
	return m.recs, m.err
}

// mockFetcher serves details by path; missing paths fail.
type mockFetcher struct {
	mu      sync.Mutex
	details map[string]string
	calls   map[string]int
	fetchFn func(ctx context.Context, path string) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[path]++
	m.mu.Unlock()

	if m.fetchFn != nil {
		return m.fetchFn(ctx, path)
	}
	d, ok := m.details[path]
	if !ok {
		return nil, errors.New("404")
	}
	return []byte(d), nil
}

func (m *mockFetcher) callCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}
