package postingcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/db"
)

type mockFetcher struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.data, m.err
}

// blockingFetcher holds every fetch until release is closed and fails with
// the context error if the fetch context was cancelled meanwhile.
type blockingFetcher struct {
	data    []byte
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingFetcher(data string) *blockingFetcher {
	return &blockingFetcher{
		data:    []byte(data),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingFetcher) Fetch(ctx context.Context, _ string) ([]byte, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.data, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestCachedFetcher(t *testing.T, inner *mockFetcher) (*CachedFetcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cf := New(inner, ms, time.Hour, nil, zap.NewNop())
	return cf, ms
}
