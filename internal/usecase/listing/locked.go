package listing

import (
	"sync"

	"github.com/kailas-cloud/jobsift/internal/domain/facet"
	"github.com/kailas-cloud/jobsift/internal/domain/keyword"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// Locked serializes every Engine operation behind one mutex so a rebuild is
// never observed half-done.
type Locked struct {
	mu sync.Mutex
	e  *Engine
}

// NewLocked wraps e.
func NewLocked(e *Engine) *Locked { return &Locked{e: e} }

// Do runs fn with exclusive access to the engine, for batching several
// mutations under one lock.
func (l *Locked) Do(fn func(e *Engine)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.e)
}

// Facets returns the current facet index.
func (l *Locked) Facets() facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Facets()
}

// SetDisplayNames records field display names.
func (l *Locked) SetDisplayNames(names map[string]string) facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.SetDisplayNames(names)
}

// Refresh rebuilds the facet index.
func (l *Locked) Refresh() facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Refresh()
}

// SelectOption selects an option.
func (l *Locked) SelectOption(field, id string) facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.SelectOption(field, id)
}

// DeselectOption deselects an option.
func (l *Locked) DeselectOption(field, id string) (facet.Option, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.DeselectOption(field, id)
}

// ClearOptions clears the selections of field.
func (l *Locked) ClearOptions(field string) facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.ClearOptions(field)
}

// AppliedOptions returns the selected IDs of field.
func (l *Locked) AppliedOptions(field string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.AppliedOptions(field)
}

// AddKeyword applies a keyword.
func (l *Locked) AddKeyword(pattern string, inTitle, inBody bool) (keyword.Keyword, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.AddKeyword(pattern, inTitle, inBody)
}

// RemoveKeyword removes the keyword at index i.
func (l *Locked) RemoveKeyword(i int) (keyword.Keyword, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.RemoveKeyword(i)
}

// ClearKeywords removes all keywords.
func (l *Locked) ClearKeywords() facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.ClearKeywords()
}

// Keywords returns the applied keywords.
func (l *Locked) Keywords() []keyword.Keyword {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Keywords()
}

// Sort reorders the collection.
func (l *Locked) Sort(key SortKey, ascending bool, dateField string) (facet.Index, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Sort(key, ascending, dateField)
}

// SetLimit caps the filtered view.
func (l *Locked) SetLimit(n int) (facet.Index, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.SetLimit(n)
}

// ClearLimit removes the view cap.
func (l *Locked) ClearLimit() facet.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.ClearLimit()
}

// Limit returns the view cap.
func (l *Locked) Limit() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Limit()
}

// FilteredView returns the filtered, sorted, limited view.
func (l *Locked) FilteredView() []*record.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.FilteredView()
}

// AllRecords returns the full collection.
func (l *Locked) AllRecords() []*record.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.AllRecords()
}

// Relevance returns the aggregate keyword score of r.
func (l *Locked) Relevance(r *record.Record) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.e.Relevance(r)
}
