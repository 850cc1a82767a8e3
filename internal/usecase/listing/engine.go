// Package listing implements the filter/sort engine over a job record collection.
package listing

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/domain"
	"github.com/kailas-cloud/jobsift/internal/domain/facet"
	"github.com/kailas-cloud/jobsift/internal/domain/keyword"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// DefaultDateField is the field used by SortByDate when none is given.
const DefaultDateField = "startDate"

// Engine owns the record order, the applied selections and keywords, and the
// cached facet index. It is not safe for concurrent use; see Locked.
type Engine struct {
	records    []*record.Record
	selections facet.Selections
	keywords   []keyword.Keyword
	limit      *int
	names      facet.DisplayNames
	index      facet.Index

	logger   *zap.Logger
	observer Observer
}

// New creates an engine over records. The slice is copied so sorting never
// reorders the caller's collection; the records themselves are shared.
func New(records []*record.Record) *Engine {
	owned := make([]*record.Record, len(records))
	copy(owned, records)
	e := &Engine{
		records:    owned,
		selections: facet.NewSelections(),
		names:      facet.DisplayNames{},
		logger:     zap.NewNop(),
		observer:   nopObserver{},
	}
	e.rebuild()
	return e
}

// WithLogger sets the logger.
func (e *Engine) WithLogger(l *zap.Logger) *Engine {
	if l != nil {
		e.logger = l
	}
	return e
}

// WithObserver sets the rebuild observer.
func (e *Engine) WithObserver(o Observer) *Engine {
	if o != nil {
		e.observer = o
	}
	return e
}

// SetDisplayNames records field display names. The first non-empty mapping
// wins; later mappings only add fields not named yet.
func (e *Engine) SetDisplayNames(names map[string]string) facet.Index {
	for k, v := range names {
		if v == "" {
			continue
		}
		if _, ok := e.names[k]; !ok {
			e.names[k] = v
		}
	}
	return e.rebuild()
}

// Facets returns the current facet index.
func (e *Engine) Facets() facet.Index { return e.index }

// Refresh rebuilds the facet index, picking up fields the source merged into
// records since the last call.
func (e *Engine) Refresh() facet.Index { return e.rebuild() }

// SelectOption adds id to the selections of field. Unknown fields get fresh state.
func (e *Engine) SelectOption(field, id string) facet.Index {
	e.selections.Add(field, id)
	return e.rebuild()
}

// DeselectOption removes id from the selections of field and returns the
// option it referred to. Returns domain.ErrNotFound if id was not selected.
func (e *Engine) DeselectOption(field, id string) (facet.Option, error) {
	e.selections.Ensure(field)
	removed := e.selections.Remove(field, id)
	e.rebuild()
	if !removed {
		return facet.Option{}, fmt.Errorf("option %q of %q not selected: %w", id, field, domain.ErrNotFound)
	}
	if f, ok := e.index.Facet(field); ok {
		if o, ok := f.Option(id); ok {
			return o, nil
		}
	}
	return facet.Option{ID: id}, nil
}

// ClearOptions resets the selections of field.
func (e *Engine) ClearOptions(field string) facet.Index {
	e.selections.Clear(field)
	return e.rebuild()
}

// AppliedOptions returns the selected option IDs of field.
func (e *Engine) AppliedOptions(field string) []string {
	e.selections.Ensure(field)
	return e.selections.IDs(field)
}

// IsSelected reports whether id is selected for field.
func (e *Engine) IsSelected(field, id string) bool {
	return e.selections.Has(field, id)
}

// AddKeyword compiles pattern and applies it. An invalid pattern leaves the
// engine unchanged.
func (e *Engine) AddKeyword(pattern string, inTitle, inBody bool) (keyword.Keyword, error) {
	k, err := keyword.New(pattern, inTitle, inBody)
	if err != nil {
		return keyword.Keyword{}, fmt.Errorf("add keyword: %w", err)
	}
	e.keywords = append(e.keywords, k)
	e.rebuild()
	return k, nil
}

// RemoveKeyword removes the keyword at index i.
// Returns domain.ErrNotFound for an out-of-range index, leaving state unchanged.
func (e *Engine) RemoveKeyword(i int) (keyword.Keyword, error) {
	if i < 0 || i >= len(e.keywords) {
		return keyword.Keyword{}, fmt.Errorf("keyword %d: %w", i, domain.ErrNotFound)
	}
	k := e.keywords[i]
	e.keywords = append(e.keywords[:i:i], e.keywords[i+1:]...)
	e.rebuild()
	return k, nil
}

// ClearKeywords removes all keywords.
func (e *Engine) ClearKeywords() facet.Index {
	e.keywords = nil
	return e.rebuild()
}

// Keywords returns a copy of the applied keywords.
func (e *Engine) Keywords() []keyword.Keyword {
	out := make([]keyword.Keyword, len(e.keywords))
	copy(out, e.keywords)
	return out
}

// SetLimit caps the filtered view at n records.
func (e *Engine) SetLimit(n int) (facet.Index, error) {
	if n < 0 {
		return e.index, fmt.Errorf("limit %d: %w", n, domain.ErrInvalidLimit)
	}
	e.limit = &n
	return e.rebuild(), nil
}

// ClearLimit removes the view cap.
func (e *Engine) ClearLimit() facet.Index {
	e.limit = nil
	return e.rebuild()
}

// Limit returns the view cap and whether one is set.
func (e *Engine) Limit() (int, bool) {
	if e.limit == nil {
		return 0, false
	}
	return *e.limit, true
}

// AllRecords returns the full collection in current order.
func (e *Engine) AllRecords() []*record.Record {
	out := make([]*record.Record, len(e.records))
	copy(out, e.records)
	return out
}

// FilteredView returns the records passing all constraints, in current
// order, truncated to the limit.
func (e *Engine) FilteredView() []*record.Record {
	out := e.index.Filter(e.records, e.constraints())
	if e.limit != nil && len(out) > *e.limit {
		out = out[:*e.limit]
	}
	return out
}

// Relevance returns the aggregate keyword score of r.
func (e *Engine) Relevance(r *record.Record) int {
	return keyword.Relevance(e.keywords, r)
}

func (e *Engine) constraints() facet.Constraints {
	return facet.Constraints{Selections: e.selections, Keywords: e.keywords}
}

func (e *Engine) rebuild() facet.Index {
	start := time.Now()
	e.index = facet.Compute(e.index, e.records, e.constraints(), e.names)
	duration := time.Since(start)

	filtered := len(e.FilteredView())
	e.observer.ObserveRebuild(duration, len(e.records), e.index.Len(), filtered)
	e.logger.Debug("Facet index rebuilt",
		zap.Int("records", len(e.records)),
		zap.Int("facets", e.index.Len()),
		zap.Int("keywords", len(e.keywords)),
		zap.Int("filtered", filtered),
		zap.Duration("duration", duration),
	)
	return e.index
}
