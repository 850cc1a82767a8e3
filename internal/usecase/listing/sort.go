package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/jobsift/internal/domain"
	"github.com/kailas-cloud/jobsift/internal/domain/facet"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// SortKey names a sort criterion.
type SortKey string

// Sort keys.
const (
	SortTitle     SortKey = "title"
	SortDate      SortKey = "date"
	SortRelevance SortKey = "relevance"
)

// ParseSortKey validates a sort key string.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortTitle, SortDate, SortRelevance:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSortKey, s)
	}
}

// Sort dispatches to the sort operation for key. dateField applies to SortDate only.
func (e *Engine) Sort(key SortKey, ascending bool, dateField string) (facet.Index, error) {
	switch key {
	case SortTitle:
		return e.SortByTitle(ascending), nil
	case SortDate:
		return e.SortByDate(ascending, dateField), nil
	case SortRelevance:
		return e.SortByRelevance(ascending), nil
	default:
		return e.index, fmt.Errorf("%w: %q", domain.ErrUnknownSortKey, key)
	}
}

// SortByTitle orders the whole collection by title.
func (e *Engine) SortByTitle(ascending bool) facet.Index {
	e.stableSort(ascending, func(a, b *record.Record) int {
		return strings.Compare(a.Title(), b.Title())
	})
	return e.rebuild()
}

// SortByDate orders the whole collection by a date-valued field
// (DefaultDateField when field is empty). Unparseable values follow the dates
// when ascending and precede them when descending.
func (e *Engine) SortByDate(ascending bool, field string) facet.Index {
	if field == "" {
		field = DefaultDateField
	}
	keys := make(map[*record.Record]dateKey, len(e.records))
	for _, r := range e.records {
		keys[r] = newDateKey(r.Value(field))
	}
	e.stableSort(ascending, func(a, b *record.Record) int {
		return keys[a].compare(keys[b])
	})
	return e.rebuild()
}

// SortByRelevance orders the whole collection by aggregate keyword score.
// With no keywords every record scores 0 and the order is unchanged.
func (e *Engine) SortByRelevance(ascending bool) facet.Index {
	scores := make(map[*record.Record]int, len(e.records))
	for _, r := range e.records {
		scores[r] = e.Relevance(r)
	}
	e.stableSort(ascending, func(a, b *record.Record) int {
		return scores[a] - scores[b]
	})
	return e.rebuild()
}

// stableSort keeps ties in their current relative order in both directions.
func (e *Engine) stableSort(ascending bool, cmp func(a, b *record.Record) int) {
	sort.SliceStable(e.records, func(i, j int) bool {
		c := cmp(e.records[i], e.records[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
}

// dateKey orders parseable dates as instants before unparseable raw values,
// which compare lexicographically.
type dateKey struct {
	raw    string
	at     time.Time
	parsed bool
}

func newDateKey(raw string) dateKey {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateKey{raw: raw, at: t, parsed: true}
		}
	}
	return dateKey{raw: raw}
}

func (k dateKey) compare(o dateKey) int {
	switch {
	case k.parsed && o.parsed:
		return k.at.Compare(o.at)
	case k.parsed:
		return -1
	case o.parsed:
		return 1
	default:
		return strings.Compare(k.raw, o.raw)
	}
}

// ParseDate parses a date-valued field using the layouts SortByDate accepts.
func ParseDate(raw string) (time.Time, bool) {
	k := newDateKey(raw)
	return k.at, k.parsed
}
