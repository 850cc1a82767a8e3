// Package jobsift facets, filters and ranks collections of job postings.
//
// Records are built from JSON objects; an Engine indexes every scalar field as
// a facet, applies option selections and keyword patterns, and returns a
// sorted, optionally capped view. Engines are safe for concurrent use.
package jobsift

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/domain/facet"
	"github.com/kailas-cloud/jobsift/internal/domain/keyword"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
)

type (
	// Record is one job posting.
	Record = record.Record
	// Field is a named scalar value of a Record.
	Field = record.Field
	// Keyword is a compiled search pattern.
	Keyword = keyword.Keyword
	// Facet groups the distinct values of one field.
	Facet = facet.Facet
	// Option is one distinct value of a facet with its count.
	Option = facet.Option
	// FacetIndex holds every facet of a collection.
	FacetIndex = facet.Index
	// Engine is a concurrency-safe filter/sort engine.
	Engine = listing.Locked
	// Observer receives facet index rebuild measurements.
	Observer = listing.Observer
	// SortKey names a sort criterion.
	SortKey = listing.SortKey
)

// Sort keys.
const (
	SortTitle     = listing.SortTitle
	SortDate      = listing.SortDate
	SortRelevance = listing.SortRelevance
)

// DefaultDateField is the field sorted on by SortDate when none is given.
const DefaultDateField = listing.DefaultDateField

// NewRecord builds a record from a decoded JSON object.
func NewRecord(raw map[string]any) (*Record, error) { return record.New(raw) }

// ParseRecord builds a record from a JSON object, keeping field order.
func ParseRecord(data []byte) (*Record, error) { return record.FromJSON(data) }

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) { return listing.ParseSortKey(s) }

// EngineOption configures NewEngine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	names    map[string]string
	logger   *zap.Logger
	observer Observer
}

// WithDisplayNames maps field names to reader-friendly facet names.
func WithDisplayNames(names map[string]string) EngineOption {
	return func(c *engineConfig) {
		for k, v := range names {
			if v == "" {
				continue
			}
			if _, ok := c.names[k]; !ok {
				c.names[k] = v
			}
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = l }
}

// WithObserver receives a measurement after every facet index rebuild.
func WithObserver(o Observer) EngineOption {
	return func(c *engineConfig) { c.observer = o }
}

// NewEngine creates an engine over records. The slice is copied; the records
// are shared and may be enriched later followed by Refresh.
func NewEngine(records []*Record, opts ...EngineOption) *Engine {
	cfg := engineConfig{names: map[string]string{}}
	for _, o := range opts {
		o(&cfg)
	}

	e := listing.New(records).WithLogger(cfg.logger).WithObserver(cfg.observer)
	if len(cfg.names) > 0 {
		e.SetDisplayNames(cfg.names)
	}
	return listing.NewLocked(e)
}
