// Package facet derives per-field value counts from a record collection under
// the currently applied constraints.
package facet

import (
	"strconv"

	"github.com/kailas-cloud/jobsift/internal/domain/keyword"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// Option is one distinct value of a facet and the number of records that
// would pass the filter if it were selected.
type Option struct {
	ID    string
	Value string
	Count int
}

// Facet is the set of distinct values observed for one field.
// IDs and values are each unique within a facet.
type Facet struct {
	name        string
	displayName string
	options     []Option
	byID        map[string]int
	byValue     map[string]int
}

func newFacet(name, displayName string) *Facet {
	return &Facet{
		name:        name,
		displayName: displayName,
		byID:        make(map[string]int),
		byValue:     make(map[string]int),
	}
}

// Name returns the field name.
func (f *Facet) Name() string { return f.name }

// DisplayName returns the reader-friendly name.
func (f *Facet) DisplayName() string { return f.displayName }

// Options returns a copy of the options in ID order.
func (f *Facet) Options() []Option {
	out := make([]Option, len(f.options))
	copy(out, f.options)
	return out
}

// Option returns the option with the given ID.
func (f *Facet) Option(id string) (Option, bool) {
	i, ok := f.byID[id]
	if !ok {
		return Option{}, false
	}
	return f.options[i], true
}

// OptionByValue returns the option representing value.
func (f *Facet) OptionByValue(value string) (Option, bool) {
	i, ok := f.byValue[value]
	if !ok {
		return Option{}, false
	}
	return f.options[i], true
}

// Total returns the sum of option counts.
func (f *Facet) Total() int {
	n := 0
	for _, o := range f.options {
		n += o.Count
	}
	return n
}

// ensure returns the index of the option for value, adding it if absent.
func (f *Facet) ensure(value string) int {
	if i, ok := f.byValue[value]; ok {
		return i
	}
	id := strconv.Itoa(len(f.options))
	f.options = append(f.options, Option{ID: id, Value: value})
	i := len(f.options) - 1
	f.byID[id] = i
	f.byValue[value] = i
	return i
}

func (f *Facet) cloneReset() *Facet {
	c := newFacet(f.name, f.displayName)
	c.options = make([]Option, len(f.options))
	for i, o := range f.options {
		c.options[i] = Option{ID: o.ID, Value: o.Value}
		c.byID[o.ID] = i
		c.byValue[o.Value] = i
	}
	return c
}

// DisplayNames maps field names to reader-friendly names.
type DisplayNames map[string]string

// Index holds one facet per distinct field name, in first-seen order.
type Index struct {
	names  []string
	facets map[string]*Facet
}

// Names returns the facet field names in first-seen order.
func (idx Index) Names() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// Facet returns the facet for field.
func (idx Index) Facet(field string) (*Facet, bool) {
	f, ok := idx.facets[field]
	return f, ok
}

// Facets returns all facets in first-seen order.
func (idx Index) Facets() []*Facet {
	out := make([]*Facet, len(idx.names))
	for i, n := range idx.names {
		out[i] = idx.facets[n]
	}
	return out
}

// Len returns the number of facets.
func (idx Index) Len() int { return len(idx.names) }

func (idx *Index) add(f *Facet) {
	if idx.facets == nil {
		idx.facets = make(map[string]*Facet)
	}
	idx.names = append(idx.names, f.name)
	idx.facets[f.name] = f
}

// Compute returns a fresh Index for records under c.
//
// Facets and option IDs already present in prev are kept so selections stay
// valid across sorts and rebuilds; new fields and values are appended. Every
// count is recomputed from zero: a record counts toward the option for its
// value of field F iff it passes every applied constraint except F's own,
// and the keyword constraint. prev is not modified.
func Compute(prev Index, records []*record.Record, c Constraints, names DisplayNames) Index {
	var idx Index
	for _, f := range prev.Facets() {
		nf := f.cloneReset()
		if nf.displayName == nf.name {
			if dn, ok := names[nf.name]; ok && dn != "" {
				nf.displayName = dn
			}
		}
		idx.add(nf)
	}

	for _, r := range records {
		for _, field := range r.FieldNames() {
			f, ok := idx.facets[field]
			if !ok {
				f = newFacet(field, displayName(field, names))
				idx.add(f)
			}
			f.ensure(r.Value(field))
		}
	}

	m := idx.matcher(c)
	for _, r := range records {
		if !keyword.AnyMatch(c.Keywords, r) {
			continue
		}
		failed, failures := m.failing(r)
		if failures > 1 {
			continue
		}
		for _, field := range r.FieldNames() {
			if failures == 1 && failed != field {
				continue
			}
			f := idx.facets[field]
			f.options[f.byValue[r.Value(field)]].Count++
		}
	}
	return idx
}

// Passes reports whether r passes c. Constraints on ignoreField are skipped;
// pass "" to apply all of them.
func (idx Index) Passes(r *record.Record, c Constraints, ignoreField string) bool {
	if !keyword.AnyMatch(c.Keywords, r) {
		return false
	}
	failed, failures := idx.matcher(c).failing(r)
	switch failures {
	case 0:
		return true
	case 1:
		return ignoreField != "" && failed == ignoreField
	default:
		return false
	}
}

// Filter returns the records that pass every constraint, in input order.
func (idx Index) Filter(records []*record.Record, c Constraints) []*record.Record {
	m := idx.matcher(c)
	out := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if !keyword.AnyMatch(c.Keywords, r) {
			continue
		}
		if _, failures := m.failing(r); failures == 0 {
			out = append(out, r)
		}
	}
	return out
}

func displayName(field string, names DisplayNames) string {
	if dn, ok := names[field]; ok && dn != "" {
		return dn
	}
	return field
}

// fieldConstraint is the resolved value set selected for one field.
type fieldConstraint struct {
	field  string
	values map[string]bool
}

type matcher []fieldConstraint

// matcher resolves selected option IDs to values. IDs that name no option
// resolve to nothing, so a field selecting only unknown IDs matches no record.
func (idx Index) matcher(c Constraints) matcher {
	var m matcher
	for _, field := range c.Selections.Fields() {
		ids := c.Selections.IDs(field)
		if len(ids) == 0 {
			continue
		}
		fc := fieldConstraint{field: field, values: make(map[string]bool, len(ids))}
		if f, ok := idx.facets[field]; ok {
			for _, id := range ids {
				if o, ok := f.Option(id); ok {
					fc.values[o.Value] = true
				}
			}
		}
		m = append(m, fc)
	}
	return m
}

// failing returns the last failed field and the number of failed fields.
func (m matcher) failing(r *record.Record) (string, int) {
	var failed string
	n := 0
	for _, fc := range m {
		v, ok := r.Field(fc.field)
		if ok && fc.values[v] {
			continue
		}
		failed = fc.field
		n++
	}
	return failed, n
}
