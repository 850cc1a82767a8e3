package facet

import "github.com/kailas-cloud/jobsift/internal/domain/keyword"

// Selections maps field names to the ordered set of selected option IDs.
// A field with an empty set imposes no constraint.
type Selections struct {
	fields []string
	ids    map[string][]string
}

// NewSelections creates an empty selection state.
func NewSelections() Selections {
	return Selections{ids: make(map[string][]string)}
}

// Ensure creates empty state for field if it has none.
func (s *Selections) Ensure(field string) {
	if s.ids == nil {
		s.ids = make(map[string][]string)
	}
	if _, ok := s.ids[field]; !ok {
		s.fields = append(s.fields, field)
		s.ids[field] = []string{}
	}
}

// Add selects id for field. Returns false if it was already selected.
func (s *Selections) Add(field, id string) bool {
	s.Ensure(field)
	if s.Has(field, id) {
		return false
	}
	s.ids[field] = append(s.ids[field], id)
	return true
}

// Remove deselects id for field. Returns false if it was not selected.
func (s *Selections) Remove(field, id string) bool {
	ids := s.ids[field]
	for i, v := range ids {
		if v == id {
			s.ids[field] = append(ids[:i:i], ids[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets field to an empty selection set.
func (s *Selections) Clear(field string) {
	s.Ensure(field)
	s.ids[field] = []string{}
}

// Has reports whether id is selected for field.
func (s Selections) Has(field, id string) bool {
	for _, v := range s.ids[field] {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the selected IDs for field.
func (s Selections) IDs(field string) []string {
	ids := s.ids[field]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Fields returns the fields that have selection state, in creation order.
func (s Selections) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Active reports whether any field constrains the view.
func (s Selections) Active() bool {
	for _, ids := range s.ids {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

// Constraints is the complete applied filter state.
type Constraints struct {
	Selections Selections
	Keywords   []keyword.Keyword
}
