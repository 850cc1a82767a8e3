// Package record models a single job posting as supplied by a source.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Structural keys are kept out of the facet-eligible field set.
const (
	KeyTitle        = "title"
	KeyBody         = "jobDescription"
	KeyExternalPath = "externalPath"
	KeyRelated      = "similarJobs"
	keyPostingInfo  = "jobPostingInfo"
)

var structuralKeys = map[string]bool{
	KeyTitle: true, KeyBody: true, KeyExternalPath: true, KeyRelated: true,
}

// IsStructural reports whether name is a structural key rather than a field.
func IsStructural(name string) bool { return structuralKeys[name] }

// Field is one named value of a record.
type Field struct {
	Name  string
	Value string
}

// Record is a job posting with a title, a body and an ordered open field set.
// Records are shared by pointer with the source, which may Merge more fields
// into them between engine calls.
type Record struct {
	title        string
	body         string
	externalPath string
	hasBody      bool
	related      []*Record
	names        []string
	values       map[string]string
	enriched     bool
}

type pair struct {
	key string
	raw json.RawMessage
}

// New creates a Record from a decoded key/value mapping.
// Map iteration order is undefined, so fields are ordered by key.
func New(raw map[string]any) (*Record, error) {
	pairs, err := pairsFromMap(raw)
	if err != nil {
		return nil, err
	}
	r := &Record{values: make(map[string]string)}
	if err := r.record(pairs); err != nil {
		return nil, err
	}
	return r, nil
}

// FromJSON creates a Record from a JSON object, keeping the object's key order.
func FromJSON(data []byte) (*Record, error) {
	pairs, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	r := &Record{values: make(map[string]string)}
	if err := r.record(pairs); err != nil {
		return nil, err
	}
	return r, nil
}

// Merge records the fields of a detail JSON object in place and marks the
// record enriched. A nested jobPostingInfo object is merged before the
// remaining top-level keys.
func (r *Record) Merge(data []byte) error {
	pairs, err := decodeObject(data)
	if err != nil {
		return err
	}
	rest := make([]pair, 0, len(pairs))
	for _, p := range pairs {
		if p.key != keyPostingInfo {
			rest = append(rest, p)
			continue
		}
		info, err := decodeObject(p.raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", keyPostingInfo, err)
		}
		if err := r.record(info); err != nil {
			return err
		}
	}
	if err := r.record(rest); err != nil {
		return err
	}
	r.enriched = true
	return nil
}

func (r *Record) record(pairs []pair) error {
	for _, p := range pairs {
		switch p.key {
		case KeyTitle:
			r.title = stringify(p.raw)
		case KeyBody:
			r.body = stringify(p.raw)
			r.hasBody = true
		case KeyExternalPath:
			r.externalPath = stringify(p.raw)
		case KeyRelated:
			related, err := decodeRelated(p.raw)
			if err != nil {
				return fmt.Errorf("decode %s: %w", KeyRelated, err)
			}
			r.related = related
		default:
			r.set(p.key, stringify(p.raw))
		}
	}
	return nil
}

func (r *Record) set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Title returns the posting title.
func (r *Record) Title() string { return r.title }

// Body returns the posting description (HTML as delivered by the source).
func (r *Record) Body() string { return r.body }

// ExternalPath returns the source-relative path of the posting.
func (r *Record) ExternalPath() string { return r.externalPath }

// Related returns postings the source lists as similar.
func (r *Record) Related() []*Record { return r.related }

// Enriched reports whether the source has merged detail data into the record.
func (r *Record) Enriched() bool { return r.enriched }

// NeedsEnrichment reports whether the record lacks its description and can
// still be completed by the source.
func (r *Record) NeedsEnrichment() bool {
	return !r.enriched && !r.hasBody && r.externalPath != ""
}

// PageURL joins the site base URL with the external path.
func (r *Record) PageURL(siteURL string) string { return siteURL + r.externalPath }

// FieldNames returns the non-structural field names in first-seen order.
func (r *Record) FieldNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Field returns the value of a non-structural field.
func (r *Record) Field(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value of a field, or "" if absent.
func (r *Record) Value(name string) string { return r.values[name] }

// Fields returns an ordered copy of all non-structural fields.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.names))
	for i, n := range r.names {
		out[i] = Field{Name: n, Value: r.values[n]}
	}
	return out
}

func pairsFromMap(raw map[string]any) ([]pair, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]pair, 0, len(keys))
	for _, k := range keys {
		b, err := json.Marshal(raw[k])
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		pairs = append(pairs, pair{key: k, raw: b})
	}
	return pairs, nil
}

func decodeObject(data []byte) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode record: expected object, got %v", tok)
	}
	var pairs []pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode record key: %w", err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode record field %q: %w", key, err)
		}
		pairs = append(pairs, pair{key: key, raw: raw})
	}
	return pairs, nil
}

func decodeRelated(raw json.RawMessage) ([]*Record, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		rec, err := FromJSON(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// stringify flattens a JSON value into a facet-friendly string.
func stringify(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i] = stringify(it)
			}
			return strings.Join(parts, ", ")
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
