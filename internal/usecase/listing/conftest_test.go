package listing

import (
	"testing"
	"time"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

func makeRecords(t *testing.T, raws ...map[string]any) []*record.Record {
	t.Helper()
	out := make([]*record.Record, len(raws))
	for i, raw := range raws {
		r, err := record.New(raw)
		if err != nil {
			t.Fatalf("record.New: %v", err)
		}
		out[i] = r
	}
	return out
}

func titles(recs []*record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func optionID(t *testing.T, e *Engine, field, value string) string {
	t.Helper()
	f, ok := e.Facets().Facet(field)
	if !ok {
		t.Fatalf("facet %q missing", field)
	}
	o, ok := f.OptionByValue(value)
	if !ok {
		t.Fatalf("option %s=%s missing", field, value)
	}
	return o.ID
}

type recordingObserver struct {
	calls    int
	filtered int
	records  int
}

func (o *recordingObserver) ObserveRebuild(_ time.Duration, records, _, filtered int) {
	o.calls++
	o.records = records
	o.filtered = filtered
}
