package report

import (
	"testing"

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

func sampleRecords(t *testing.T) []*record.Record {
	t.Helper()
	return makeRecords(t,
		map[string]any{"title": "Engineer", "startDate": "2023-01-01", "externalPath": "/job/1", "postedOn": "Posted 30+ Days Ago", "locationsText": "Columbus", "timeType": "Full time"},
		map[string]any{"title": "Analyst", "startDate": "2023-03-01", "externalPath": "/job/2", "locationsText": "Remote", "timeType": "Full time"},
		map[string]any{"title": "Nurse", "startDate": "2023-02-15", "externalPath": "/job/3", "locationsText": "Columbus", "timeType": "Part time"},
		map[string]any{"title": "Intern", "startDate": "soon", "externalPath": "/job/4"},
		map[string]any{"title": "Clerk", "startDate": "2022-11-30", "externalPath": "/job/5"},
	)
}
