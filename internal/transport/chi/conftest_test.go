package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
	healthuc "github.com/kailas-cloud/jobsift/internal/usecase/health"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
)

const testSiteURL = "https://jobs.example.com/en-US/Careers"

type mockEnricher struct {
	calls int
	n     int
	err   error
}

func (m *mockEnricher) Enrich(_ context.Context, recs []*record.Record) (int, error) {
	m.calls++
	return m.n, m.err
}

type mockReporter struct {
	got  []*record.Record
	path string
	err  error
}

func (m *mockReporter) Write(_ context.Context, recs []*record.Record) (string, error) {
	m.got = recs
	return m.path, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

func testRecords(t *testing.T) []*record.Record {
	t.Helper()
	raws := []map[string]any{
		{
			"title": "Senior Engineer", "loc": "Columbus", "startDate": "2023-01-01",
			"externalPath": "/job/1", "jobDescription": "Build Go services",
		},
		{"title": "Analyst", "loc": "Remote", "startDate": "2023-03-01", "externalPath": "/job/2"},
		{"title": "Data Engineer", "loc": "Columbus", "startDate": "2023-02-01", "externalPath": "/job/3"},
	}
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

type testAPI struct {
	handler http.Handler
	engine  *listing.Locked
}

func newTestAPI(t *testing.T, enricher Enricher, reporter Reporter, health *healthuc.Service) testAPI {
	t.Helper()
	if health == nil {
		health = healthuc.New(nil, nil)
	}
	engine := listing.NewLocked(listing.New(testRecords(t)))
	s := NewServer(engine, enricher, reporter, health, testSiteURL, nil)
	h := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: gochi.NewRouter(),
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		},
	})
	return testAPI{handler: h, engine: engine}
}

func (a testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rr.Code, want, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorResponseCode) {
	t.Helper()
	expectStatus(t, rr, status)
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code = %s, want %s", resp.Code, code)
	}
}
