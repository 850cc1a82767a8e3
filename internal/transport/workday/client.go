// Package workday is a client for the JSON endpoints behind a Workday job board.
package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/jobsift/internal/domain"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/metrics"
)

// Page size bounds accepted by the job board without a client error.
const (
	MinQuerySize = 1
	MaxQuerySize = 20
)

const (
	queryPath       = "/jobs"
	maxResponseSize = 8 << 20

	opQuery = "query"
	opFetch = "fetch"
)

// ErrNoExternalPath is returned when enriching a record that has no detail path.
var ErrNoExternalPath = errors.New("record has no external path")

// StatusError is a non-2xx response from the job board.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("job board returned %d", e.Code)
	}
	return fmt.Sprintf("job board returned %d: %s", e.Code, e.Body)
}

// Config holds the job board client settings.
type Config struct {
	RequestBase string // JSON endpoint root, without trailing slash
	SiteURL     string // browser-facing root
	HTTPClient  *http.Client
	Timeout     time.Duration
	RatePerSec  float64 // <= 0 disables pacing
	Burst       int
	Resilience  ResilienceConfig
	Logger      *zap.Logger
}

// Client queries postings and fetches posting details.
type Client struct {
	requestBase string
	siteURL     string
	http        *http.Client
	limiter     *rate.Limiter
	exec        *Executor
	logger      *zap.Logger
}

// New creates a job board client.
func New(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := max(cfg.Burst, 1)

	return &Client{
		requestBase: cfg.RequestBase,
		siteURL:     cfg.SiteURL,
		http:        httpClient,
		limiter:     rate.NewLimiter(limit, burst),
		exec:        NewExecutor(cfg.Resilience, logger),
		logger:      logger,
	}
}

// SiteURL returns the browser-facing root that external paths are appended to.
func (c *Client) SiteURL() string { return c.siteURL }

// Query selects postings. Limit is clamped to [MinQuerySize, MaxQuerySize].
type Query struct {
	AppliedFacets map[string][]string
	SearchText    string
	Offset        int
	Limit         int
}

// FacetValue is one value of a job board facet.
type FacetValue struct {
	ID         string `json:"id"`
	Descriptor string `json:"descriptor"`
	Count      int    `json:"count"`
}

// Facet is a job board side facet, used to resolve option IDs for AppliedFacets.
type Facet struct {
	Parameter  string       `json:"facetParameter"`
	Descriptor string       `json:"descriptor"`
	Values     []FacetValue `json:"values"`
}

// Page is one page of query results. Total is only reported on the first page.
type Page struct {
	Total    int
	Postings []*record.Record
	Facets   []Facet
}

type queryRequest struct {
	AppliedFacets map[string][]string `json:"appliedFacets"`
	Limit         int                 `json:"limit"`
	Offset        int                 `json:"offset"`
	SearchText    string              `json:"searchText"`
}

type queryResponse struct {
	Total       int               `json:"total"`
	JobPostings []json.RawMessage `json:"jobPostings"`
	Facets      []Facet           `json:"facets"`
}

// Query fetches one page of postings.
func (c *Client) Query(ctx context.Context, q Query) (Page, error) {
	facets := q.AppliedFacets
	if facets == nil {
		facets = map[string][]string{}
	}
	body, err := json.Marshal(queryRequest{
		AppliedFacets: facets,
		Limit:         clampSize(q.Limit),
		Offset:        max(q.Offset, 0),
		SearchText:    q.SearchText,
	})
	if err != nil {
		return Page{}, fmt.Errorf("encode query: %w", err)
	}

	data, err := c.do(ctx, opQuery, http.MethodPost, c.requestBase+queryPath, body)
	if err != nil {
		return Page{}, err
	}

	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Page{}, fmt.Errorf("decode query response: %w", err)
	}

	page := Page{Total: resp.Total, Facets: resp.Facets}
	page.Postings = make([]*record.Record, 0, len(resp.JobPostings))
	for i, raw := range resp.JobPostings {
		r, err := record.FromJSON(raw)
		if err != nil {
			return Page{}, fmt.Errorf("decode posting %d: %w", q.Offset+i, err)
		}
		page.Postings = append(page.Postings, r)
	}
	return page, nil
}

// QueryAll pages through results until limit postings are collected, the
// reported total is reached, or a short page arrives. limit <= 0 means all.
func (c *Client) QueryAll(ctx context.Context, q Query, limit int) ([]*record.Record, error) {
	var out []*record.Record
	total := -1
	offset := 0

	for {
		size := MaxQuerySize
		if limit > 0 {
			size = min(size, limit-len(out))
		}
		q.Offset, q.Limit = offset, size

		page, err := c.Query(ctx, q)
		if err != nil {
			return out, err
		}
		if total < 0 {
			total = page.Total
		}
		out = append(out, page.Postings...)
		offset += len(page.Postings)

		target := total
		if limit > 0 && limit < target {
			target = limit
		}
		if len(page.Postings) < size || len(out) >= target {
			break
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	c.logger.Debug("Queried job board",
		zap.Int("total", total),
		zap.Int("collected", len(out)),
		zap.String("search_text", q.SearchText),
	)
	return out, nil
}

// Total returns the number of postings matching q.
func (c *Client) Total(ctx context.Context, q Query) (int, error) {
	q.Offset, q.Limit = 0, MinQuerySize
	page, err := c.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Fetch returns the raw detail JSON of the posting at externalPath.
func (c *Client) Fetch(ctx context.Context, externalPath string) ([]byte, error) {
	if externalPath == "" {
		return nil, ErrNoExternalPath
	}
	return c.do(ctx, opFetch, http.MethodGet, c.requestBase+externalPath, nil)
}

// Enrich fetches the detail of r and merges it into r.
func (c *Client) Enrich(ctx context.Context, r *record.Record) error {
	return EnrichWith(ctx, c, r)
}

// Fetcher returns the raw detail JSON of a posting.
type Fetcher interface {
	Fetch(ctx context.Context, externalPath string) ([]byte, error)
}

// EnrichWith fetches the detail of r through f and merges it into r.
func EnrichWith(ctx context.Context, f Fetcher, r *record.Record) error {
	if r.ExternalPath() == "" {
		return ErrNoExternalPath
	}
	data, err := f.Fetch(ctx, r.ExternalPath())
	if err != nil {
		return fmt.Errorf("fetch %s: %w", r.ExternalPath(), err)
	}
	if err := r.Merge(data); err != nil {
		return fmt.Errorf("merge %s: %w", r.ExternalPath(), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, url string, body []byte) ([]byte, error) {
	start := time.Now()
	var out []byte

	err := c.exec.Execute(ctx, op, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}

		var reader io.Reader = http.NoBody
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Code: resp.StatusCode, Body: snippet(data)}
		}
		out = data
		return nil
	}, classify)

	metrics.ObserveSource(op, time.Since(start), err)
	if err != nil {
		return nil, wrapError(method, url, err)
	}
	return out, nil
}

// classify retries 5xx, 429 and transport failures. Other 4xx are the
// caller's fault and do not count against the breaker.
func classify(err error) ErrorClassification {
	if errors.Is(err, context.Canceled) {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code >= 500, se.Code == http.StatusTooManyRequests:
			return ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func wrapError(method, url string, err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code < 500 && se.Code != http.StatusTooManyRequests {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	return fmt.Errorf("%s %s: %w: %w", method, url, domain.ErrSourceUnavailable, err)
}

func clampSize(n int) int {
	return min(max(n, MinQuerySize), MaxQuerySize)
}

func snippet(data []byte) string {
	const n = 200
	if len(data) > n {
		return string(data[:n])
	}
	return string(data)
}

// HealthCheck verifies the job board answers a minimal query.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Total(ctx, Query{}); err != nil {
		return fmt.Errorf("query total: %w", err)
	}
	return nil
}
