package chi

import (
	"github.com/kailas-cloud/jobsift/internal/domain/facet"
	"github.com/kailas-cloud/jobsift/internal/domain/keyword"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInvalidPattern    ErrorResponseCode = "invalid_pattern"
	ErrorResponseCodeSourceUnavailable ErrorResponseCode = "source_unavailable"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotConfigured     ErrorResponseCode = "not_configured"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// OptionResponse is one facet option.
type OptionResponse struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetResponse is one facet with its options.
type FacetResponse struct {
	Field       string           `json:"field"`
	DisplayName string           `json:"display_name"`
	Total       int              `json:"total"`
	Options     []OptionResponse `json:"options"`
}

// FacetListResponse is the reply of GET /facets.
type FacetListResponse struct {
	Facets   []FacetResponse `json:"facets"`
	Filtered int             `json:"filtered"`
}

// SelectionResponse reports the selections of one field after a change.
type SelectionResponse struct {
	Field    string          `json:"field"`
	Applied  []string        `json:"applied"`
	Removed  *OptionResponse `json:"removed,omitempty"`
	Filtered int             `json:"filtered"`
}

// AddKeywordRequest is the body of POST /keywords.
type AddKeywordRequest struct {
	Pattern string `json:"pattern"`
	InTitle bool   `json:"in_title"`
	InBody  bool   `json:"in_body"`
}

// KeywordResponse is one applied keyword.
type KeywordResponse struct {
	Index    int    `json:"index"`
	Pattern  string `json:"pattern"`
	Location string `json:"location"`
}

// KeywordListResponse is the reply of GET /keywords.
type KeywordListResponse struct {
	Keywords []KeywordResponse `json:"keywords"`
	Filtered int               `json:"filtered"`
}

// SortRequest is the body of POST /sort.
type SortRequest struct {
	By        string `json:"by"`
	Ascending bool   `json:"ascending"`
	Field     string `json:"field,omitempty"`
}

// LimitRequest is the body of PUT /limit.
type LimitRequest struct {
	Limit *int `json:"limit"`
}

// ViewResponse summarizes the filtered view after a sort or limit change.
type ViewResponse struct {
	Total    int  `json:"total"`
	Filtered int  `json:"filtered"`
	Limit    *int `json:"limit,omitempty"`
}

// FieldResponse is one scalar field of a listing.
type FieldResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListingResponse is one job record.
type ListingResponse struct {
	Title        string          `json:"title"`
	ExternalPath string          `json:"external_path,omitempty"`
	URL          string          `json:"url,omitempty"`
	Relevance    int             `json:"relevance"`
	Enriched     bool            `json:"enriched"`
	Fields       []FieldResponse `json:"fields"`
	Description  *string         `json:"description,omitempty"`
}

// ListingListResponse is the reply of GET /listings.
type ListingListResponse struct {
	View  string            `json:"view"`
	Count int               `json:"count"`
	Items []ListingResponse `json:"items"`
}

// RefreshResponse is the reply of POST /refresh.
type RefreshResponse struct {
	Enriched int `json:"enriched"`
	Facets   int `json:"facets"`
	Records  int `json:"records"`
}

// ReportResponse is the reply of POST /report.
type ReportResponse struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func facetToResponse(f *facet.Facet, applied []string) FacetResponse {
	selected := make(map[string]bool, len(applied))
	for _, id := range applied {
		selected[id] = true
	}
	opts := f.Options()
	out := FacetResponse{
		Field:       f.Name(),
		DisplayName: f.DisplayName(),
		Total:       f.Total(),
		Options:     make([]OptionResponse, len(opts)),
	}
	for i, o := range opts {
		out.Options[i] = optionToResponse(o, selected[o.ID])
	}
	return out
}

func optionToResponse(o facet.Option, selected bool) OptionResponse {
	return OptionResponse{ID: o.ID, Value: o.Value, Count: o.Count, Selected: selected}
}

func keywordsToResponse(kws []keyword.Keyword) []KeywordResponse {
	out := make([]KeywordResponse, len(kws))
	for i, k := range kws {
		out[i] = keywordToResponse(i, k)
	}
	return out
}

func keywordToResponse(i int, k keyword.Keyword) KeywordResponse {
	return KeywordResponse{Index: i, Pattern: k.Pattern(), Location: string(k.Location())}
}

func listingToResponse(r *record.Record, siteURL string, relevance int, detail bool) ListingResponse {
	fields := r.Fields()
	out := ListingResponse{
		Title:        r.Title(),
		ExternalPath: r.ExternalPath(),
		Relevance:    relevance,
		Enriched:     r.Enriched(),
		Fields:       make([]FieldResponse, len(fields)),
	}
	if r.ExternalPath() != "" && siteURL != "" {
		out.URL = r.PageURL(siteURL)
	}
	for i, f := range fields {
		out.Fields[i] = FieldResponse{Name: f.Name, Value: f.Value}
	}
	if detail {
		body := r.Body()
		out.Description = &body
	}
	return out
}
