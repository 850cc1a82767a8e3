package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/domain"
	"github.com/kailas-cloud/jobsift/internal/domain/record"
	logpkg "github.com/kailas-cloud/jobsift/internal/logger"
	healthuc "github.com/kailas-cloud/jobsift/internal/usecase/health"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
)

// Enricher re-fetches detail data for records not enriched yet.
type Enricher interface {
	Enrich(ctx context.Context, recs []*record.Record) (int, error)
}

// Reporter writes a report of records and returns the file path.
type Reporter interface {
	Write(ctx context.Context, recs []*record.Record) (string, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes a listing engine over HTTP.
type Server struct {
	engine        *listing.Locked
	enricher      Enricher
	reporter      Reporter
	health        *healthuc.Service
	siteURL       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. enricher and reporter may be nil;
// /refresh then only rebuilds facets and /report answers 501.
func NewServer(
	engine *listing.Locked,
	enricher Enricher,
	reporter Reporter,
	health *healthuc.Service,
	siteURL string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   engine,
		enricher: enricher,
		reporter: reporter,
		health:   health,
		siteURL:  siteURL,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidPattern, http.StatusBadRequest, ErrorResponseCodeInvalidPattern),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownSortKey, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, ErrorResponseCodeSourceUnavailable),
	}
	return s
}

// ListFacets handles GET /facets.
func (s *Server) ListFacets(w http.ResponseWriter, _ *http.Request) {
	var resp FacetListResponse
	s.engine.Do(func(e *listing.Engine) {
		facets := e.Facets().Facets()
		resp.Facets = make([]FacetResponse, len(facets))
		for i, f := range facets {
			resp.Facets[i] = facetToResponse(f, e.AppliedOptions(f.Name()))
		}
		resp.Filtered = len(e.FilteredView())
	})
	writeJSON(w, http.StatusOK, resp)
}

// GetFacet handles GET /facets/{field}.
func (s *Server) GetFacet(w http.ResponseWriter, _ *http.Request, field string) {
	var (
		resp  FacetResponse
		found bool
	)
	s.engine.Do(func(e *listing.Engine) {
		f, ok := e.Facets().Facet(field)
		if !ok {
			return
		}
		found = true
		resp = facetToResponse(f, e.AppliedOptions(field))
	})
	if !found {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "facet not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SelectOption handles PUT /facets/{field}/options/{id}.
func (s *Server) SelectOption(w http.ResponseWriter, _ *http.Request, field, id string) {
	var resp SelectionResponse
	s.engine.Do(func(e *listing.Engine) {
		e.SelectOption(field, id)
		resp = selection(e, field)
	})
	writeJSON(w, http.StatusOK, resp)
}

// DeselectOption handles DELETE /facets/{field}/options/{id}.
func (s *Server) DeselectOption(w http.ResponseWriter, _ *http.Request, field, id string) {
	var (
		resp SelectionResponse
		err  error
	)
	s.engine.Do(func(e *listing.Engine) {
		var removed OptionResponse
		o, derr := e.DeselectOption(field, id)
		if derr != nil {
			err = derr
			return
		}
		removed = optionToResponse(o, false)
		resp = selection(e, field)
		resp.Removed = &removed
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearOptions handles DELETE /facets/{field}/options.
func (s *Server) ClearOptions(w http.ResponseWriter, _ *http.Request, field string) {
	var resp SelectionResponse
	s.engine.Do(func(e *listing.Engine) {
		e.ClearOptions(field)
		resp = selection(e, field)
	})
	writeJSON(w, http.StatusOK, resp)
}

// ListKeywords handles GET /keywords.
func (s *Server) ListKeywords(w http.ResponseWriter, _ *http.Request) {
	var resp KeywordListResponse
	s.engine.Do(func(e *listing.Engine) {
		resp.Keywords = keywordsToResponse(e.Keywords())
		resp.Filtered = len(e.FilteredView())
	})
	writeJSON(w, http.StatusOK, resp)
}

// AddKeyword handles POST /keywords.
func (s *Server) AddKeyword(w http.ResponseWriter, r *http.Request) {
	var req AddKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Pattern == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "Keyword pattern is required")
		return
	}

	var (
		resp KeywordResponse
		err  error
	)
	s.engine.Do(func(e *listing.Engine) {
		k, aerr := e.AddKeyword(req.Pattern, req.InTitle, req.InBody)
		if aerr != nil {
			err = aerr
			return
		}
		resp = keywordToResponse(len(e.Keywords())-1, k)
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RemoveKeyword handles DELETE /keywords/{index}.
func (s *Server) RemoveKeyword(w http.ResponseWriter, _ *http.Request, index int) {
	k, err := s.engine.RemoveKeyword(index)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keywordToResponse(index, k))
}

// ClearKeywords handles DELETE /keywords.
func (s *Server) ClearKeywords(w http.ResponseWriter, _ *http.Request) {
	s.engine.ClearKeywords()
	w.WriteHeader(http.StatusNoContent)
}

// Sort handles POST /sort.
func (s *Server) Sort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	key, err := listing.ParseSortKey(req.By)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var resp ViewResponse
	s.engine.Do(func(e *listing.Engine) {
		_, err = e.Sort(key, req.Ascending, req.Field)
		resp = view(e)
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetLimit handles PUT /limit.
func (s *Server) SetLimit(w http.ResponseWriter, r *http.Request) {
	var req LimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Limit == nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit is required")
		return
	}

	var (
		resp ViewResponse
		err  error
	)
	s.engine.Do(func(e *listing.Engine) {
		_, err = e.SetLimit(*req.Limit)
		resp = view(e)
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearLimit handles DELETE /limit.
func (s *Server) ClearLimit(w http.ResponseWriter, _ *http.Request) {
	s.engine.ClearLimit()
	w.WriteHeader(http.StatusNoContent)
}

// ListListings handles GET /listings.
func (s *Server) ListListings(w http.ResponseWriter, _ *http.Request, params ListListingsParams) {
	name := "filtered"
	if params.View != nil && *params.View != "" {
		name = *params.View
	}
	if name != "filtered" && name != "all" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, `view must be "filtered" or "all"`)
		return
	}
	detail := params.Detail != nil && *params.Detail

	resp := ListingListResponse{View: name}
	s.engine.Do(func(e *listing.Engine) {
		recs := e.FilteredView()
		if name == "all" {
			recs = e.AllRecords()
		}
		resp.Items = make([]ListingResponse, len(recs))
		for i, rec := range recs {
			resp.Items[i] = listingToResponse(rec, s.siteURL, e.Relevance(rec), detail)
		}
	})
	resp.Count = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /refresh. Enrichment runs under the engine lock since
// it merges fields into shared records.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var (
		resp RefreshResponse
		err  error
	)
	s.engine.Do(func(e *listing.Engine) {
		if s.enricher != nil {
			resp.Enriched, err = s.enricher.Enrich(r.Context(), e.AllRecords())
		}
		idx := e.Refresh()
		resp.Facets = idx.Len()
		resp.Records = len(e.AllRecords())
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContextOr(r.Context(), s.logger).Info("Engine refreshed",
		zap.Int("enriched", resp.Enriched),
		zap.Int("records", resp.Records),
		zap.Int("facets", resp.Facets),
	)
	writeJSON(w, http.StatusOK, resp)
}

// WriteReport handles POST /report.
func (s *Server) WriteReport(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponseCodeNotConfigured, "report sink is not configured")
		return
	}

	var (
		resp ReportResponse
		err  error
	)
	s.engine.Do(func(e *listing.Engine) {
		recs := e.FilteredView()
		resp.Records = len(recs)
		resp.Path, err = s.reporter.Write(r.Context(), recs)
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContextOr(r.Context(), s.logger).Info("Report written",
		zap.String("path", resp.Path),
		zap.Int("records", resp.Records),
	)
	writeJSON(w, http.StatusCreated, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func selection(e *listing.Engine, field string) SelectionResponse {
	applied := e.AppliedOptions(field)
	if applied == nil {
		applied = []string{}
	}
	return SelectionResponse{Field: field, Applied: applied, Filtered: len(e.FilteredView())}
}

func view(e *listing.Engine) ViewResponse {
	resp := ViewResponse{Total: len(e.AllRecords()), Filtered: len(e.FilteredView())}
	if n, ok := e.Limit(); ok {
		resp.Limit = &n
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var pe *domain.InvalidPatternError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidLimit,
		domain.ErrUnknownSortKey,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
