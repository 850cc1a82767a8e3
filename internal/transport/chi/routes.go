package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ListListingsParams are the query parameters of GET /listings.
type ListListingsParams struct {
	View   *string
	Detail *bool
}

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseRouter       gochi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers every API route of s on options.BaseRouter.
func HandlerWithOptions(s *Server, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = gochi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	b := binder{onError: errorHandler}

	r.Get("/facets", s.ListFacets)
	r.Get("/facets/{field}", b.withField(s.GetFacet))
	r.Delete("/facets/{field}/options", b.withField(s.ClearOptions))
	r.Put("/facets/{field}/options/{id}", b.withFieldOption(s.SelectOption))
	r.Delete("/facets/{field}/options/{id}", b.withFieldOption(s.DeselectOption))

	r.Get("/keywords", s.ListKeywords)
	r.Post("/keywords", s.AddKeyword)
	r.Delete("/keywords", s.ClearKeywords)
	r.Delete("/keywords/{index}", b.withIndex(s.RemoveKeyword))

	r.Post("/sort", s.Sort)
	r.Put("/limit", s.SetLimit)
	r.Delete("/limit", s.ClearLimit)

	r.Get("/listings", b.withListingsParams(s.ListListings))
	r.Post("/refresh", s.Refresh)
	r.Post("/report", s.WriteReport)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

type binder struct {
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (b binder) pathString(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		b.onError(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return v, true
}

func (b binder) withField(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field, ok := b.pathString(w, r, "field")
		if !ok {
			return
		}
		h(w, r, field)
	}
}

func (b binder) withFieldOption(h func(http.ResponseWriter, *http.Request, string, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field, ok := b.pathString(w, r, "field")
		if !ok {
			return
		}
		id, ok := b.pathString(w, r, "id")
		if !ok {
			return
		}
		h(w, r, field, id)
	}
}

func (b binder) withIndex(h func(http.ResponseWriter, *http.Request, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var index int
		err := runtime.BindStyledParameterWithOptions("simple", "index", gochi.URLParam(r, "index"), &index,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			b.onError(w, r, &InvalidParamFormatError{ParamName: "index", Err: err})
			return
		}
		h(w, r, index)
	}
}

func (b binder) withListingsParams(h func(http.ResponseWriter, *http.Request, ListListingsParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ListListingsParams
		if err := runtime.BindQueryParameter("form", true, false, "view", r.URL.Query(), &params.View); err != nil {
			b.onError(w, r, &InvalidParamFormatError{ParamName: "view", Err: err})
			return
		}
		if err := runtime.BindQueryParameter("form", true, false, "detail", r.URL.Query(), &params.Detail); err != nil {
			b.onError(w, r, &InvalidParamFormatError{ParamName: "detail", Err: err})
			return
		}
		h(w, r, params)
	}
}
