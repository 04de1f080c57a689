// Package chi implements the search gateway HTTP server. It sits between
// untrusted callers and a shared Solr index: every query and filter string is
// parsed, field-validated against the collection schema and canonicalized
// before it is forwarded upstream.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/solrq/solrq"
	logpkg "github.com/solrq/solrq/internal/logger"
	"github.com/solrq/solrq/internal/metrics"
	"github.com/solrq/solrq/internal/schema"
	"github.com/solrq/solrq/lucene"
)

// Searcher is the consumer contract for the upstream Solr client.
type Searcher interface {
	Search(ctx context.Context, req *solrq.JSONRequest, handler ...string) (*solrq.Results, error)
	Ping(ctx context.Context) error
}

// Server handles gateway HTTP requests.
type Server struct {
	solr     Searcher
	schema   *schema.Schema
	upstream string // upstream Solr handler, e.g. /select
	logger   *zap.Logger
	metrics  *metrics.HTTPMetrics
	gatherer prometheus.Gatherer
	apiKeys  []string
}

// NewServer creates a gateway server.
func NewServer(solr Searcher, sch *schema.Schema, upstream string, logger *zap.Logger) *Server {
	return &Server{solr: solr, schema: sch, upstream: upstream, logger: logger}
}

// WithMetrics attaches HTTP metrics and the registry served at /metrics.
func (s *Server) WithMetrics(m *metrics.HTTPMetrics, g prometheus.Gatherer) *Server {
	s.metrics = m
	s.gatherer = g
	return s
}

// WithAPIKeys enables Bearer token authentication.
func (s *Server) WithAPIKeys(keys []string) *Server {
	s.apiKeys = keys
	return s
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.Use(s.requestLogger)
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Post("/collections/{collection}/search", s.handleSearch)
	return r
}

// requestLogger stores a request-scoped logger in the context and logs each
// request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := s.logger.With(zap.String("request_id", chimw.GetReqID(r.Context())))
		ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		reqLogger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type searchRequest struct {
	Query  string         `json:"query"`
	Filter []string       `json:"filter,omitempty"`
	Sort   string         `json:"sort,omitempty"`
	Fields []string       `json:"fields,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
	Facet  map[string]any `json:"facet,omitempty"`
}

type searchResponse struct {
	Hits   int              `json:"hits"`
	Docs   []solrq.Document `json:"docs"`
	QTime  int              `json:"qtime"`
	Facets map[string]any   `json:"facets,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logpkg.FromContext(ctx)

	collection := chi.URLParam(r, "collection")
	fields, raw, ok := s.schema.Collection(collection)
	if !ok {
		writeError(w, http.StatusNotFound, codeCollectionNotFound,
			"unknown collection "+collection)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query is required")
		return
	}

	query, ok := s.sanitize(w, req.Query, fields, raw)
	if !ok {
		return
	}
	filters := make([]string, 0, len(req.Filter))
	for _, f := range req.Filter {
		sf, ok := s.sanitize(w, f, fields, raw)
		if !ok {
			return
		}
		filters = append(filters, sf)
	}

	upstream := &solrq.JSONRequest{
		Query:  query,
		Filter: filters,
		Sort:   req.Sort,
		Fields: req.Fields,
		Limit:  req.Limit,
		Offset: req.Offset,
		Facet:  req.Facet,
	}
	results, err := s.solr.Search(ctx, upstream, s.upstream)
	if err != nil {
		log.Error("upstream search failed",
			zap.String("collection", collection), zap.Error(err))
		writeError(w, http.StatusBadGateway, codeUpstreamError, "search backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Hits:   results.Hits,
		Docs:   results.Docs,
		QTime:  results.QTime,
		Facets: results.Facets,
	})
}

// sanitize canonicalizes one query string against the collection's field
// tables, writing the mapped 400 response itself on failure.
func (s *Server) sanitize(
	w http.ResponseWriter, query string,
	fields map[string]string, raw map[string]struct{},
) (string, bool) {
	out, err := lucene.ParseWithFieldReplacements(query, fields, raw)
	if err == nil {
		return out, true
	}

	var emptyErr *lucene.EmptyFieldQueryError
	var notFoundErr *lucene.FieldNotFoundError
	switch {
	case errors.As(err, &emptyErr):
		writeFieldError(w, codeEmptyField,
			"there must be some text following the colon", emptyErr.Field)
	case errors.As(err, &notFoundErr):
		writeFieldError(w, codeFieldNotAllowed,
			"field is not a valid search field", notFoundErr.Field)
	default:
		writeError(w, http.StatusBadRequest, codeInvalidQuery, "query is not valid search syntax")
	}
	return "", false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.solr.Ping(r.Context()); err != nil {
		logpkg.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, codeUpstreamError, "search backend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
