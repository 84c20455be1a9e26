package chi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/feature"
	"github.com/econext/catalog-engine/internal/domain/search/result"
	"github.com/econext/catalog-engine/internal/logger"
	healthuc "github.com/econext/catalog-engine/internal/usecase/health"
	"github.com/econext/catalog-engine/internal/usecase/lexical"
)

// DefaultMaxUploadBytes caps POST /search/image bodies when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Forecaster runs and reads price forecasts.
type Forecaster interface {
	Predict(ctx context.Context, productID string) (domforecast.Result, error)
	Latest(ctx context.Context, productID string) (domforecast.Result, error)
	History(ctx context.Context, productID string, limit int) ([]domforecast.Result, error)
}

// TextSearcher answers lexical queries.
type TextSearcher interface {
	SearchByText(ctx context.Context, query string, topK int) ([]result.Result, error)
	GroupByCategory(ctx context.Context, query string) ([]result.CategoryGroup, error)
}

// ImageSearcher indexes product images and answers visual queries.
type ImageSearcher interface {
	Index(ctx context.Context, productID string) (feature.Record, error)
	Search(ctx context.Context, data []byte, topK int) ([]result.VisualMatch, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server maps the engine's query surface onto HTTP.
type Server struct {
	forecasts      Forecaster
	text           TextSearcher
	images         ImageSearcher
	health         HealthChecker
	logger         *zap.Logger
	validate       *validator.Validate
	maxUploadBytes int64
	textTopK       int
	visualTopK     int
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. A nil logger discards output.
func NewServer(
	forecasts Forecaster,
	text TextSearcher,
	images ImageSearcher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		forecasts:      forecasts,
		text:           text,
		images:         images,
		health:         health,
		logger:         logger,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrInvalidPrice, http.StatusUnprocessableEntity, codeInvalidPrice),
		sentinelHandler(domain.ErrInvalidSeries, http.StatusUnprocessableEntity, codeInvalidSeries),
		sentinelHandler(domain.ErrInsufficientData, http.StatusUnprocessableEntity, codeInsufficientData),
		sentinelHandler(domain.ErrImageDecode, http.StatusUnprocessableEntity, codeImageDecode),
	}
	return s
}

// WithMaxUploadBytes overrides the image upload cap.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// WithDefaultTopK sets the result counts used when a request omits top_k.
func (s *Server) WithDefaultTopK(text, visual int) *Server {
	s.textTopK = text
	s.visualTopK = visual
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/products/{id}", func(r chi.Router) {
		r.Post("/forecast", s.CreateForecast)
		r.Get("/forecast", s.GetLatestForecast)
		r.Get("/forecasts", s.ListForecasts)
		r.Post("/image-features", s.IndexProductImage)
	})

	r.Route("/search", func(r chi.Router) {
		r.Get("/", s.SearchByText)
		r.Get("/categories", s.SearchByCategory)
		r.Get("/intents", s.ExpandIntent)
		r.Post("/image", s.SearchByImage)
	})
}

// CreateForecast handles POST /products/{id}/forecast.
func (s *Server) CreateForecast(w http.ResponseWriter, r *http.Request) {
	res, err := s.forecasts.Predict(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, forecastToResponse(res))
}

// GetLatestForecast handles GET /products/{id}/forecast.
func (s *Server) GetLatestForecast(w http.ResponseWriter, r *http.Request) {
	res, err := s.forecasts.Latest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forecastToResponse(res))
}

// ListForecasts handles GET /products/{id}/forecasts.
func (s *Server) ListForecasts(w http.ResponseWriter, r *http.Request) {
	var p historyParams
	if !s.bindQuery(w, r, &p) {
		return
	}
	runs, err := s.forecasts.History(r.Context(), chi.URLParam(r, "id"), p.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]forecastResponse, len(runs))
	for i, run := range runs {
		items[i] = forecastToResponse(run)
	}
	writeJSON(w, http.StatusOK, forecastListResponse{Items: items, Count: len(items)})
}

// SearchByText handles GET /search?q=&top_k=.
func (s *Server) SearchByText(w http.ResponseWriter, r *http.Request) {
	var p searchParams
	if !s.bindQuery(w, r, &p) {
		return
	}
	if p.TopK == 0 {
		p.TopK = s.textTopK
	}
	hits, err := s.text.SearchByText(r.Context(), p.Query, p.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: resultsToResponse(hits), Count: len(hits)})
}

// SearchByCategory handles GET /search/categories?q=.
func (s *Server) SearchByCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryParams
	if !s.bindQuery(w, r, &p) {
		return
	}
	groups, err := s.text.GroupByCategory(r.Context(), p.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]categoryGroupResponse, len(groups))
	for i, g := range groups {
		out[i] = categoryGroupResponse{Category: g.Category, Results: resultsToResponse(g.Results)}
	}
	writeJSON(w, http.StatusOK, categoryResponse{Groups: out, Total: result.Total(groups)})
}

// ExpandIntent handles GET /search/intents?q=.
func (s *Server) ExpandIntent(w http.ResponseWriter, r *http.Request) {
	var p categoryParams
	if !s.bindQuery(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, intentResponse{Query: p.Query, Keywords: lexical.ExpandIntent(p.Query)})
}

// SearchByImage handles POST /search/image?top_k= with the raw image as the body.
func (s *Server) SearchByImage(w http.ResponseWriter, r *http.Request) {
	var p imageParams
	if !s.bindQuery(w, r, &p) {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
				fmt.Sprintf("image exceeds %d bytes", s.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "image body is required")
		return
	}

	if p.TopK == 0 {
		p.TopK = s.visualTopK
	}
	matches, err := s.images.Search(r.Context(), data, p.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]visualMatchResponse, len(matches))
	for i, m := range matches {
		items[i] = visualMatchResponse{ProductID: m.ProductID, Similarity: m.Similarity}
	}
	writeJSON(w, http.StatusOK, visualSearchResponse{Items: items, Count: len(items)})
}

// IndexProductImage handles POST /products/{id}/image-features.
func (s *Server) IndexProductImage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.images.Index(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, featureRecordResponse{
		ProductID:   rec.ProductID(),
		Hash:        rec.Hash(),
		Dimensions:  len(rec.Vector()),
		ProcessedAt: rec.ProcessedAt(),
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// bindQuery decodes query parameters into dst and validates its struct tags.
// It writes a 400 and returns false on failure.
func (s *Server) bindQuery(w http.ResponseWriter, r *http.Request, dst queryBinder) bool {
	if err := dst.bind(r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid parameters"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", paramName(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var insufficient *domain.InsufficientDataError
	if errors.As(err, &insufficient) {
		return insufficient.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidPrice,
		domain.ErrInvalidSeries,
		domain.ErrImageDecode,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.FromContextOr(r.Context(), s.logger).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
