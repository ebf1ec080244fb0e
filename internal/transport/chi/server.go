package chi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	healthuc "github.com/trovato-shop/trovato/internal/usecase/health"
	indexuc "github.com/trovato-shop/trovato/internal/usecase/index"
	searchuc "github.com/trovato-shop/trovato/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest          = "bad_request"
	codeMissingInput        = "missing_input"
	codeNotFound            = "not_found"
	codeUnauthorized        = "unauthorized"
	codeModelResponse       = "model_response_error"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeUpstreamTimeout     = "upstream_timeout"
	codeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search pipeline over HTTP.
type Server struct {
	search        *searchuc.Service
	index         *indexuc.Service
	health        *healthuc.Service
	model         string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. model names the vision model in
// response metadata.
func NewServer(
	search *searchuc.Service,
	index *indexuc.Service,
	health *healthuc.Service,
	model string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		index:  index,
		health: health,
		model:  model,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingInput, http.StatusBadRequest, codeMissingInput),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrUnsupportedImage, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, codeUpstreamUnavailable),
		sentinelHandler(domain.ErrModelResponse, http.StatusBadGateway, codeModelResponse),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, codeUpstreamUnavailable),
		sentinelHandler(domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, codeUpstreamTimeout),
	}
	return s
}

// Register mounts all routes onto the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/index/status", s.handleIndexStatus)
		r.Post("/index/run", s.handleIndexRun)
	})
}

// --- Search ---

type searchRequest struct {
	ImageURL  string  `json:"image_url,omitempty"`
	ImageData string  `json:"image_data,omitempty"`
	MIMEType  string  `json:"mime_type,omitempty"`
	Text      string  `json:"text,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

type resultItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Features []string `json:"features,omitempty"`
	Score    float64  `json:"score"`
	Source   string   `json:"source"`
}

type searchMeta struct {
	Count     int    `json:"count"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Model     string `json:"model"`
}

type searchResponse struct {
	Results  []resultItem           `json:"results"`
	Analysis *domain.AnalysisReport `json:"analysis,omitempty"`
	Meta     searchMeta             `json:"meta"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	query, ok := s.queryFromRequest(w, req)
	if !ok {
		return
	}

	start := time.Now()
	res, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]resultItem, len(res.Matches))
	for i, m := range res.Matches {
		results[i] = resultItem{
			ID:       m.Item.ID(),
			Name:     m.Item.Name(),
			Category: m.Item.Category().String(),
			Brand:    m.Item.Brand(),
			ImageURL: m.Item.ImageURL(),
			Features: m.Item.Features(),
			Score:    m.Score,
			Source:   string(m.Source),
		}
	}

	resp := searchResponse{
		Results: results,
		Meta: searchMeta{
			Count:     len(results),
			ElapsedMs: time.Since(start).Milliseconds(),
			Model:     s.model,
		},
	}
	if a := res.Analysis; a.Category != "" || a.ProductName != "" || a.Reasoning != "" ||
		len(a.Keywords) > 0 || len(a.Suggestions) > 0 || a.Confidence != "" {
		resp.Analysis = &a
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) queryFromRequest(w http.ResponseWriter, req searchRequest) (searchuc.Query, bool) {
	q := searchuc.Query{
		Text:      req.Text,
		Threshold: req.Threshold,
		Limit:     req.Limit,
	}

	switch {
	case req.ImageURL != "":
		q.Image = domain.ImageFromURL(req.ImageURL)
	case req.ImageData != "":
		data, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "image_data must be base64")
			return searchuc.Query{}, false
		}
		q.Image = domain.ImageFromBytes(data, req.MIMEType)
	}

	return q, true
}

// --- Indexing ---

type indexRunRequest struct {
	OnlyMissing bool `json:"only_missing,omitempty"`
	BatchSize   int  `json:"batch_size,omitempty"`
}

func (s *Server) handleIndexRun(w http.ResponseWriter, r *http.Request) {
	var req indexRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := s.index.Run(r.Context(), indexuc.Options{
		OnlyMissing: req.OnlyMissing,
		BatchSize:   req.BatchSize,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.index.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// --- Health and metrics ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Error mapping ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
	sentinels := []error{
		domain.ErrMissingInput,
		domain.ErrNotFound,
		domain.ErrUnauthorized,
		domain.ErrUnsupportedImage,
		domain.ErrVectorDimMismatch,
		domain.ErrModelResponse,
		domain.ErrUpstreamUnavailable,
		domain.ErrUpstreamTimeout,
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
