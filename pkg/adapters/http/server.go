package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

// DefaultMaxBatch caps the number of calls accepted by one batch request.
const DefaultMaxBatch = 100

// DefaultMaxBodyBytes caps the size of a request body.
const DefaultMaxBodyBytes = 8 << 20

// ToolService is the tool surface the HTTP adapter serves.
type ToolService interface {
	Dispatch(ctx context.Context, toolName string, args map[string]any) domain.Response
	DispatchBatch(ctx context.Context, calls []domain.Call) []domain.Response
	ListTools(category string) []domain.Tool
}

// Server exposes a ToolService over HTTP.
type Server struct {
	tools        ToolService
	name         string
	app          string
	version      string
	metrics      http.Handler
	logger       *slog.Logger
	maxBatch     int
	maxBodyBytes int64
}

// Option configures the Server.
type Option func(*Server)

// WithServerName sets the server name advertised by discovery.
func WithServerName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithAppName sets the application name reported by /info.
func WithAppName(name string) Option {
	return func(s *Server) { s.app = name }
}

// WithVersion sets the version advertised by discovery and /info.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the logger for request and encoding errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBatch caps the number of calls in one batch request.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithMaxBodyBytes caps the size of a request body.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a Server with defaults applied.
func NewServer(tools ToolService, opts ...Option) *Server {
	s := &Server{
		tools:        tools,
		name:         "atidraw-mcp-server",
		app:          "atidraw-http",
		version:      "dev",
		logger:       slog.New(slog.DiscardHandler),
		maxBatch:     DefaultMaxBatch,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a ToolService.
func NewHandler(tools ToolService, opts ...Option) http.Handler {
	return NewServer(tools, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/api/mcp", func(r chi.Router) {
		r.Get("/tools", s.ListTools)
		r.Post("/execute", s.ExecuteTool)
		r.Post("/batch", s.ExecuteBatch)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Spec returns the embedded OpenAPI document, loaded and validated.
var Spec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
})

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type serverInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type catalogResponse struct {
	Tools  []domain.Tool `json:"tools"`
	Server serverInfo    `json:"server"`
	Status string        `json:"status"`
}

type batchRequest struct {
	Calls []domain.Call `json:"calls"`
}

type batchResponse struct {
	Results []domain.Response `json:"results"`
}

// ListTools serves the tool catalog, optionally filtered by ?category.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := s.tools.ListTools(r.URL.Query().Get("category"))
	if tools == nil {
		tools = []domain.Tool{}
	}
	s.writeJSON(w, http.StatusOK, catalogResponse{
		Tools: tools,
		Server: serverInfo{
			Name:         s.name,
			Version:      s.version,
			Capabilities: []string{"tools"},
		},
		Status: "active",
	})
}

// ExecuteTool runs one call and answers with its envelope.
func (s *Server) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	var call domain.Call
	if err := s.decode(w, r, &call); err != nil {
		s.writeEnvelope(w, domain.Fail(domain.KindBadRequest, "Invalid request body: %v", err))
		return
	}
	s.writeEnvelope(w, s.tools.Dispatch(r.Context(), call.ToolName, call.Arguments))
}

// ExecuteBatch runs several calls and answers with their envelopes in request order.
func (s *Server) ExecuteBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeEnvelope(w, domain.Fail(domain.KindBadRequest, "Invalid request body: %v", err))
		return
	}
	if len(req.Calls) > s.maxBatch {
		s.writeEnvelope(w, domain.Fail(domain.KindBadRequest, "Too many calls: %d exceeds the limit of %d", len(req.Calls), s.maxBatch))
		return
	}

	results := s.tools.DispatchBatch(r.Context(), req.Calls)
	if results == nil {
		results = []domain.Response{}
	}
	s.writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// GetHealth answers the liveness probe.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports the application version and the API document version.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err != nil {
		s.logger.Error("openapi document unavailable", "error", err)
	} else if doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         s.app,
		"version":     s.version,
		"api_version": apiVersion,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) writeEnvelope(w http.ResponseWriter, resp domain.Response) {
	s.writeJSON(w, resp.StatusCode(), resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
