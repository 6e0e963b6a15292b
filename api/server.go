package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the REST API server
type Server struct {
	evaluator  *core.Evaluator
	store      core.ResultStore
	router     *mux.Router
	httpServer *http.Server
	config     ServerConfig
	logger     *zap.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	MaxBodyBytes    int64         `json:"max_body_bytes"`
	RequireFinite   bool          `json:"require_finite"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    32 << 20,
	}
}

// NewServer creates a new API server. A nil evaluator computes sequentially,
// a nil logger discards output.
func NewServer(evaluator *core.Evaluator, store core.ResultStore, config ServerConfig, logger *zap.Logger) *Server {
	if evaluator == nil {
		evaluator = core.NewEvaluator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		evaluator: evaluator,
		store:     store,
		config:    config,
		logger:    logger,
	}

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(jsonContentTypeMiddleware)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Kernel endpoints
	s.router.HandleFunc("/kernels/{family}", s.handleComputeKernel).Methods("POST")

	// Result endpoints
	s.router.HandleFunc("/results", s.handleListResults).Methods("GET")
	s.router.HandleFunc("/results/{id}", s.handleGetResult).Methods("GET")
	s.router.HandleFunc("/results/{id}", s.handleDeleteResult).Methods("DELETE")

	// Stats endpoints
	s.router.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Documentation endpoints
	s.setupOpenAPI()
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := s.httpServer.Addr
	s.logger.Info("starting kernelfn API server",
		zap.String("addr", addr),
		zap.String("openapi", fmt.Sprintf("http://%s/openapi.yaml", addr)))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware functions
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)))
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// statusFor maps kernel errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrShapeMismatch),
		errors.Is(err, core.ErrTypeMismatch),
		errors.Is(err, core.ErrInvalidShape),
		errors.Is(err, core.ErrNonFinite):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrResultNotFound),
		errors.Is(err, core.ErrUnknownFamily):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithErr writes err with the status it maps to
func (s *Server) respondWithErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.respondWithError(w, code, err.Error())
}

// Error response helper
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// JSON response helper
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON"}`))
		return
	}

	w.WriteHeader(code)
	w.Write(response)
}
