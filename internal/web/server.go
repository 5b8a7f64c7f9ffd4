package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"scanstock/internal/decode"
	"scanstock/internal/inventory"
	"scanstock/internal/scan"
	"scanstock/internal/store"
)

type Server struct {
	controller   *scan.Controller
	decoder      *decode.ImageDecoder
	dashboard    *inventory.Dashboard
	products     *store.ProductStore
	transactions *store.TransactionStore
	mux          *http.ServeMux
	logger       *slog.Logger
}

func NewServer(
	controller *scan.Controller,
	decoder *decode.ImageDecoder,
	dashboard *inventory.Dashboard,
	products *store.ProductStore,
	transactions *store.TransactionStore,
	logger *slog.Logger,
) *Server {
	s := &Server{
		controller:   controller,
		decoder:      decoder,
		dashboard:    dashboard,
		products:     products,
		transactions: transactions,
		mux:          http.NewServeMux(),
		logger:       logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.mux.HandleFunc("POST /scan", s.handleScan)
	s.mux.HandleFunc("POST /decode", s.handleDecodeImage)
	s.mux.HandleFunc("GET /session", s.handleGetSession)
	s.mux.HandleFunc("PUT /session/quantity", s.handleSetQuantity)
	s.mux.HandleFunc("POST /session/actions/{kind}", s.handleAction)
	s.mux.HandleFunc("DELETE /session", s.handleCloseSession)
	s.mux.HandleFunc("GET /dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /inventory", s.handleInventory)
	s.mux.HandleFunc("GET /transactions", s.handleTransactions)
	s.mux.HandleFunc("GET /labels/random", s.handleRandomLabel)
	s.mux.HandleFunc("GET /labels/in-stock", s.handleInStockLabel)
	s.mux.HandleFunc("GET /labels/{code}", s.handleLabel)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
