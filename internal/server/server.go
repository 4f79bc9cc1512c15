package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"investopaper/internal/metrics"
)

// Server wraps the HTTP listener for the API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the server with all routes mounted.
func New(port int, svcs Services, logger *zap.Logger) *Server {
	handler := NewHandler(svcs, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(handler, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// NewRouter mounts every API route on a chi router.
func NewRouter(h *Handler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(requestLogger(logger))
	r.Use(metrics.Middleware)

	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/config/public", h.PublicConfig)

		r.Route("/paper", func(r chi.Router) {
			r.Post("/init", h.PaperInit)
			r.Get("/state", h.PaperState)
			r.Post("/order", h.PaperOrder)
			r.Post("/mark-to-market", h.PaperMarkToMarket)
		})

		r.Get("/market/candles", h.MarketCandles)
		r.Get("/plan/today", h.PlanToday)
		r.Get("/news", h.NewsList)

		r.Route("/journal", func(r chi.Router) {
			r.Post("/", h.JournalCreate)
			r.Get("/", h.JournalList)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/news-summary", h.AINewsSummary)
			r.Post("/trade-briefing", h.AITradeBriefing)
		})
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
