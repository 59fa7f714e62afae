// Package server provides the HTTP server and routing for TradeDeck.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/config"
	"github.com/tradedeck/tradedeck/internal/modules/comparison"
	comparisonhandlers "github.com/tradedeck/tradedeck/internal/modules/comparison/handlers"
	"github.com/tradedeck/tradedeck/internal/modules/market"
	markethandlers "github.com/tradedeck/tradedeck/internal/modules/market/handlers"
	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	portfoliohandlers "github.com/tradedeck/tradedeck/internal/modules/portfolio/handlers"
	"github.com/tradedeck/tradedeck/internal/modules/risk"
	riskhandlers "github.com/tradedeck/tradedeck/internal/modules/risk/handlers"
	"github.com/tradedeck/tradedeck/internal/modules/signals"
	signalshandlers "github.com/tradedeck/tradedeck/internal/modules/signals/handlers"
)

// Config holds server configuration and the module stores to expose.
type Config struct {
	Log     zerolog.Logger
	Config  *config.Config
	Port    int
	DevMode bool

	Ledger            *portfolio.Ledger
	PortfolioService  *portfolio.Service
	RiskCalculator    *risk.Calculator
	RiskRegistry      *risk.Registry
	MarketService     *market.Service
	SignalService     *signals.Service
	ComparisonService *comparison.Service
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	systemHandlers *SystemHandlers

	ledger            *portfolio.Ledger
	portfolioService  *portfolio.Service
	riskCalculator    *risk.Calculator
	riskRegistry      *risk.Registry
	marketService     *market.Service
	signalService     *signals.Service
	comparisonService *comparison.Service
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:            chi.NewRouter(),
		log:               cfg.Log.With().Str("component", "server").Logger(),
		cfg:               cfg.Config,
		systemHandlers:    NewSystemHandlers(cfg.Log, cfg.Config.DataDir),
		ledger:            cfg.Ledger,
		portfolioService:  cfg.PortfolioService,
		riskCalculator:    cfg.RiskCalculator,
		riskRegistry:      cfg.RiskRegistry,
		marketService:     cfg.MarketService,
		signalService:     cfg.SignalService,
		comparisonService: cfg.ComparisonService,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		portfoliohandlers.NewHandler(s.ledger, s.portfolioService, s.log).RegisterRoutes(r)
		riskhandlers.NewHandler(s.riskCalculator, s.riskRegistry, s.ledger, s.portfolioService, s.log).RegisterRoutes(r)
		markethandlers.NewHandler(s.marketService, s.log).RegisterRoutes(r)
		signalshandlers.NewHandler(s.signalService, s.log).RegisterRoutes(r)
		comparisonhandlers.NewHandler(s.comparisonService, s.log).RegisterRoutes(r)
	})
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
