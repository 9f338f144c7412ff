package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/http/middleware"
	"github.com/davidbz/pricelab/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      *cfg,
		handler:     handler,
		middlewares: middlewares,
		srv:         nil,
	}
}

// Routes returns the router with every endpoint and the middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.handler.HandleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", s.handler.HandleModels)
		r.Get("/models/{key}", s.handler.HandleModel)
		r.Get("/costs", s.handler.HandleCostTable)

		r.Post("/cost", s.handler.HandleCost)
		r.Post("/quote", s.handler.HandleQuote)
		r.Post("/strategies", s.handler.HandleStrategies)
		r.Post("/plan", s.handler.HandlePlan)
		r.Post("/blend", s.handler.HandleBlend)
		r.Post("/budget", s.handler.HandleBudget)
		r.Post("/estimate", s.handler.HandleEstimate)
		r.Post("/decisions", s.handler.HandleDecide)

		r.Get("/exchange-rate", s.handler.HandleGetExchangeRate)
		r.Put("/exchange-rate", s.handler.HandleSetExchangeRate)
		r.Delete("/exchange-rate", s.handler.HandleResetExchangeRate)

		r.Get("/results", s.handler.HandleResults)
	})

	return s.middlewares(r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if s.srv == nil {
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
