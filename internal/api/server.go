package api

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/imagesearch/internal/api/handlers"
	"github.com/amaumene/imagesearch/internal/api/middleware"
	"github.com/amaumene/imagesearch/internal/config"
	"github.com/amaumene/imagesearch/internal/controllers"
	"github.com/amaumene/imagesearch/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	app     *fiber.App
	addr    string
	session *controllers.SessionController
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, session *controllers.SessionController, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		addr:    ":" + cfg.ServerPort,
		session: session,
		metrics: m,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(middleware.Logging(logger))
	s.setupRoutes()

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Get)

	// Prometheus metrics
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	// Search session
	sessionHandler := handlers.NewSessionHandler(s.session, s.logger)
	api := s.app.Group("/api")
	api.Get("/state", sessionHandler.State)
	api.Post("/search", sessionHandler.Search)
	api.Post("/search/next", sessionHandler.Next)
	api.Post("/search/refresh", sessionHandler.Refresh)
	api.Post("/items/toggle", sessionHandler.Toggle)
	api.Post("/saved/reload", sessionHandler.ReloadSaved)
	api.Get("/favorites", sessionHandler.Favorites)
	api.Delete("/favorites/:id", sessionHandler.RemoveFavorite)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
