package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"accpipeline/database"
	"accpipeline/internal/config"
	"accpipeline/pipeline"
	"accpipeline/server/middleware"
)

// Server exposes the pipeline over HTTP for review tooling: kicking off
// workbook runs, reviewing blacklist suggestions and approving names.
type Server struct {
	config *config.Config
	runner *pipeline.Runner
	db     *database.TrackerDB
	logger *slog.Logger

	httpServer *http.Server
}

// New wires a server from the loaded configuration.
func New(cfg *config.Config, runner *pipeline.Runner, db *database.TrackerDB) *Server {
	return &Server{
		config: cfg,
		runner: runner,
		db:     db,
		logger: slog.Default().With("component", "server"),
	}
}

// Handler builds the gin router. Exposed separately so tests can drive
// it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Gzip())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/transform", s.handleTransform)
		api.POST("/match", s.handleMatch)
		api.GET("/blacklist/suggestions", s.handleSuggestions)
		api.POST("/blacklist/approve", s.handleApprove)
		api.GET("/runs", s.handleRuns)
	}

	return router
}

// Start serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // workbook runs are slow
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
