package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"accpipeline/database"
	"accpipeline/enrichment"
	"accpipeline/internal/config"
	"accpipeline/pipeline"
	"accpipeline/server"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file (environment-only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg.LogLevel)

	db, err := database.NewTrackerDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open tracker database: %v", err)
	}
	defer db.Close()

	var enrichers *enrichment.EnricherFactory
	if cfg.Enrichment != nil && cfg.Enrichment.Enabled {
		enrichers = enrichment.NewEnricherFactory(cfg.Enrichment.Services)
		defer enrichers.Close()
	}

	runner := pipeline.NewRunner(pipeline.Options{
		MatchThreshold:              cfg.MatchThreshold,
		BlacklistFrequencyThreshold: cfg.BlacklistFrequencyThreshold,
		DB:                          db,
		Enrichers:                   enrichers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, runner, db)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
