// Package main is the entry point for the Frelance API server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. Its job is to:
//  1. Read configuration (.env file, then environment variables)
//  2. Create the logger
//  3. Hand both to internal/server and start it
//
// All actual logic lives in imported packages (internal/server,
// internal/service, etc.), which keeps it testable without a process.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/frelance/internal/config"
	"github.com/sakif/frelance/internal/server"
)

func main() {
	// A .env file is a development convenience; production sets real
	// environment variables and has none.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("error", envErr.Error()))
	}

	// Make sure the database directory exists (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
