package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TonyToussaint/edubot2020/cliparse"
	"github.com/TonyToussaint/edubot2020/db"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the cache database
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Verify connection
	if err := conn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(conn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Cache database ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Flush the write-ahead log on a fixed cadence so a crash loses at most
	// one interval of writes.
	flusher := db.NewFlusher(conn, cfg.DBPath, cfg.FlushInterval)
	flusher.Run(ctx)

	// Final flush so a clean shutdown loses nothing.
	if err := flusher.Checkpoint(); err != nil {
		slog.Error("final checkpoint failed", "error", err)
	}
	slog.Info("Cache closed")
}
