// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Flusher periodically checkpoints the WAL into the main database file.
// Committed state lives only in the WAL between checkpoints, so up to one
// interval of writes can be lost if the host dies uncleanly. That window is
// an accepted durability/latency tradeoff.
type Flusher struct {
	db       *sql.DB
	path     string
	interval time.Duration
}

// NewFlusher returns a Flusher checkpointing db every interval.
// path is the database file, used only for size reporting.
func NewFlusher(db *sql.DB, path string, interval time.Duration) *Flusher {
	return &Flusher{db: db, path: path, interval: interval}
}

// Run checkpoints on the configured cadence until ctx is cancelled.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Checkpoint(); err != nil {
				slog.Error("wal checkpoint failed", "error", err)
			}
		}
	}
}

// Checkpoint forces a single WAL checkpoint immediately.
func (f *Flusher) Checkpoint() error {
	var busy, logFrames, checkpointed int
	err := f.db.QueryRow(`PRAGMA wal_checkpoint(TRUNCATE);`).Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}

	size := "unknown"
	if info, statErr := os.Stat(f.path); statErr == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	slog.Info("cache checkpointed", "db_size", size, "busy", busy != 0)

	return nil
}
