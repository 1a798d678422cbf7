// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"testing"
	"time"
)

func TestFlusher_Checkpoint(t *testing.T) {
	conn, path := openTestDB(t)

	if _, err := conn.Exec(`INSERT INTO servers (id) VALUES (798358551230677042)`); err != nil {
		t.Fatal(err)
	}

	f := NewFlusher(conn, path, time.Minute)
	if err := f.Checkpoint(); err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	// The WAL was truncated, so the row now lives in the main file.
	var frames int
	var busy, checkpointed int
	if err := conn.QueryRow(`PRAGMA wal_checkpoint(PASSIVE);`).Scan(&busy, &frames, &checkpointed); err != nil {
		t.Fatal(err)
	}
	if frames != 0 {
		t.Errorf("expected empty WAL after checkpoint, %d frames remain", frames)
	}
}

func TestFlusher_RunStopsOnCancel(t *testing.T) {
	conn, path := openTestDB(t)

	f := NewFlusher(conn, path, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	// Let a few ticks fire, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
