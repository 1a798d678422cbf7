// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrUnavailable reports that the cache database could not be opened or
// prepared. Callers decide whether that is fatal; the daemon treats it as
// fatal since there is no degraded mode without persistence.
var ErrUnavailable = errors.New("cache database unavailable")

// Open opens (or creates) the cache database file, enabling foreign-key
// enforcement and WAL journaling. All failures wrap ErrUnavailable.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
		}
	}

	// foreign_keys is per-connection in SQLite, so it has to ride the DSN:
	// the driver then applies it to every connection the pool opens, not
	// just the first. Cascade deletes from the servers table depend on it.
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode = WAL;`).Scan(&mode); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: enable WAL: %v", ErrUnavailable, err)
	}

	return conn, nil
}
