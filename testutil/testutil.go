// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/TonyToussaint/edubot2020/cache"
	"github.com/TonyToussaint/edubot2020/db"
)

// OpenTestDB opens a fresh cache database in a per-test temp directory with
// the full schema applied. The database is closed when the test ends.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "edubot.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// NewTestCache returns a cache backed by a fresh test database.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.New(OpenTestDB(t))
}

// AddTestServer registers a guild so tenant-scoped rows have a parent.
func AddTestServer(t *testing.T, c *cache.Cache, guildID int64) {
	t.Helper()
	if err := c.AddServer(guildID); err != nil {
		t.Fatalf("Failed to add test server: %v", err)
	}
}
