// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) (conn *sql.DB, path string) {
	t.Helper()

	path = filepath.Join(t.TempDir(), "edubot.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, path
}

func TestOpen_SetsPragmas(t *testing.T) {
	conn, _ := openTestDB(t)

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode;`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode wal, got %q", mode)
	}

	var fk int
	if err := conn.QueryRow(`PRAGMA foreign_keys;`).Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Error("expected foreign_keys to be enabled")
	}
}

func TestOpen_ForeignKeysOnEveryConnection(t *testing.T) {
	conn, _ := openTestDB(t)
	ctx := context.Background()

	// Holding the first connection forces the pool to open a second
	// physical one; the pragma must hold on both.
	c1, err := conn.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()
	c2, err := conn.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var fk int
		if err := c.QueryRowContext(ctx, `PRAGMA foreign_keys;`).Scan(&fk); err != nil {
			t.Fatal(err)
		}
		if fk != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i+1, fk)
		}
	}
}

func TestSchema_CascadeDeleteOnSecondConnection(t *testing.T) {
	conn, _ := openTestDB(t)
	ctx := context.Background()

	if _, err := conn.Exec(`INSERT INTO servers (id) VALUES (798358551230677042)`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`
		INSERT INTO privileged_roles (role_id, server_id)
		VALUES (805602260993310752, 798358551230677042)
	`); err != nil {
		t.Fatal(err)
	}

	// Pin one connection so the delete lands on a different physical one.
	c1, err := conn.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()
	c2, err := conn.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	if _, err := c2.ExecContext(ctx, `DELETE FROM servers WHERE id = 798358551230677042`); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM privileged_roles`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected cascade on every connection, %d orphaned rows remain", count)
	}
}

func TestOpen_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "edubot.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("expected nested directories to be created: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_UnwritablePath(t *testing.T) {
	conn, err := Open("/proc/edubot/edubot.db")
	if err == nil {
		conn.Close()
		t.Fatal("expected error for unwritable path")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn, _ := openTestDB(t)

	// Data written between runs must survive a re-run.
	if _, err := conn.Exec(`INSERT INTO servers (id) VALUES (798358551230677042)`); err != nil {
		t.Fatal(err)
	}

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("second CreateSchema failed: %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM servers`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected existing row to survive, got %d rows", count)
	}
}

func TestSchema_ForeignKeyEnforced(t *testing.T) {
	conn, _ := openTestDB(t)

	// No parent server row: the insert must be rejected.
	_, err := conn.Exec(`
		INSERT INTO privileged_roles (role_id, server_id)
		VALUES (805602260993310752, 123456789012345678)
	`)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestSchema_CascadeDelete(t *testing.T) {
	conn, _ := openTestDB(t)

	if _, err := conn.Exec(`INSERT INTO servers (id) VALUES (798358551230677042)`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`
		INSERT INTO polls (poll_id, server_id, channel_id, message_id, questions)
		VALUES ('80840', 798358551230677042, 798358551230677080, 900000000000000123, 'a')
	`); err != nil {
		t.Fatal(err)
	}

	if _, err := conn.Exec(`DELETE FROM servers WHERE id = 798358551230677042`); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM polls`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected polls to cascade, %d remain", count)
	}
}
