// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache stores and serves per-guild bot state from the embedded
database: server settings, role classifications, permission-overwrite
snapshots, polls, reaction-role messages, and invite-to-role links.

# Construction

The Cache wraps an opened handle; it owns the rows, not the connection:

	conn, err := db.Open(cfg.DBPath)
	...
	c := cache.New(conn)

# Contract

Every operation validates its arguments before touching storage, so a
validation failure never leaves a partial write. Failures are reported as
wrapped sentinels checked with errors.Is:

  - ErrMissingArgument: a required argument was absent (zero id, empty code)
  - ErrInvalidArgument: an argument breaks the call contract (negative id,
    mismatched parallel lists)
  - ErrBadArgument: a well-formed value that is semantically invalid
    (multi-character prefix, non-numeric poll id)
  - ErrNotFound: absence where absence is anomalous (a poll row that should
    exist)

Expected absences are sentinels instead: nil for a missing overwrite or
unknown lock status, 0 for an unconfigured channel, an empty slice for a
guild with no roles.

# Duplicate Policy

Role-set adds are idempotent per id (INSERT OR IGNORE): re-adding a role
already present anywhere in its table is a silent no-op, a deliberate
guarantee under duplicate requests. Overwrite snapshots instead upsert, since
they are mutable state that must track the latest value. Removing something
absent is always a no-op.

# Multi-row Operations

Batch adds and removes run inside a single transaction after the whole batch
validates, so either every row is attempted or none are.
*/
package cache
