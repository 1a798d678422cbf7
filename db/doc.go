// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the cache database lifecycle: opening the embedded SQLite
file, schema creation, and the periodic WAL checkpoint task.

# Opening the Store

Open creates the file (and its parent directory) on first use, and enables
foreign-key enforcement plus WAL journaling:

	conn, err := db.Open("data/edubot.db")
	if err != nil {
		// wraps db.ErrUnavailable; fatal in the daemon
	}

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - servers: Per-guild settings (prefix, channels, lock status)
  - groups: Group roles with their category channels
  - privileged_roles: Roles with elevated command privilege
  - excluded_roles: Roles excluded from bulk operations
  - perm_overwrites: Saved permission overwrite snapshots
  - polls: Active polls and their answer strings
  - role_react_msgs: React-for-role messages
  - role_invites: Invite-to-role links with use counters

# Relationships

	servers 1──* groups
	servers 1──* privileged_roles
	servers 1──* excluded_roles
	servers 1──* perm_overwrites
	servers 1──* polls
	servers 1──* role_react_msgs
	servers 1──* role_invites

All foreign keys use ON DELETE CASCADE: removing a server removes every
dependent row.

# Conflict Policy

Duplicate-key behavior is load-bearing and lives in the DML, not the schema:
role tables insert with INSERT OR IGNORE (idempotent add), while
perm_overwrites upserts with ON CONFLICT DO UPDATE (latest snapshot wins).

# Durability

The Flusher checkpoints the WAL on a fixed cadence (one minute by default),
bounding how much committed state exists only in the WAL at any moment.
*/
package db
