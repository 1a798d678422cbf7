// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the EduBot cache service.

EduBot is a classroom-moderation chat bot; this module is its per-guild
configuration and permission-state cache, backed by an embedded SQLite
database.

# Starting the Service

The service takes its settings from environment variables or CLI flags:

	EDUBOT_DB_PATH=data/edubot.db go run main.go

Or with flags:

	go run main.go -d data/edubot.db -flush 1m

# Configuration

Optional settings:

  - EDUBOT_DB_PATH (-d): Cache database path (default: data/edubot.db)
  - EDUBOT_FLUSH_INTERVAL (-flush): Durability flush cadence (default: 1m)

# Architecture

The binary itself runs only the store lifecycle: open, schema creation, and
the periodic durability flush. The cache and dispatch packages are the
surface the bot gateway consumes as a library.

The module is split by concern:

  - cache: tenant-scoped reads and writes (prefixes, role sets, overwrites,
    polls, role invites, reaction roles)
  - dispatch: workflows that pair platform actions with cache writes
    (lockdowns, poll lifecycle, gateway event handlers)
  - db: schema creation and WAL durability flushing
  - models: shared value types
  - cliparse: configuration parsing
  - testutil: shared test fixtures

See package documentation for each component.
*/
package main
