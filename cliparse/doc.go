// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - DBPath: Path to the SQLite cache database (default: data/edubot.db)
  - FlushInterval: Durability flush cadence (default: 1m)

# CLI Flags

	-d      Cache database path
	-flush  Flush interval as a Go duration (e.g. 1m, 30s)

# Environment Variables

Flags fall back to environment variables, loaded from a .env file when one
exists in the working directory:

	EDUBOT_DB_PATH        → -d
	EDUBOT_FLUSH_INTERVAL → -flush

CLI flags take precedence over environment variables.

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	conn, err := db.Open(cfg.DBPath)
	// ...
*/
package cliparse
