// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the cache.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Servers (one row per guild)
CREATE TABLE IF NOT EXISTS servers (
    id INTEGER PRIMARY KEY,
    command_prefix TEXT NOT NULL DEFAULT '!',
    infraction_channel INTEGER,
    notification_channel INTEGER,
    is_locked INTEGER NOT NULL DEFAULT 0
);

-- Group roles (role provisioned by the grouping feature, paired with a category channel)
CREATE TABLE IF NOT EXISTS groups (
    role_id INTEGER PRIMARY KEY,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_groups_server_id ON groups(server_id);

-- Privileged roles (elevated command privilege)
CREATE TABLE IF NOT EXISTS privileged_roles (
    role_id INTEGER PRIMARY KEY,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_privileged_roles_server_id ON privileged_roles(server_id);

-- Excluded roles (excluded from bulk operations)
CREATE TABLE IF NOT EXISTS excluded_roles (
    role_id INTEGER PRIMARY KEY,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_excluded_roles_server_id ON excluded_roles(server_id);

-- Permission overwrite snapshots taken before a server lock
CREATE TABLE IF NOT EXISTS perm_overwrites (
    channel_id INTEGER NOT NULL,
    modified_id INTEGER NOT NULL,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    allow_value INTEGER NOT NULL,
    deny_value INTEGER NOT NULL,
    PRIMARY KEY (channel_id, modified_id)
);

CREATE INDEX IF NOT EXISTS idx_perm_overwrites_server ON perm_overwrites(server_id);
CREATE INDEX IF NOT EXISTS idx_perm_overwrites_channel ON perm_overwrites(server_id, channel_id);

-- Polls (poll_id is a 5-digit token unique per guild, not globally)
CREATE TABLE IF NOT EXISTS polls (
    poll_id TEXT NOT NULL,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    channel_id INTEGER NOT NULL,
    message_id INTEGER NOT NULL UNIQUE,
    questions TEXT NOT NULL,
    PRIMARY KEY (poll_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_polls_server_id ON polls(server_id);

-- Poll ids are probed to be unique per guild; the index makes the store
-- enforce that, so a concurrent create loses cleanly instead of duplicating.
CREATE UNIQUE INDEX IF NOT EXISTS idx_polls_guild_poll ON polls(server_id, poll_id);

-- React-for-role messages
CREATE TABLE IF NOT EXISTS role_react_msgs (
    message_id INTEGER PRIMARY KEY,
    channel_id INTEGER NOT NULL,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    role_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_role_react_msgs_server_id ON role_react_msgs(server_id);

-- Invite-to-role links with use counters for join attribution
CREATE TABLE IF NOT EXISTS role_invites (
    invite_id TEXT PRIMARY KEY,
    server_id INTEGER NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
    role_id INTEGER NOT NULL,
    uses_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_role_invites_server_id ON role_invites(server_id);
`
