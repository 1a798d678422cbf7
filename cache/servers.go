// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// DefaultPrefix is the command prefix a server starts with.
const DefaultPrefix = "!"

// AddServer creates the settings row for a guild with default values.
// Adding a guild that already has a row is a silent no-op.
func (c *Cache) AddServer(guildID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}

	_, err := c.db.Exec(`
		INSERT OR IGNORE INTO servers (id, command_prefix, is_locked)
		VALUES (?, ?, 0)
	`, guildID, DefaultPrefix)
	if err != nil {
		return fmt.Errorf("add server: %w", err)
	}

	return nil
}

// RemoveServer deletes a guild's settings row and, via cascade, every
// dependent row in the other tables. Removing an absent guild is a no-op.
func (c *Cache) RemoveServer(guildID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}

	_, err := c.db.Exec(`DELETE FROM servers WHERE id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("remove server: %w", err)
	}

	return nil
}

// CommandPrefix returns the guild's command prefix. A guild missing from the
// cache shouldn't happen normally; when it does the row is re-created with
// defaults and the default prefix is returned.
func (c *Cache) CommandPrefix(guildID int64) (string, error) {
	if err := validID(guildID); err != nil {
		return "", err
	}

	var prefix string
	err := c.db.QueryRow(`SELECT command_prefix FROM servers WHERE id = ?`, guildID).Scan(&prefix)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Warn("prefix lookup for unknown guild, re-adding server", "guild_id", guildID)
		if err := c.AddServer(guildID); err != nil {
			return "", err
		}
		return DefaultPrefix, nil
	}
	if err != nil {
		return "", fmt.Errorf("get command prefix: %w", err)
	}

	return prefix, nil
}

// SetCommandPrefix changes the guild's command prefix. The prefix must be
// exactly one character.
func (c *Cache) SetCommandPrefix(guildID int64, prefix string) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if utf8.RuneCountInString(prefix) != 1 {
		return ErrBadArgument
	}

	_, err := c.db.Exec(`UPDATE servers SET command_prefix = ? WHERE id = ?`, prefix, guildID)
	if err != nil {
		return fmt.Errorf("set command prefix: %w", err)
	}

	return nil
}

// LockStatus returns the guild's lock status, or nil when the guild is not
// in the cache. Callers need the tri-state: an unknown guild is not the same
// as a known-unlocked one.
func (c *Cache) LockStatus(guildID int64) (*bool, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}

	var locked bool
	err := c.db.QueryRow(`SELECT is_locked FROM servers WHERE id = ?`, guildID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lock status: %w", err)
	}

	return &locked, nil
}

// SetLockStatus records whether the guild is locked.
func (c *Cache) SetLockStatus(guildID int64, locked bool) error {
	if err := validID(guildID); err != nil {
		return err
	}

	_, err := c.db.Exec(`UPDATE servers SET is_locked = ? WHERE id = ?`, locked, guildID)
	if err != nil {
		return fmt.Errorf("set lock status: %w", err)
	}

	return nil
}

// InfractionChannelID returns the guild's infraction channel id, or 0 when
// none is configured or the guild is unknown.
func (c *Cache) InfractionChannelID(guildID int64) (int64, error) {
	return c.channelField(guildID, "infraction_channel")
}

// SetInfractionChannelID changes the guild's infraction channel. Passing 0
// clears it.
func (c *Cache) SetInfractionChannelID(guildID, channelID int64) error {
	return c.setChannelField(guildID, "infraction_channel", channelID)
}

// NotificationChannelID returns the guild's notification channel id, or 0
// when none is configured or the guild is unknown.
func (c *Cache) NotificationChannelID(guildID int64) (int64, error) {
	return c.channelField(guildID, "notification_channel")
}

// SetNotificationChannelID changes the guild's notification channel. Passing
// 0 clears it.
func (c *Cache) SetNotificationChannelID(guildID, channelID int64) error {
	return c.setChannelField(guildID, "notification_channel", channelID)
}

func (c *Cache) channelField(guildID int64, column string) (int64, error) {
	if err := validID(guildID); err != nil {
		return 0, err
	}

	var id sql.NullInt64
	query := fmt.Sprintf(`SELECT %s FROM servers WHERE id = ?`, column)
	err := c.db.QueryRow(query, guildID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", column, err)
	}
	if !id.Valid {
		return 0, nil
	}

	return id.Int64, nil
}

func (c *Cache) setChannelField(guildID int64, column string, channelID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if channelID < 0 {
		return ErrInvalidArgument
	}

	var value any
	if channelID != 0 {
		value = channelID
	}

	query := fmt.Sprintf(`UPDATE servers SET %s = ? WHERE id = ?`, column)
	if _, err := c.db.Exec(query, value, guildID); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}

	return nil
}
