// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// AddReactionRole tracks a react-for-role message: reacting to messageID
// grants roleID. A message already tracked is left untouched and logged.
func (c *Cache) AddReactionRole(guildID, channelID, messageID, roleID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validID(channelID); err != nil {
		return err
	}
	if err := validID(messageID); err != nil {
		return err
	}
	if err := validID(roleID); err != nil {
		return err
	}

	res, err := c.db.Exec(`
		INSERT OR IGNORE INTO role_react_msgs (message_id, channel_id, server_id, role_id)
		VALUES (?, ?, ?, ?)
	`, messageID, channelID, guildID, roleID)
	if err != nil {
		return fmt.Errorf("add reaction role: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Warn("reaction role message already tracked", "guild_id", guildID, "message_id", messageID)
	}

	return nil
}

// RemoveReactionRole stops tracking a react-for-role message.
func (c *Cache) RemoveReactionRole(guildID, messageID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validID(messageID); err != nil {
		return err
	}

	_, err := c.db.Exec(`
		DELETE FROM role_react_msgs WHERE server_id = ? AND message_id = ?
	`, guildID, messageID)
	if err != nil {
		return fmt.Errorf("remove reaction role: %w", err)
	}

	return nil
}

// ReactionRole returns the role a message grants on reaction, or 0 when the
// message grants none.
func (c *Cache) ReactionRole(guildID, messageID int64) (int64, error) {
	if err := validID(guildID); err != nil {
		return 0, err
	}
	if err := validID(messageID); err != nil {
		return 0, err
	}

	var roleID int64
	err := c.db.QueryRow(`
		SELECT role_id FROM role_react_msgs
		WHERE server_id = ? AND message_id = ?
	`, guildID, messageID).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get reaction role: %w", err)
	}

	return roleID, nil
}
