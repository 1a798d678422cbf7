// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/TonyToussaint/edubot2020/models"
)

// SaveOverwrite stores a permission overwrite snapshot for a (channel,
// target) pair, where target is a role or user id. Saving over an existing
// pair replaces the prior bitmasks: overwrites are mutable state and the
// latest snapshot wins, unlike the idempotent role tables.
func (c *Cache) SaveOverwrite(guildID, channelID, targetID int64, ow models.Overwrite) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validID(channelID); err != nil {
		return err
	}
	if err := validID(targetID); err != nil {
		return err
	}

	_, err := c.db.Exec(`
		INSERT INTO perm_overwrites (channel_id, modified_id, server_id, allow_value, deny_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(channel_id, modified_id) DO UPDATE SET
			allow_value = excluded.allow_value,
			deny_value = excluded.deny_value
	`, channelID, targetID, guildID, ow.Allow, ow.Deny)
	if err != nil {
		return fmt.Errorf("save overwrite: %w", err)
	}

	return nil
}

// RemoveOverwrites deletes overwrite snapshots for a guild. Passing zero for
// channelID or targetID leaves that filter off, so the deletion scope narrows
// from guild-wide, to one channel, to a single (channel, target) pair. The
// guild-wide form backs server unlock; the target form backs member-leave and
// role-delete cleanup.
func (c *Cache) RemoveOverwrites(guildID, channelID, targetID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}

	query := `DELETE FROM perm_overwrites WHERE server_id = ?`
	args := []any{guildID}

	if channelID != 0 {
		if channelID < 0 {
			return ErrInvalidArgument
		}
		query += ` AND channel_id = ?`
		args = append(args, channelID)
	}
	if targetID != 0 {
		if targetID < 0 {
			return ErrInvalidArgument
		}
		query += ` AND modified_id = ?`
		args = append(args, targetID)
	}

	if _, err := c.db.Exec(query, args...); err != nil {
		return fmt.Errorf("remove overwrites: %w", err)
	}

	return nil
}

// GetOverwrite returns the stored overwrite for a (channel, target) pair, or
// nil when none is saved.
func (c *Cache) GetOverwrite(guildID, channelID, targetID int64) (*models.Overwrite, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}
	if err := validID(channelID); err != nil {
		return nil, err
	}
	if err := validID(targetID); err != nil {
		return nil, err
	}

	var ow models.Overwrite
	err := c.db.QueryRow(`
		SELECT allow_value, deny_value FROM perm_overwrites
		WHERE server_id = ? AND channel_id = ? AND modified_id = ?
	`, guildID, channelID, targetID).Scan(&ow.Allow, &ow.Deny)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get overwrite: %w", err)
	}

	return &ow, nil
}

// ChannelOverwrites returns every saved (target, overwrite) pair for a
// channel, the set unlock reapplies in one pass.
func (c *Cache) ChannelOverwrites(guildID, channelID int64) ([]models.TargetOverwrite, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}
	if err := validID(channelID); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`
		SELECT modified_id, allow_value, deny_value FROM perm_overwrites
		WHERE server_id = ? AND channel_id = ?
		ORDER BY modified_id
	`, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list channel overwrites: %w", err)
	}
	defer rows.Close()

	overwrites := []models.TargetOverwrite{}
	for rows.Next() {
		var t models.TargetOverwrite
		if err := rows.Scan(&t.TargetID, &t.Overwrite.Allow, &t.Overwrite.Deny); err != nil {
			return nil, fmt.Errorf("list channel overwrites: %w", err)
		}
		overwrites = append(overwrites, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list channel overwrites: %w", err)
	}

	return overwrites, nil
}

// RetargetOverwriteChannel moves every snapshot on oldChannelID to
// newChannelID. Used when a channel is destructively recreated (delete-all
// via clone) so existing snapshots keep applying to the replacement.
func (c *Cache) RetargetOverwriteChannel(guildID, oldChannelID, newChannelID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validID(oldChannelID); err != nil {
		return err
	}
	if err := validID(newChannelID); err != nil {
		return err
	}

	_, err := c.db.Exec(`
		UPDATE perm_overwrites SET channel_id = ?
		WHERE server_id = ? AND channel_id = ?
	`, newChannelID, guildID, oldChannelID)
	if err != nil {
		return fmt.Errorf("retarget overwrites: %w", err)
	}

	return nil
}
