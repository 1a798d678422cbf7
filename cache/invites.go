// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"fmt"

	"github.com/TonyToussaint/edubot2020/models"
)

// AddRoleInvite links an invite code to the role it grants on join, with the
// use counter starting at 0.
func (c *Cache) AddRoleInvite(guildID int64, code string, roleID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if code == "" {
		return ErrMissingArgument
	}
	if err := validID(roleID); err != nil {
		return err
	}

	_, err := c.db.Exec(`
		INSERT INTO role_invites (invite_id, server_id, role_id, uses_count)
		VALUES (?, ?, ?, 0)
	`, code, guildID, roleID)
	if err != nil {
		return fmt.Errorf("add role invite: %w", err)
	}

	return nil
}

// RemoveRoleInvite deletes the link for one invite code on the guild.
func (c *Cache) RemoveRoleInvite(guildID int64, code string) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if code == "" {
		return ErrMissingArgument
	}

	_, err := c.db.Exec(`DELETE FROM role_invites WHERE server_id = ? AND invite_id = ?`, guildID, code)
	if err != nil {
		return fmt.Errorf("remove role invite: %w", err)
	}

	return nil
}

// RemoveAllRoleInvites deletes every invite link on the guild.
func (c *Cache) RemoveAllRoleInvites(guildID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}

	_, err := c.db.Exec(`DELETE FROM role_invites WHERE server_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("remove all role invites: %w", err)
	}

	return nil
}

// RoleInvites returns every (code, role) link on the guild.
func (c *Cache) RoleInvites(guildID int64) ([]models.RoleInvite, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`SELECT invite_id, role_id FROM role_invites WHERE server_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list role invites: %w", err)
	}
	defer rows.Close()

	invites := []models.RoleInvite{}
	for rows.Next() {
		var inv models.RoleInvite
		if err := rows.Scan(&inv.Code, &inv.RoleID); err != nil {
			return nil, fmt.Errorf("list role invites: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list role invites: %w", err)
	}

	return invites, nil
}

// ResolveUsedInvite determines which tracked invite a just-joined member
// consumed by diffing the platform's live use-counts against the stored
// counters. The matched invite's counter is incremented and its role id
// returned. When no tracked invite's count increased the member joined via
// an untracked invite: ErrNotFound, which callers treat as "no auto-role
// applicable" rather than a hard failure.
func (c *Cache) ResolveUsedInvite(guildID int64, live []models.InviteUsage) (int64, error) {
	if err := validID(guildID); err != nil {
		return 0, err
	}

	rows, err := c.db.Query(`
		SELECT invite_id, uses_count, role_id FROM role_invites
		WHERE server_id = ?
	`, guildID)
	if err != nil {
		return 0, fmt.Errorf("resolve used invite: %w", err)
	}
	defer rows.Close()

	type record struct {
		uses   int64
		roleID int64
	}
	stored := make(map[string]record)
	for rows.Next() {
		var code string
		var rec record
		if err := rows.Scan(&code, &rec.uses, &rec.roleID); err != nil {
			return 0, fmt.Errorf("resolve used invite: %w", err)
		}
		stored[code] = rec
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("resolve used invite: %w", err)
	}

	for _, inv := range live {
		rec, tracked := stored[inv.Code]
		if !tracked || inv.Uses <= rec.uses {
			continue
		}

		_, err := c.db.Exec(`
			UPDATE role_invites SET uses_count = ?
			WHERE server_id = ? AND invite_id = ?
		`, rec.uses+1, guildID, inv.Code)
		if err != nil {
			return 0, fmt.Errorf("resolve used invite: %w", err)
		}

		return rec.roleID, nil
	}

	return 0, fmt.Errorf("no tracked invite was used: %w", ErrNotFound)
}
