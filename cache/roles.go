// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// The three role-set tables share one shape: role_id is the global primary
// key, server_id scopes rows to a guild. The table name is always one of
// these constants, never caller input.
type roleTable string

const (
	groupRoleTable      roleTable = "groups"
	privilegedRoleTable roleTable = "privileged_roles"
	excludedRoleTable   roleTable = "excluded_roles"
)

// AddPrivilegedRoles flags roles as having elevated command privilege.
// Re-adding a role already present is a silent no-op per id; the batch is
// validated in full before any write.
func (c *Cache) AddPrivilegedRoles(guildID int64, roleIDs ...int64) error {
	return c.addRoles(privilegedRoleTable, guildID, roleIDs)
}

// RemovePrivilegedRoles removes roles from the privileged set. Removing an
// absent role is a no-op.
func (c *Cache) RemovePrivilegedRoles(guildID int64, roleIDs ...int64) error {
	return c.removeRoles(privilegedRoleTable, guildID, roleIDs)
}

// IsPrivilegedRole reports whether the role is privileged on the guild.
func (c *Cache) IsPrivilegedRole(guildID, roleID int64) (bool, error) {
	return c.isRole(privilegedRoleTable, guildID, roleID)
}

// PrivilegedRoles returns the guild's privileged role ids. A guild with none
// returns an empty slice.
func (c *Cache) PrivilegedRoles(guildID int64) ([]int64, error) {
	return c.listRoles(privilegedRoleTable, guildID)
}

// AddExcludedRoles flags roles as excluded from bulk operations. Same
// contract as AddPrivilegedRoles.
func (c *Cache) AddExcludedRoles(guildID int64, roleIDs ...int64) error {
	return c.addRoles(excludedRoleTable, guildID, roleIDs)
}

// RemoveExcludedRoles removes roles from the excluded set.
func (c *Cache) RemoveExcludedRoles(guildID int64, roleIDs ...int64) error {
	return c.removeRoles(excludedRoleTable, guildID, roleIDs)
}

// IsExcludedRole reports whether the role is excluded on the guild.
func (c *Cache) IsExcludedRole(guildID, roleID int64) (bool, error) {
	return c.isRole(excludedRoleTable, guildID, roleID)
}

// ExcludedRoles returns the guild's excluded role ids.
func (c *Cache) ExcludedRoles(guildID int64) ([]int64, error) {
	return c.listRoles(excludedRoleTable, guildID)
}

// AddGroupRoles records group roles together with their category channels.
// roleIDs and categoryIDs are zipped pairwise and must be the same length;
// a mismatch fails before any write.
func (c *Cache) AddGroupRoles(guildID int64, roleIDs, categoryIDs []int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return ErrMissingArgument
	}
	if len(roleIDs) != len(categoryIDs) {
		return ErrInvalidArgument
	}
	if err := validIDs(roleIDs); err != nil {
		return err
	}
	if err := validIDs(categoryIDs); err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("add group roles: %w", err)
	}
	defer tx.Rollback()

	for i, roleID := range roleIDs {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO groups (role_id, server_id, category_id)
			VALUES (?, ?, ?)
		`, roleID, guildID, categoryIDs[i])
		if err != nil {
			return fmt.Errorf("add group roles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add group roles: %w", err)
	}

	return nil
}

// AddGroupRole records a single group role with its category channel.
func (c *Cache) AddGroupRole(guildID, roleID, categoryID int64) error {
	return c.AddGroupRoles(guildID, []int64{roleID}, []int64{categoryID})
}

// RemoveGroupRoles removes roles from the group set.
func (c *Cache) RemoveGroupRoles(guildID int64, roleIDs ...int64) error {
	return c.removeRoles(groupRoleTable, guildID, roleIDs)
}

// IsGroupRole reports whether the role is a group role on the guild.
func (c *Cache) IsGroupRole(guildID, roleID int64) (bool, error) {
	return c.isRole(groupRoleTable, guildID, roleID)
}

// GroupRoles returns the guild's group role ids.
func (c *Cache) GroupRoles(guildID int64) ([]int64, error) {
	return c.listRoles(groupRoleTable, guildID)
}

// GroupCategoryChannelID returns the category channel paired with a group
// role, or 0 when the role is not a group role on the guild.
func (c *Cache) GroupCategoryChannelID(guildID, roleID int64) (int64, error) {
	if err := validID(guildID); err != nil {
		return 0, err
	}
	if err := validID(roleID); err != nil {
		return 0, err
	}

	var categoryID int64
	err := c.db.QueryRow(`
		SELECT category_id FROM groups
		WHERE server_id = ? AND role_id = ?
	`, guildID, roleID).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get group category: %w", err)
	}

	return categoryID, nil
}

func (c *Cache) addRoles(table roleTable, guildID int64, roleIDs []int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return ErrMissingArgument
	}
	if err := validIDs(roleIDs); err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("add roles: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(`INSERT OR IGNORE INTO %s (role_id, server_id) VALUES (?, ?)`, table)
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(stmt, roleID, guildID); err != nil {
			return fmt.Errorf("add roles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add roles: %w", err)
	}

	return nil
}

func (c *Cache) removeRoles(table roleTable, guildID int64, roleIDs []int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return ErrMissingArgument
	}
	if err := validIDs(roleIDs); err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("remove roles: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE role_id = ? AND server_id = ?`, table)
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(stmt, roleID, guildID); err != nil {
			return fmt.Errorf("remove roles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove roles: %w", err)
	}

	return nil
}

func (c *Cache) isRole(table roleTable, guildID, roleID int64) (bool, error) {
	if err := validID(guildID); err != nil {
		return false, err
	}
	if err := validID(roleID); err != nil {
		return false, err
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE server_id = ? AND role_id = ?`, table)
	if err := c.db.QueryRow(query, guildID, roleID).Scan(&count); err != nil {
		return false, fmt.Errorf("role membership: %w", err)
	}

	return count > 0, nil
}

func (c *Cache) listRoles(table roleTable, guildID int64) ([]int64, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT role_id FROM %s WHERE server_id = ?`, table)
	rows, err := c.db.Query(query, guildID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := []int64{}
	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("list roles: %w", err)
		}
		roles = append(roles, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	return roles, nil
}
