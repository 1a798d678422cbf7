// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"errors"
	"testing"

	"github.com/TonyToussaint/edubot2020/models"
)

func TestAddServer_Idempotent(t *testing.T) {
	c := newTestCache(t)

	// Guild row already exists from setup; customize it.
	if err := c.SetCommandPrefix(testGuildID, "?"); err != nil {
		t.Fatal(err)
	}

	// Re-adding must not reset the customized prefix.
	if err := c.AddServer(testGuildID); err != nil {
		t.Fatalf("re-add returned error: %v", err)
	}

	prefix, err := c.CommandPrefix(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "?" {
		t.Errorf("expected prefix %q to survive re-add, got %q", "?", prefix)
	}
}

func TestCommandPrefix_Default(t *testing.T) {
	c := newTestCache(t)

	prefix, err := c.CommandPrefix(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != DefaultPrefix {
		t.Errorf("expected default prefix %q, got %q", DefaultPrefix, prefix)
	}
}

func TestCommandPrefix_SelfHealsUnknownGuild(t *testing.T) {
	c := newTestCache(t)
	const otherGuild int64 = 999999999999999999

	prefix, err := c.CommandPrefix(otherGuild)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != DefaultPrefix {
		t.Errorf("expected default prefix for unknown guild, got %q", prefix)
	}

	// The lookup should have re-created the row.
	locked, err := c.LockStatus(otherGuild)
	if err != nil {
		t.Fatal(err)
	}
	if locked == nil {
		t.Error("expected guild row to exist after self-heal")
	}
}

func TestSetCommandPrefix(t *testing.T) {
	c := newTestCache(t)

	if err := c.SetCommandPrefix(testGuildID, "$"); err != nil {
		t.Fatal(err)
	}

	prefix, err := c.CommandPrefix(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "$" {
		t.Errorf("expected prefix %q, got %q", "$", prefix)
	}
}

func TestSetCommandPrefix_RejectsNonSingleCharacter(t *testing.T) {
	c := newTestCache(t)

	for _, prefix := range []string{"", "!!", "ab"} {
		err := c.SetCommandPrefix(testGuildID, prefix)
		if !errors.Is(err, ErrBadArgument) {
			t.Errorf("prefix %q: expected ErrBadArgument, got %v", prefix, err)
		}
	}

	// A multi-byte single rune is still one character.
	if err := c.SetCommandPrefix(testGuildID, "§"); err != nil {
		t.Errorf("single-rune prefix rejected: %v", err)
	}
}

func TestLockStatus_TriState(t *testing.T) {
	c := newTestCache(t)

	locked, err := c.LockStatus(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if locked == nil || *locked {
		t.Errorf("fresh guild should be known-unlocked, got %v", locked)
	}

	if err := c.SetLockStatus(testGuildID, true); err != nil {
		t.Fatal(err)
	}
	locked, err = c.LockStatus(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if locked == nil || !*locked {
		t.Error("expected locked after SetLockStatus(true)")
	}

	// An unknown guild is nil, not false.
	locked, err = c.LockStatus(111111111111111111)
	if err != nil {
		t.Fatal(err)
	}
	if locked != nil {
		t.Errorf("unknown guild should report nil, got %v", *locked)
	}
}

func TestChannelFields(t *testing.T) {
	c := newTestCache(t)

	// Unset reads as 0.
	id, err := c.InfractionChannelID(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("expected 0 for unset infraction channel, got %d", id)
	}

	if err := c.SetInfractionChannelID(testGuildID, testChannelA); err != nil {
		t.Fatal(err)
	}
	if err := c.SetNotificationChannelID(testGuildID, testChannelB); err != nil {
		t.Fatal(err)
	}

	id, err = c.InfractionChannelID(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if id != testChannelA {
		t.Errorf("expected infraction channel %d, got %d", testChannelA, id)
	}

	id, err = c.NotificationChannelID(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if id != testChannelB {
		t.Errorf("expected notification channel %d, got %d", testChannelB, id)
	}

	// 0 clears the setting.
	if err := c.SetInfractionChannelID(testGuildID, 0); err != nil {
		t.Fatal(err)
	}
	id, err = c.InfractionChannelID(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("expected cleared infraction channel, got %d", id)
	}
}

func TestRemoveServer_CascadesDependentRows(t *testing.T) {
	c := newTestCache(t)

	if err := c.AddPrivilegedRoles(testGuildID, testRoleA); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveOverwrite(testGuildID, testChannelA, testRoleA, models.Overwrite{Allow: 1024, Deny: 2048}); err != nil {
		t.Fatal(err)
	}
	if err := c.AddRoleInvite(testGuildID, "xK9fQ2", testRoleA); err != nil {
		t.Fatal(err)
	}

	if err := c.RemoveServer(testGuildID); err != nil {
		t.Fatal(err)
	}

	// All tenant rows must be gone with the parent.
	var count int
	err := c.db.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM privileged_roles WHERE server_id = ?) +
			(SELECT COUNT(1) FROM perm_overwrites WHERE server_id = ?) +
			(SELECT COUNT(1) FROM role_invites WHERE server_id = ?)
	`, testGuildID, testGuildID, testGuildID).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected cascade to remove dependent rows, %d remain", count)
	}
}

func TestServerOps_RejectBadGuildID(t *testing.T) {
	c := newTestCache(t)

	if err := c.AddServer(0); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("AddServer(0): expected ErrMissingArgument, got %v", err)
	}
	if _, err := c.CommandPrefix(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("CommandPrefix(-1): expected ErrInvalidArgument, got %v", err)
	}
	if err := c.SetInfractionChannelID(testGuildID, -5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative channel id: expected ErrInvalidArgument, got %v", err)
	}
}
