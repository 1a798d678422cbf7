// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Overwrite is a saved permission overwrite: a pair of allow/deny bitmasks.
// The cache never interprets the bits; they are stored and returned verbatim.
type Overwrite struct {
	Allow int64
	Deny  int64
}

// TargetOverwrite pairs an overwrite with the role or user it applies to.
type TargetOverwrite struct {
	TargetID  int64
	Overwrite Overwrite
}

// MessageRef identifies a message by its hosting channel and message id.
type MessageRef struct {
	ChannelID int64
	MessageID int64
}

// RoleInvite maps an invite code to the role it grants on join.
type RoleInvite struct {
	Code   string
	RoleID int64
}

// InviteUsage is the live use-count of an invite as reported by the platform.
type InviteUsage struct {
	Code string
	Uses int64
}
