// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared by the cache and dispatch layers.

All identifiers (guild, channel, role, user, message) are platform-assigned
64-bit snowflakes carried as int64. Zero is never a valid id, so 0 doubles as
"unset" for nullable fields.

# Types

  - Overwrite: allow/deny permission bitmask pair (opaque to the cache)
  - TargetOverwrite: an overwrite plus the role or user it applies to
  - MessageRef: channel id + message id of a hosted message
  - RoleInvite: invite code and the role it grants
  - InviteUsage: an invite's live use-count as reported by the platform
*/
package models
