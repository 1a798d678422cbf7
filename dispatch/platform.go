// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dispatch

import (
	"context"

	"github.com/TonyToussaint/edubot2020/models"
)

// Platform is the narrow slice of the chat platform the dispatch workflows
// need. The bot gateway implements it; tests use a fake.
type Platform interface {
	// UnsyncedChannels returns the ids of every channel on the guild whose
	// permissions are not synced to a parent. Synced channels follow their
	// parent and are skipped by lock and unlock.
	UnsyncedChannels(ctx context.Context, guildID int64) ([]int64, error)

	// ChannelOverwrites returns the overwrites currently applied to a channel.
	ChannelOverwrites(ctx context.Context, guildID, channelID int64) ([]models.TargetOverwrite, error)

	// ApplyOverwrite sets a channel's overwrite for one role or user.
	ApplyOverwrite(ctx context.Context, guildID, channelID, targetID int64, ow models.Overwrite) error

	// EveryoneRoleID returns the id of the guild's @everyone role.
	EveryoneRoleID(ctx context.Context, guildID int64) (int64, error)

	// TargetExists reports whether a role or member with the given id still
	// exists on the guild.
	TargetExists(ctx context.Context, guildID, targetID int64) (bool, error)

	// MessageExists reports whether a message still exists in its channel.
	MessageExists(ctx context.Context, channelID, messageID int64) (bool, error)

	// GuildInvites returns the guild's live invites with their use counts.
	GuildInvites(ctx context.Context, guildID int64) ([]models.InviteUsage, error)
}
