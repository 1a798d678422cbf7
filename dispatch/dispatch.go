// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"

	"github.com/TonyToussaint/edubot2020/cache"
	"github.com/TonyToussaint/edubot2020/models"
)

// Permission bits of the restrictive overwrite a lockdown applies. Denying
// these three silences a channel for text and voice alike.
const (
	permViewChannel  int64 = 1 << 10
	permSendMessages int64 = 1 << 11
	permConnect      int64 = 1 << 20
)

// managedDeletionTTL bounds how long a role deletion stays marked as
// bot-initiated. Gateway events for a deletion we performed ourselves arrive
// within seconds; the TTL only guards against a marker leaking forever when
// the platform drops the event.
const managedDeletionTTL = 30 * time.Second

var (
	// ErrAlreadyLocked is returned by Lock when the guild is already locked.
	ErrAlreadyLocked = errors.New("guild is already locked")

	// ErrNotLocked is returned by Unlock when the guild is not locked.
	ErrNotLocked = errors.New("guild is not locked")
)

// Dispatcher runs the multi-step workflows that pair platform actions with
// cache writes: lockdowns, poll lifecycle, and the gateway event handlers
// that keep cached state from going stale.
type Dispatcher struct {
	cache    *cache.Cache
	platform Platform

	mu           sync.Mutex
	unlockTimers map[int64]*time.Timer

	managed *ttlcache.Cache[int64, struct{}]
}

// New returns a Dispatcher backed by the given cache and platform.
func New(c *cache.Cache, p Platform) *Dispatcher {
	managed := ttlcache.New(
		ttlcache.WithTTL[int64, struct{}](managedDeletionTTL),
		ttlcache.WithDisableTouchOnHit[int64, struct{}](),
	)
	go managed.Start()

	return &Dispatcher{
		cache:        c,
		platform:     p,
		unlockTimers: make(map[int64]*time.Timer),
		managed:      managed,
	}
}

// Close stops every scheduled unlock and the managed-deletion janitor.
// Scheduled unlocks are cancelled, not run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	for guildID, timer := range d.unlockTimers {
		timer.Stop()
		delete(d.unlockTimers, guildID)
	}
	d.mu.Unlock()

	d.managed.Stop()
}

// Lock snapshots the current permission overwrites of every unsynced channel
// on the guild, then applies a restrictive overwrite denying view, send and
// connect to each non-privileged target. Channels with no overwrites of
// their own get a neutral @everyone row in the snapshot so Unlock can
// restore them to open. The lock flag is set only after every channel is
// locked down.
func (d *Dispatcher) Lock(ctx context.Context, guildID int64) error {
	locked, err := d.cache.LockStatus(guildID)
	if err != nil {
		return err
	}
	if locked != nil && *locked {
		return ErrAlreadyLocked
	}

	everyoneID, err := d.platform.EveryoneRoleID(ctx, guildID)
	if err != nil {
		return fmt.Errorf("lock guild %d: %w", guildID, err)
	}

	channelIDs, err := d.platform.UnsyncedChannels(ctx, guildID)
	if err != nil {
		return fmt.Errorf("lock guild %d: %w", guildID, err)
	}

	restrictive := models.Overwrite{Deny: permViewChannel | permSendMessages | permConnect}

	g, gctx := errgroup.WithContext(ctx)
	for _, channelID := range channelIDs {
		channelID := channelID
		g.Go(func() error {
			return d.lockChannel(gctx, guildID, channelID, everyoneID, restrictive)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("lock guild %d: %w", guildID, err)
	}

	if err := d.cache.SetLockStatus(guildID, true); err != nil {
		return err
	}

	slog.Info("guild locked", "guild_id", guildID, "channels", len(channelIDs))
	return nil
}

func (d *Dispatcher) lockChannel(ctx context.Context, guildID, channelID, everyoneID int64, restrictive models.Overwrite) error {
	current, err := d.platform.ChannelOverwrites(ctx, guildID, channelID)
	if err != nil {
		return fmt.Errorf("channel %d: %w", channelID, err)
	}
	if len(current) == 0 {
		current = []models.TargetOverwrite{{TargetID: everyoneID}}
	}

	for _, ow := range current {
		privileged, err := d.cache.IsPrivilegedRole(guildID, ow.TargetID)
		if err != nil {
			return fmt.Errorf("channel %d: %w", channelID, err)
		}
		if privileged {
			continue
		}

		if err := d.cache.SaveOverwrite(guildID, channelID, ow.TargetID, ow.Overwrite); err != nil {
			return fmt.Errorf("channel %d: %w", channelID, err)
		}
		if err := d.platform.ApplyOverwrite(ctx, guildID, channelID, ow.TargetID, restrictive); err != nil {
			return fmt.Errorf("channel %d target %d: %w", channelID, ow.TargetID, err)
		}
	}

	return nil
}

// Unlock restores the overwrites snapshotted by Lock, clears the snapshot,
// drops the lock flag and cancels any scheduled unlock. Targets deleted
// while the guild was locked are skipped.
func (d *Dispatcher) Unlock(ctx context.Context, guildID int64) error {
	locked, err := d.cache.LockStatus(guildID)
	if err != nil {
		return err
	}
	if locked == nil || !*locked {
		return ErrNotLocked
	}

	channelIDs, err := d.platform.UnsyncedChannels(ctx, guildID)
	if err != nil {
		return fmt.Errorf("unlock guild %d: %w", guildID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, channelID := range channelIDs {
		channelID := channelID
		g.Go(func() error {
			return d.unlockChannel(gctx, guildID, channelID)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("unlock guild %d: %w", guildID, err)
	}

	if err := d.cache.SetLockStatus(guildID, false); err != nil {
		return err
	}
	if err := d.cache.RemoveOverwrites(guildID, 0, 0); err != nil {
		return err
	}
	d.CancelScheduledUnlock(guildID)

	slog.Info("guild unlocked", "guild_id", guildID, "channels", len(channelIDs))
	return nil
}

func (d *Dispatcher) unlockChannel(ctx context.Context, guildID, channelID int64) error {
	saved, err := d.cache.ChannelOverwrites(guildID, channelID)
	if err != nil {
		return fmt.Errorf("channel %d: %w", channelID, err)
	}

	for _, ow := range saved {
		exists, err := d.platform.TargetExists(ctx, guildID, ow.TargetID)
		if err != nil {
			return fmt.Errorf("channel %d target %d: %w", channelID, ow.TargetID, err)
		}
		if !exists {
			slog.Warn("skipping restore for deleted target",
				"guild_id", guildID, "channel_id", channelID, "target_id", ow.TargetID)
			continue
		}

		if err := d.platform.ApplyOverwrite(ctx, guildID, channelID, ow.TargetID, ow.Overwrite); err != nil {
			return fmt.Errorf("channel %d target %d: %w", channelID, ow.TargetID, err)
		}
	}

	return nil
}

// LockFor locks the guild and schedules an automatic unlock after the given
// duration. A non-positive duration is rejected. Scheduling replaces any
// earlier pending unlock for the guild.
func (d *Dispatcher) LockFor(ctx context.Context, guildID int64, after time.Duration) error {
	if after <= 0 {
		return cache.ErrBadArgument
	}

	if err := d.Lock(ctx, guildID); err != nil {
		return err
	}

	timer := time.AfterFunc(after, func() {
		if err := d.Unlock(context.Background(), guildID); err != nil {
			slog.Error("scheduled unlock failed", "guild_id", guildID, "error", err)
		}
	})

	d.mu.Lock()
	if prev, ok := d.unlockTimers[guildID]; ok {
		prev.Stop()
	}
	d.unlockTimers[guildID] = timer
	d.mu.Unlock()

	slog.Info("guild locked with scheduled unlock", "guild_id", guildID, "after", after)
	return nil
}

// CancelScheduledUnlock cancels a pending automatic unlock for the guild.
// It reports whether a timer was pending.
func (d *Dispatcher) CancelScheduledUnlock(guildID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	timer, ok := d.unlockTimers[guildID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(d.unlockTimers, guildID)
	return true
}

// ClosePoll resolves a poll id to its message so the caller can tally
// reactions, then removes the poll from the cache. When the poll's message
// was deleted out from under it the stale row is pruned and found is false.
func (d *Dispatcher) ClosePoll(ctx context.Context, guildID int64, pollID string) (msg models.MessageRef, found bool, err error) {
	msg, err = d.cache.PollMessage(guildID, pollID)
	if err != nil {
		return models.MessageRef{}, false, err
	}

	exists, err := d.platform.MessageExists(ctx, msg.ChannelID, msg.MessageID)
	if err != nil {
		return models.MessageRef{}, false, fmt.Errorf("close poll %s: %w", pollID, err)
	}

	if err := d.cache.RemovePoll(guildID, pollID); err != nil {
		return models.MessageRef{}, false, err
	}

	if !exists {
		slog.Warn("poll message gone, pruned stale poll", "guild_id", guildID, "poll_id", pollID)
		return models.MessageRef{}, false, nil
	}

	return msg, true, nil
}

// HandleGuildJoin registers a newly joined guild with default settings.
func (d *Dispatcher) HandleGuildJoin(guildID int64) error {
	return d.cache.AddServer(guildID)
}

// HandleGuildLeave drops a departed guild and all its per-guild state.
func (d *Dispatcher) HandleGuildLeave(guildID int64) error {
	d.CancelScheduledUnlock(guildID)
	return d.cache.RemoveServer(guildID)
}

// HandleChannelDelete drops state tied to a deleted channel: its saved
// overwrites and any polls that lived in it.
func (d *Dispatcher) HandleChannelDelete(guildID, channelID int64) error {
	if err := d.cache.RemoveOverwrites(guildID, channelID, 0); err != nil {
		return err
	}
	return d.cache.PrunePolls(guildID, channelID)
}

// HandleMemberLeave drops saved overwrites targeting a departed member.
func (d *Dispatcher) HandleMemberLeave(guildID, userID int64) error {
	return d.cache.RemoveOverwrites(guildID, 0, userID)
}

// HandleRoleDelete drops a deleted role from every role set and removes its
// saved overwrites. Deletions the bot performed itself are marked via
// BeginManagedDeletion and skipped here, leaving cleanup to the caller that
// initiated them.
func (d *Dispatcher) HandleRoleDelete(guildID, roleID int64) error {
	if d.managed.Get(roleID) != nil {
		slog.Debug("ignoring managed role deletion", "guild_id", guildID, "role_id", roleID)
		return nil
	}

	if err := d.cache.RemoveGroupRoles(guildID, roleID); err != nil {
		return err
	}
	if err := d.cache.RemovePrivilegedRoles(guildID, roleID); err != nil {
		return err
	}
	if err := d.cache.RemoveExcludedRoles(guildID, roleID); err != nil {
		return err
	}
	return d.cache.RemoveOverwrites(guildID, 0, roleID)
}

// HandleMemberJoin works out which tracked invite the new member used and
// returns the role to grant them. cache.ErrNotFound means no tracked invite
// was used and no role should be granted.
func (d *Dispatcher) HandleMemberJoin(ctx context.Context, guildID int64) (int64, error) {
	live, err := d.platform.GuildInvites(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("member join on guild %d: %w", guildID, err)
	}
	return d.cache.ResolveUsedInvite(guildID, live)
}

// BeginManagedDeletion marks an upcoming role deletion as bot-initiated so
// HandleRoleDelete leaves its cache rows alone. The mark expires on its own
// if the gateway never echoes the deletion back.
func (d *Dispatcher) BeginManagedDeletion(roleID int64) {
	d.managed.Set(roleID, struct{}{}, ttlcache.DefaultTTL)
}

// EndManagedDeletion clears a managed-deletion mark early.
func (d *Dispatcher) EndManagedDeletion(roleID int64) {
	d.managed.Delete(roleID)
}
