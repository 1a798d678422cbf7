// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dispatch coordinates the workflows that need both the chat platform
and the cache: lockdowns, poll lifecycle, invite-based role grants, and the
gateway event handlers that keep cached state in step with the live guild.

The platform is abstracted behind the Platform interface so the workflows
can be driven by the real gateway in production and by a fake in tests.
State that must survive a restart lives in the cache; the Dispatcher itself
only holds short-lived coordination state (pending unlock timers and the
managed-deletion set).

# Lockdowns

Lock walks every unsynced channel, snapshots its current overwrites into the
cache, and applies a restrictive overwrite to each non-privileged target.
Unlock replays the snapshot and clears it. Both fan the per-channel work out
concurrently and stop at the first failure. LockFor schedules an automatic
Unlock; the timer is process-local, so a guild locked with LockFor before a
restart stays locked until someone unlocks it by hand.

# Managed deletions

When the bot deletes a role itself, the initiating code brackets the call
with BeginManagedDeletion and EndManagedDeletion. HandleRoleDelete consults
the mark and leaves the cache rows alone for those, so the initiator can do
its own ordered cleanup. Marks expire after a short TTL in case the gateway
never echoes the deletion.
*/
package dispatch
