// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/TonyToussaint/edubot2020/models"
)

// Poll ids are 5-digit tokens, unique within a guild only, kept short so
// they can be typed in chat.
const pollIDSpace = 100000

// answerDelim joins answer strings in storage. ASCII 0x01 never appears in
// chat text; it is stripped from answers anyway before joining.
const answerDelim = "\x01"

// CreatePoll records a poll hosted by the given message and returns its
// 5-digit id. The id is derived from (messageId * channelId) mod 100000 and
// linearly probed (wrapping at 100000) past any id already used by this
// guild, so two polls on one guild never collide.
func (c *Cache) CreatePoll(guildID int64, msg models.MessageRef, answers []string) (string, error) {
	if err := validID(guildID); err != nil {
		return "", err
	}
	if err := validID(msg.ChannelID); err != nil {
		return "", err
	}
	if err := validID(msg.MessageID); err != nil {
		return "", err
	}
	if len(answers) == 0 {
		return "", ErrMissingArgument
	}

	taken, err := c.pollIDSet(guildID)
	if err != nil {
		return "", err
	}

	clean := make([]string, len(answers))
	for i, a := range answers {
		clean[i] = strings.ReplaceAll(a, answerDelim, "")
	}
	joined := strings.Join(clean, answerDelim)

	// Equal to (messageId * channelId) mod 100000, kept in range so the
	// product cannot overflow int64.
	id := ((msg.MessageID % pollIDSpace) * (msg.ChannelID % pollIDSpace)) % pollIDSpace
	for {
		pollID := fmt.Sprintf("%05d", id)
		if _, used := taken[pollID]; !used {
			_, err := c.db.Exec(`
				INSERT INTO polls (poll_id, server_id, channel_id, message_id, questions)
				VALUES (?, ?, ?, ?, ?)
			`, pollID, guildID, msg.ChannelID, msg.MessageID, joined)
			if err == nil {
				return pollID, nil
			}
			if !isPollIDConflict(err) {
				return "", fmt.Errorf("create poll: %w", err)
			}
			// A concurrent create claimed this id between the set read and
			// the insert; the unique index rejects ours, keep probing.
			taken[pollID] = struct{}{}
		}
		id++
		if id == pollIDSpace {
			id = 0
		}
	}
}

// isPollIDConflict reports whether an insert was rejected by the per-guild
// poll-id uniqueness index, as opposed to any other constraint.
func isPollIDConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "polls.poll_id")
}

// RemovePoll deletes the poll row for the given id on the guild.
func (c *Cache) RemovePoll(guildID int64, pollID string) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validPollID(pollID); err != nil {
		return err
	}

	_, err := c.db.Exec(`DELETE FROM polls WHERE server_id = ? AND poll_id = ?`, guildID, pollID)
	if err != nil {
		return fmt.Errorf("remove poll: %w", err)
	}

	return nil
}

// PrunePolls deletes every poll hosted in a channel. Invoked when the
// channel is destroyed.
func (c *Cache) PrunePolls(guildID, channelID int64) error {
	if err := validID(guildID); err != nil {
		return err
	}
	if err := validID(channelID); err != nil {
		return err
	}

	_, err := c.db.Exec(`DELETE FROM polls WHERE server_id = ? AND channel_id = ?`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("prune polls: %w", err)
	}

	return nil
}

// PollMessage resolves a poll id to its hosting message reference. Returns
// ErrNotFound when the guild has no such poll; whether the message itself
// still exists is the platform's to answer, and callers prune the row when
// it doesn't.
func (c *Cache) PollMessage(guildID int64, pollID string) (models.MessageRef, error) {
	if err := validID(guildID); err != nil {
		return models.MessageRef{}, err
	}
	if err := validPollID(pollID); err != nil {
		return models.MessageRef{}, err
	}

	var ref models.MessageRef
	err := c.db.QueryRow(`
		SELECT channel_id, message_id FROM polls
		WHERE server_id = ? AND poll_id = ?
	`, guildID, pollID).Scan(&ref.ChannelID, &ref.MessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageRef{}, fmt.Errorf("poll %s: %w", pollID, ErrNotFound)
	}
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("get poll message: %w", err)
	}

	return ref, nil
}

// PollIDs returns the ids of every poll on the guild.
func (c *Cache) PollIDs(guildID int64) ([]string, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`SELECT poll_id FROM polls WHERE server_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list polls: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	return ids, nil
}

// PollAnswers returns the poll's answer strings in creation order.
func (c *Cache) PollAnswers(guildID int64, pollID string) ([]string, error) {
	if err := validID(guildID); err != nil {
		return nil, err
	}
	if err := validPollID(pollID); err != nil {
		return nil, err
	}

	var joined string
	err := c.db.QueryRow(`
		SELECT questions FROM polls
		WHERE server_id = ? AND poll_id = ?
	`, guildID, pollID).Scan(&joined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("poll %s: %w", pollID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get poll answers: %w", err)
	}

	return strings.Split(joined, answerDelim), nil
}

func (c *Cache) pollIDSet(guildID int64) (map[string]struct{}, error) {
	rows, err := c.db.Query(`SELECT poll_id FROM polls WHERE server_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list polls: %w", err)
		}
		taken[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	return taken, nil
}

// validPollID accepts only non-empty all-digit strings, checked before any
// query runs.
func validPollID(pollID string) error {
	if pollID == "" {
		return ErrBadArgument
	}
	for _, r := range pollID {
		if r < '0' || r > '9' {
			return ErrBadArgument
		}
	}
	return nil
}
