// Copyright (c) 2020 Tony Toussaint.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"database/sql"
	"errors"
)

// Argument validation errors. Every operation validates its arguments before
// touching storage, so none of these ever leave a partial write behind.
var (
	// ErrMissingArgument reports a required argument that was absent (zero).
	ErrMissingArgument = errors.New("required argument is missing")
	// ErrInvalidArgument reports an argument that breaks the call contract:
	// a negative id, or parallel lists of mismatched length.
	ErrInvalidArgument = errors.New("argument does not match contract")
	// ErrBadArgument reports a well-formed argument with an invalid value,
	// such as a multi-character prefix or a non-numeric poll id.
	ErrBadArgument = errors.New("argument value is invalid")
	// ErrNotFound reports a lookup whose absence is anomalous rather than an
	// expected empty result.
	ErrNotFound = errors.New("not found")
)

// Cache stores and serves per-guild configuration and permission state from
// the embedded database. All rows are owned exclusively by this type; the
// database's own locking serializes concurrent writers.
type Cache struct {
	db *sql.DB
}

// New returns a Cache over an opened database handle. The handle's lifecycle
// belongs to the caller: constructed at startup, closed at shutdown.
func New(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// validID rejects ids that cannot be platform snowflakes. Zero means the
// argument was never supplied; negative values cannot come from the platform.
func validID(id int64) error {
	if id == 0 {
		return ErrMissingArgument
	}
	if id < 0 {
		return ErrInvalidArgument
	}
	return nil
}

func validIDs(ids []int64) error {
	for _, id := range ids {
		if err := validID(id); err != nil {
			return err
		}
	}
	return nil
}
