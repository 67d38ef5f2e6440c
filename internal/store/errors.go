// SPDX-License-Identifier: MIT

package store

import "errors"

var (
	// ErrNotFound is returned when a link or layout row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when a write would duplicate a kort_id.
	ErrConflict = errors.New("store: kort_id already exists")

	// ErrSeedFormat is returned when the seed file is not a valid JSON
	// object of court entries.
	ErrSeedFormat = errors.New("store: seed file is not valid JSON")
)
