// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
)

// NeighborStore keeps a NeighborRecord for each observed neighbor.
type NeighborStore interface {
	discovery.NeighborObserver

	// Neighbors returns all records, ordered by their key.
	Neighbors() ([]NeighborRecord, error)

	// Neighbor returns the record for a key or ErrNotFound.
	Neighbor(key string) (NeighborRecord, error)

	// DeleteExpired removes all records last seen before the given time and returns their amount.
	DeleteExpired(before time.Time) (int, error)

	// Close the store. It must not be used afterwards.
	Close() error
}
