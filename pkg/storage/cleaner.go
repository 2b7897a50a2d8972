// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cleaner periodically removes NeighborRecords which were not seen within a TTL. It is a suture.Service.
type Cleaner struct {
	store NeighborStore
	ttl   time.Duration
}

// NewCleaner for a NeighborStore. The store is inspected every half TTL, which must be positive.
func NewCleaner(store NeighborStore, ttl time.Duration) *Cleaner {
	return &Cleaner{store: store, ttl: ttl}
}

// Serve until the context is canceled.
func (c *Cleaner) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-ticker.C:
			if n, err := c.store.DeleteExpired(now.Add(-c.ttl)); err != nil {
				log.WithError(err).Warn("Cleaner failed to delete expired neighbors")
			} else if n > 0 {
				log.WithField("amount", n).Debug("Cleaner deleted expired neighbors")
			}
		}
	}
}

func (c *Cleaner) String() string {
	return fmt.Sprintf("Cleaner(%v)", c.ttl)
}
