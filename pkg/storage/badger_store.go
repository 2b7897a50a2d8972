// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"os"
	"path"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/timshannon/badgerhold"

	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
)

const dirBadger string = "db"

// Store implements a persistent NeighborStore, backed by badgerhold.
type Store struct {
	bh *badgerhold.Store

	badgerDir string
}

// NewStore creates a new Store or opens an existing Store from the given path.
func NewStore(dir string) (s *Store, err error) {
	badgerDir := path.Join(dir, dirBadger)

	opts := badgerhold.DefaultOptions
	opts.Dir = badgerDir
	opts.ValueDir = badgerDir
	opts.Logger = log.StandardLogger()
	opts.Options.ValueLogFileSize = 1<<28 - 1

	if dirErr := os.MkdirAll(badgerDir, 0700); dirErr != nil {
		err = dirErr
		return
	}

	if bh, bhErr := badgerhold.Open(opts); bhErr != nil {
		err = bhErr
	} else {
		s = &Store{
			bh:        bh,
			badgerDir: badgerDir,
		}
	}
	return
}

// Close the Store. It must not be used afterwards.
func (s *Store) Close() error {
	return s.bh.Close()
}

// ObserveNeighbor inserts or updates the NeighborRecord of the sighted neighbor.
func (s *Store) ObserveNeighbor(sighting discovery.Sighting) {
	key := recordKey(sighting)
	logger := log.WithField("neighbor", key)

	var rec NeighborRecord
	switch err := s.bh.Get(key, &rec); err {
	case nil:
		rec.update(sighting)

	case badgerhold.ErrNotFound:
		logger.Debug("Neighbor is unknown, inserting NeighborRecord")
		rec = newNeighborRecord(sighting)

	default:
		logger.WithError(err).Warn("Failed to fetch NeighborRecord")
		return
	}

	if err := s.bh.Upsert(key, rec); err != nil {
		logger.WithError(err).Warn("Failed to store NeighborRecord")
	}
}

// Neighbors returns all NeighborRecords, ordered by their key.
func (s *Store) Neighbors() (recs []NeighborRecord, err error) {
	if err = s.bh.Find(&recs, nil); err != nil {
		return
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return
}

// Neighbor fetches the NeighborRecord for the requested key.
func (s *Store) Neighbor(key string) (rec NeighborRecord, err error) {
	err = s.bh.Get(key, &rec)
	if err == badgerhold.ErrNotFound {
		err = ErrNotFound
	}
	return
}

// DeleteExpired removes all NeighborRecords last seen before the given time.
func (s *Store) DeleteExpired(before time.Time) (n int, err error) {
	var recs []NeighborRecord
	if err = s.bh.Find(&recs, badgerhold.Where("LastSeen").Lt(before)); err != nil {
		return
	}

	for _, rec := range recs {
		logger := log.WithField("neighbor", rec.Key)
		if delErr := s.bh.Delete(rec.Key, NeighborRecord{}); delErr != nil {
			logger.WithError(delErr).Warn("Failed to delete expired NeighborRecord")
			err = delErr
		} else {
			logger.Info("Deleted expired NeighborRecord")
			n++
		}
	}
	return
}
