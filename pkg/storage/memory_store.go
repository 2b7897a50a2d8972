// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
)

// MemoryStore is a volatile NeighborStore.
type MemoryStore struct {
	mutex   sync.Mutex
	records map[string]NeighborRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]NeighborRecord)}
}

func (ms *MemoryStore) ObserveNeighbor(sighting discovery.Sighting) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	key := recordKey(sighting)
	if rec, ok := ms.records[key]; ok {
		rec.update(sighting)
		ms.records[key] = rec
	} else {
		ms.records[key] = newNeighborRecord(sighting)
	}
}

func (ms *MemoryStore) Neighbors() ([]NeighborRecord, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	recs := make([]NeighborRecord, 0, len(ms.records))
	for _, rec := range ms.records {
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}

func (ms *MemoryStore) Neighbor(key string) (NeighborRecord, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if rec, ok := ms.records[key]; ok {
		return rec, nil
	}
	return NeighborRecord{}, ErrNotFound
}

func (ms *MemoryStore) DeleteExpired(before time.Time) (n int, _ error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	for key, rec := range ms.records {
		if rec.LastSeen.Before(before) {
			delete(ms.records, key)
			n++
		}
	}
	return
}

func (ms *MemoryStore) Close() error {
	return nil
}
