// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"net/netip"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type neighborEntry struct {
	seq  uint64
	seen time.Time
}

// NeighborTable stores the last accepted sequence number for each source address.
//
// It is owned by a single Receiver and therefore not synchronized. Without a bound, entries are never evicted.
type NeighborTable struct {
	mode FreshnessMode

	entries map[netip.AddrPort]neighborEntry
	bounded *lru.Cache[netip.AddrPort, neighborEntry]

	now func() time.Time
}

// NewNeighborTable creates an empty NeighborTable. A positive maxNeighbors bounds its size by evicting the least
// recently refreshed entry.
func NewNeighborTable(mode FreshnessMode, maxNeighbors int) *NeighborTable {
	nt := &NeighborTable{
		mode: mode,
		now:  time.Now,
	}

	if maxNeighbors > 0 {
		// lru.New only fails for non-positive sizes.
		nt.bounded, _ = lru.New[netip.AddrPort, neighborEntry](maxNeighbors)
	} else {
		nt.entries = make(map[netip.AddrPort]neighborEntry)
	}

	return nt
}

func (nt *NeighborTable) lookup(src netip.AddrPort) (neighborEntry, bool) {
	if nt.bounded != nil {
		return nt.bounded.Peek(src)
	}
	entry, ok := nt.entries[src]
	return entry, ok
}

// Lookup the last recorded sequence number of a source.
func (nt *NeighborTable) Lookup(src netip.AddrPort) (seq uint64, ok bool) {
	entry, ok := nt.lookup(src)
	return entry.seq, ok
}

// IsFresh checks if a sequence number from a source should be accepted: either the source is unknown or the sequence
// number is fresher than the recorded one. The table is not altered.
func (nt *NeighborTable) IsFresh(src netip.AddrPort, seq uint64) (fresh, known bool) {
	entry, known := nt.lookup(src)
	if !known {
		return true, false
	}
	return nt.mode.fresher(seq, entry.seq), true
}

// Record a source's sequence number, overwriting a previous one.
func (nt *NeighborTable) Record(src netip.AddrPort, seq uint64) {
	entry := neighborEntry{seq: seq, seen: nt.now()}
	if nt.bounded != nil {
		nt.bounded.Add(src, entry)
	} else {
		nt.entries[src] = entry
	}
}

// Len is the amount of known sources.
func (nt *NeighborTable) Len() int {
	if nt.bounded != nil {
		return nt.bounded.Len()
	}
	return len(nt.entries)
}

// Sweep removes all sources not recorded within the ttl and returns how many were removed.
func (nt *NeighborTable) Sweep(ttl time.Duration) (removed int) {
	deadline := nt.now().Add(-ttl)

	if nt.bounded != nil {
		for _, src := range nt.bounded.Keys() {
			if entry, ok := nt.bounded.Peek(src); ok && entry.seen.Before(deadline) {
				nt.bounded.Remove(src)
				removed++
			}
		}
		return
	}

	for src, entry := range nt.entries {
		if entry.seen.Before(deadline) {
			delete(nt.entries, src)
			removed++
		}
	}
	return
}
