// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"net/netip"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

// Sighting of a neighbor, reported for each beacon which passed the freshness check and was recorded.
type Sighting struct {
	// Source address of the beacon.
	Source netip.AddrPort

	// Beacon as received.
	Beacon beacon.Beacon

	// Time of reception.
	Time time.Time

	// Contact submitted for this beacon; nil if no contact was created, e.g., without a common convergence layer.
	Contact *agent.Contact
}

// NeighborObserver is informed about each Sighting. It is called from within the Receiver and must not block.
type NeighborObserver interface {
	ObserveNeighbor(s Sighting)
}

// NeighborObserverFunc is a function implementing NeighborObserver.
type NeighborObserverFunc func(s Sighting)

// ObserveNeighbor calls f(s).
func (f NeighborObserverFunc) ObserveNeighbor(s Sighting) {
	f(s)
}
