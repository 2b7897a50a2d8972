// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
)

// ErrNotFound is returned for an unknown neighbor key.
var ErrNotFound = errors.New("neighbor not found")

// NeighborRecord is a wrapper for meta data around a discovered neighbor. Neighbors are identified by their node ID
// or, for beacons without a node ID, by their source address.
type NeighborRecord struct {
	Key string `badgerhold:"key" json:"key"`

	NodeID         string        `json:"node_id,omitempty"`
	Source         string        `json:"source"`
	SequenceNumber uint64        `json:"sequence_number"`
	Services       []string      `json:"services,omitempty"`
	Period         time.Duration `json:"period,omitempty"`
	Beacons        uint64        `json:"beacons"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `badgerholdIndex:"LastSeen" json:"last_seen"`

	CLAAddress  string    `json:"cla_address,omitempty"`
	LastContact time.Time `json:"last_contact"`
}

// recordKey of a Sighting's neighbor.
func recordKey(s discovery.Sighting) string {
	if s.Beacon.NodeID != "" {
		return s.Beacon.NodeID
	}
	return s.Source.String()
}

// newNeighborRecord for a first Sighting.
func newNeighborRecord(s discovery.Sighting) NeighborRecord {
	rec := NeighborRecord{
		Key:       recordKey(s),
		FirstSeen: s.Time,
	}
	rec.update(s)
	return rec
}

// update the record with a later Sighting of the same neighbor.
func (rec *NeighborRecord) update(s discovery.Sighting) {
	rec.NodeID = s.Beacon.NodeID
	rec.Source = s.Source.String()
	rec.SequenceNumber = s.Beacon.SequenceNumber
	rec.Period = s.Beacon.Period
	rec.Beacons++
	rec.LastSeen = s.Time

	rec.Services = make([]string, 0, len(s.Beacon.Services))
	for _, service := range s.Beacon.Services {
		rec.Services = append(rec.Services, fmt.Sprint(service))
	}

	if s.Contact != nil {
		rec.CLAAddress = s.Contact.CLAAddress
		rec.LastContact = s.Contact.Start
	}
}

func (rec NeighborRecord) String() string {
	return fmt.Sprintf("NeighborRecord(%s, %s, seq=%d)", rec.Key, rec.Source, rec.SequenceNumber)
}
