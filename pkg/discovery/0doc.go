// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package discovery contains code for IP Neighbor Discovery (IPND) of other DTN nodes through UDP multicast or
// broadcast beacons.
//
// A Manager runs two long-lived services on a shared UDP socket. The Announcer periodically sends this node's
// beacon to the configured groups and unicast peers, incrementing its sequence number each round. The Receiver
// decodes incoming beacons, drops reflected and stale ones based on a per-source NeighborTable and submits a contact
// to an agent.ContactSink for each neighbor offering a convergence layer this node supports as well.
//
// Both services observe cancellation only between two iterations; a started send or sleep completes first.
package discovery

import "time"

const (
	// Port is the default UDP port used for discovery.
	Port = 3005

	// MulticastAddress4 is the IPv4 multicast group used for discovery.
	MulticastAddress4 = "224.0.0.108"

	// MulticastAddress6 is the IPv6 multicast group used for discovery.
	MulticastAddress6 = "ff02::d4cd:0305:3af1:aeef:75de"

	// BroadcastAddress4 is the IPv4 limited broadcast address, used in broadcast mode.
	BroadcastAddress4 = "255.255.255.255"

	// BroadcastAddress6 is the IPv6 link-local all-nodes address, used in broadcast mode.
	BroadcastAddress6 = "ff02::1"

	// DefaultInterval between two beacons.
	DefaultInterval = 10 * time.Second

	// DefaultContactDuration is used for beacons without a period.
	DefaultContactDuration = 30 * time.Second

	// DefaultPollInterval bounds the Receiver's wait for a datagram.
	DefaultPollInterval = 300 * time.Millisecond

	// maxDatagramSize is the largest UDP payload.
	maxDatagramSize = 65535
)
