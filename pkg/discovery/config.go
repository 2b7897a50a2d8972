// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// IPMode selects the address families used for discovery.
type IPMode int

const (
	// IPBoth uses a dual stack socket for IPv6 and IPv4.
	IPBoth IPMode = iota

	// IPv4Only uses only IPv4.
	IPv4Only

	// IPv6Only uses only IPv6. Beacons from IPv4-mapped addresses are discarded.
	IPv6Only
)

// ParseIPMode from a string, "both", "ipv4" or "ipv6". An empty string is IPBoth.
func ParseIPMode(s string) (IPMode, error) {
	switch strings.ToLower(s) {
	case "", "both":
		return IPBoth, nil
	case "ipv4", "4":
		return IPv4Only, nil
	case "ipv6", "6":
		return IPv6Only, nil
	default:
		return IPBoth, fmt.Errorf("unknown IP mode %q", s)
	}
}

func (m IPMode) String() string {
	switch m {
	case IPBoth:
		return "both"
	case IPv4Only:
		return "ipv4"
	case IPv6Only:
		return "ipv6"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

func (m IPMode) v4() bool { return m != IPv6Only }

func (m IPMode) v6() bool { return m != IPv4Only }

// network for net.ListenConfig.ListenPacket.
func (m IPMode) network() string {
	switch m {
	case IPv4Only:
		return "udp4"
	case IPv6Only:
		return "udp6"
	default:
		return "udp"
	}
}

// FreshnessMode selects how sequence numbers are compared.
type FreshnessMode int

const (
	// FreshnessStrict accepts a sequence number only if it is strictly greater than the recorded one. A wrapped
	// around sequence number is therefore considered stale until it exceeds the recorded value again.
	FreshnessStrict FreshnessMode = iota

	// FreshnessSerial compares sequence numbers by RFC 1982 serial number arithmetic, surviving a wrap around.
	FreshnessSerial
)

// ParseFreshnessMode from a string, "strict" or "serial". An empty string is FreshnessStrict.
func ParseFreshnessMode(s string) (FreshnessMode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return FreshnessStrict, nil
	case "serial":
		return FreshnessSerial, nil
	default:
		return FreshnessStrict, fmt.Errorf("unknown freshness mode %q", s)
	}
}

func (m FreshnessMode) String() string {
	switch m {
	case FreshnessStrict:
		return "strict"
	case FreshnessSerial:
		return "serial"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// fresher checks if the sequence number next is fresher than prev.
func (m FreshnessMode) fresher(next, prev uint64) bool {
	if m == FreshnessSerial {
		return int64(next-prev) > 0
	}
	return next > prev
}

// Config of a Manager.
type Config struct {
	// Mode selects the address families.
	Mode IPMode

	// Broadcast sends to broadcast addresses instead of the multicast groups.
	Broadcast bool

	// Port to bind to and to send group beacons to. Zero picks an ephemeral port.
	Port uint16

	// Interval between two beacons.
	Interval time.Duration

	// Interface restricts multicast to a network interface; all multicast capable interfaces otherwise.
	Interface string

	// Unicast peers, receiving each beacon in addition to the groups.
	Unicast []netip.AddrPort

	// PeersFile lists further unicast peers and is watched for changes.
	PeersFile string

	// PollInterval bounds the Receiver's wait for a datagram.
	PollInterval time.Duration

	// Freshness of sequence numbers.
	Freshness FreshnessMode

	// MaxNeighbors bounds the NeighborTable, evicting the least recently refreshed neighbor. Zero is unbounded.
	MaxNeighbors int

	// NeighborTTL removes neighbors not refreshed within this duration. Zero keeps them forever.
	NeighborTTL time.Duration

	// RateLimit of accepted datagrams per second and source address with a burst of RateBurst. Zero disables it.
	RateLimit float64
	RateBurst int

	// DefaultDuration of contacts for beacons without a period.
	DefaultDuration time.Duration
}

// withDefaults returns a copy of this Config with defaults for unset values.
func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = DefaultContactDuration
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}

// groups are the destinations of each beacon besides unicast peers, IPv6 first.
func (c Config) groups(port uint16) (groups []netip.AddrPort) {
	addr6, addr4 := MulticastAddress6, MulticastAddress4
	if c.Broadcast {
		addr6, addr4 = BroadcastAddress6, BroadcastAddress4
	}

	if c.Mode.v6() {
		addr := netip.MustParseAddr(addr6)
		if c.Interface != "" {
			addr = addr.WithZone(c.Interface)
		}
		groups = append(groups, netip.AddrPortFrom(addr, port))
	}
	if c.Mode.v4() {
		groups = append(groups, netip.AddrPortFrom(netip.MustParseAddr(addr4), port))
	}
	return
}
