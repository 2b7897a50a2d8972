// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

// PacketWriter sends datagrams, e.g., a *net.UDPConn.
type PacketWriter interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
}

// Announcer periodically sends a Beacon to its groups and unicast peers.
type Announcer struct {
	conn   PacketWriter
	beacon beacon.Beacon
	period time.Duration
	groups []netip.AddrPort

	unicastMutex sync.Mutex
	unicast      []netip.AddrPort

	sleep func(time.Duration)
}

// NewAnnouncer for a base Beacon, sent each period to all groups and unicast peers. The Beacon's sequence number is
// incremented after each round.
func NewAnnouncer(conn PacketWriter, base beacon.Beacon, period time.Duration, groups, unicast []netip.AddrPort) *Announcer {
	return &Announcer{
		conn:    conn,
		beacon:  base,
		period:  period,
		groups:  groups,
		unicast: unicast,
		sleep:   time.Sleep,
	}
}

// SetUnicast replaces the unicast peers, effective from the next round.
func (a *Announcer) SetUnicast(unicast []netip.AddrPort) {
	a.unicastMutex.Lock()
	defer a.unicastMutex.Unlock()

	a.unicast = unicast
}

// destinations are the groups, followed by the unicast peers.
func (a *Announcer) destinations() []netip.AddrPort {
	a.unicastMutex.Lock()
	defer a.unicastMutex.Unlock()

	dsts := make([]netip.AddrPort, 0, len(a.groups)+len(a.unicast))
	dsts = append(dsts, a.groups...)
	return append(dsts, a.unicast...)
}

// announce sends the current Beacon once to every destination and advances the sequence number. A failing
// destination does not affect the others; all errors are returned combined.
func (a *Announcer) announce() (err error) {
	defer func() { a.beacon = a.beacon.Next() }()

	data, marshalErr := a.beacon.Bytes()
	if marshalErr != nil {
		return fmt.Errorf("marshalling %v failed: %w", a.beacon, marshalErr)
	}

	for _, dst := range a.destinations() {
		if _, sendErr := a.conn.WriteToUDPAddrPort(data, dst); sendErr != nil {
			metricSendErrors.Inc()
			err = multierror.Append(err, &SocketError{Op: "send", Addr: dst.String(), Err: sendErr})
		} else {
			metricBeaconsSent.Inc()
		}
	}

	log.WithFields(log.Fields{
		"announcer": a,
		"sequence":  a.beacon.SequenceNumber,
		"size":      len(data),
	}).Debug("Announcer sent beacon")

	return
}

// Serve sends a Beacon each period until the context is canceled. Cancellation is observed once per round.
func (a *Announcer) Serve(ctx context.Context) error {
	log.WithFields(log.Fields{
		"announcer": a,
		"beacon":    a.beacon,
		"period":    a.period,
	}).Info("Starting Announcer")

	for {
		select {
		case <-ctx.Done():
			log.WithField("announcer", a).Info("Announcer received shutdown")
			return nil
		default:
		}

		if err := a.announce(); err != nil {
			log.WithField("announcer", a).WithError(err).Warn("Announcer failed to send beacon")
		}

		a.sleep(a.period)
	}
}

func (a *Announcer) String() string {
	return fmt.Sprintf("Announcer(%s)", a.beacon.NodeID)
}
