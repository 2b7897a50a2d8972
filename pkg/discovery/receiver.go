// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/thejerf/suture/v4"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

// PacketReader receives datagrams with a deadline, e.g., a *net.UDPConn.
type PacketReader interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	SetReadDeadline(t time.Time) error
}

// Outcome of a received datagram.
type Outcome int

const (
	// OutcomeAccepted beacons resulted in a contact submission.
	OutcomeAccepted Outcome = iota

	// OutcomeMalformed datagrams could not be decoded.
	OutcomeMalformed

	// OutcomeSelf beacons carry this node's ID.
	OutcomeSelf

	// OutcomeStale beacons are not fresher than the last one from their source.
	OutcomeStale

	// OutcomeAddressFamily beacons came from an IPv4-mapped address in IPv6-only mode.
	OutcomeAddressFamily

	// OutcomeNoCLA beacons offer no convergence layer supported by this node.
	OutcomeNoCLA

	// OutcomeNoNodeID beacons lack a node ID.
	OutcomeNoNodeID

	// OutcomeRateLimited datagrams exceeded their source's rate limit and were not decoded.
	OutcomeRateLimited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeSelf:
		return "self"
	case OutcomeStale:
		return "stale"
	case OutcomeAddressFamily:
		return "address-family"
	case OutcomeNoCLA:
		return "no-cla"
	case OutcomeNoNodeID:
		return "no-node-id"
	case OutcomeRateLimited:
		return "rate-limited"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Receiver processes incoming beacons and submits contacts for fresh neighbors.
type Receiver struct {
	conn   PacketReader
	nodeID string
	clas   map[beacon.ServiceTag]struct{}

	ipv6Only        bool
	defaultDuration time.Duration
	pollInterval    time.Duration
	ttl             time.Duration

	table   *NeighborTable
	limiter *sourceLimiter

	sink      agent.ContactSink
	observers []NeighborObserver
}

// NewReceiver for a node announcing the own Beacon. Its node ID identifies reflected beacons, its convergence layer
// services are matched against those of the neighbors.
func NewReceiver(conn PacketReader, own beacon.Beacon, sink agent.ContactSink, conf Config, observers ...NeighborObserver) *Receiver {
	conf = conf.withDefaults()

	r := &Receiver{
		conn:   conn,
		nodeID: own.NodeID,
		clas:   make(map[beacon.ServiceTag]struct{}),

		ipv6Only:        conf.Mode == IPv6Only,
		defaultDuration: conf.DefaultDuration,
		pollInterval:    conf.PollInterval,
		ttl:             conf.NeighborTTL,

		table: NewNeighborTable(conf.Freshness, conf.MaxNeighbors),

		sink:      sink,
		observers: observers,
	}

	for _, service := range own.Services {
		if service.Tag().IsCLA() {
			r.clas[service.Tag()] = struct{}{}
		}
	}

	if conf.RateLimit > 0 {
		r.limiter = newSourceLimiter(conf.RateLimit, conf.RateBurst)
	}

	return r
}

// Table of known neighbors. It must not be accessed concurrently to Serve.
func (r *Receiver) Table() *NeighborTable {
	return r.table
}

// match the first service of a Beacon with a convergence layer supported by this node.
func (r *Receiver) match(b beacon.Beacon) (beacon.Service, bool) {
	for _, service := range b.Services {
		if _, ok := r.clas[service.Tag()]; ok {
			return service, true
		}
	}
	return nil, false
}

// handle a datagram's content from a source address.
func (r *Receiver) handle(ctx context.Context, data []byte, src netip.AddrPort) (outcome Outcome) {
	defer func() { metricBeaconsReceived.WithLabelValues(outcome.String()).Inc() }()

	logger := log.WithFields(log.Fields{
		"receiver": r,
		"source":   src,
	})

	if r.limiter != nil && !r.limiter.allow(src.Addr()) {
		logger.Debug("Receiver dropped datagram exceeding rate limit")
		return OutcomeRateLimited
	}

	b, err := beacon.ParseBeacon(data)
	if err != nil {
		logger.WithError(err).Debug("Receiver failed to decode beacon")
		return OutcomeMalformed
	}

	logger = logger.WithField("beacon", b)

	if b.HasNodeID() && b.NodeID == r.nodeID {
		return OutcomeSelf
	}

	fresh, known := r.table.IsFresh(src, b.SequenceNumber)
	if !fresh {
		return OutcomeStale
	} else if !known {
		logger.Info("Receiver found new neighbor")
	}

	if r.ipv6Only && src.Addr().Is4In6() {
		logger.Debug("Receiver discarded beacon from IPv4-mapped address")
		return OutcomeAddressFamily
	}

	r.table.Record(src, b.SequenceNumber)
	metricNeighbors.Set(float64(r.table.Len()))

	sighting := Sighting{Source: src, Beacon: b, Time: time.Now()}
	defer func() {
		for _, observer := range r.observers {
			observer.ObserveNeighbor(sighting)
		}
	}()

	service, ok := r.match(b)
	if !ok {
		logger.Debug("Receiver found no common convergence layer")
		return OutcomeNoCLA
	}

	if !b.HasNodeID() {
		logger.Debug("Receiver discarded beacon without node ID")
		return OutcomeNoNodeID
	}

	duration := r.defaultDuration
	if b.HasPeriod() {
		duration = 2 * b.Period
	}

	claAddr, err := beacon.CLAAddress(service, src.Addr())
	if err != nil {
		// match only returns convergence layers
		logger.WithError(err).Warn("Receiver failed to create CLA address")
		return OutcomeNoCLA
	}

	contact := agent.NewContact(b.NodeID, claAddr, duration)
	sighting.Contact = &contact

	metricContacts.Inc()
	if err := r.sink.SubmitContact(context.WithoutCancel(ctx), contact); err != nil {
		metricContactErrors.Inc()
		logger.WithError(&agent.ContactError{Contact: contact, Err: err}).Warn("Receiver failed to submit contact")
	} else {
		logger.WithField("contact", contact).Debug("Receiver submitted contact")
	}

	return OutcomeAccepted
}

// sweep removes expired neighbors, if a TTL is configured.
func (r *Receiver) sweep() {
	if r.ttl <= 0 {
		return
	}

	if removed := r.table.Sweep(r.ttl); removed > 0 {
		log.WithFields(log.Fields{
			"receiver": r,
			"removed":  removed,
		}).Debug("Receiver removed expired neighbors")
		metricNeighbors.Set(float64(r.table.Len()))
	}
}

// Serve receives beacons until the context is canceled or the socket is closed. Cancellation is observed between two
// datagrams or after the poll interval at the latest.
func (r *Receiver) Serve(ctx context.Context) error {
	log.WithFields(log.Fields{
		"receiver": r,
		"clas":     len(r.clas),
	}).Info("Starting Receiver")

	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			log.WithField("receiver", r).Info("Receiver received shutdown")
			return nil
		default:
		}

		r.sweep()

		if err := r.conn.SetReadDeadline(time.Now().Add(r.pollInterval)); err != nil {
			return fmt.Errorf("%w: %v", suture.ErrDoNotRestart, &SocketError{Op: "set deadline", Err: err})
		}

		n, src, err := r.conn.ReadFromUDPAddrPort(buf)
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			continue

		case errors.Is(err, net.ErrClosed):
			return fmt.Errorf("%w: %v", suture.ErrDoNotRestart, &SocketError{Op: "receive", Err: err})

		case err != nil:
			metricReceiveErrors.Inc()
			log.WithField("receiver", r).WithError(&SocketError{Op: "receive", Err: err}).Warn("Receiver failed to read")
			time.Sleep(r.pollInterval)
			continue

		case n == 0:
			continue
		}

		r.handle(ctx, buf[:n], src)
	}
}

func (r *Receiver) String() string {
	return fmt.Sprintf("Receiver(%s)", r.nodeID)
}
