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
	"testing"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

func neighborBeacon(seq uint64, services ...beacon.Service) beacon.Beacon {
	return beacon.Beacon{
		Version:        beacon.Version,
		NodeID:         "dtn://neighbor/",
		SequenceNumber: seq,
		Services:       services,
		Period:         10 * time.Second,
	}
}

func TestReceiverFreshnessScenario(t *testing.T) {
	sink := &mockSink{}
	r := NewReceiver(nil, ownBeacon(), sink, Config{})

	x := netip.MustParseAddrPort("192.0.2.1:3005")
	ctx := context.Background()

	tests := []struct {
		seq     uint64
		outcome Outcome
	}{
		{1, OutcomeAccepted},
		{1, OutcomeStale},
		{2, OutcomeAccepted},
		{0, OutcomeStale},
	}

	for i, test := range tests {
		data := mustBytes(neighborBeacon(test.seq, beacon.TCPCLv4{Port: 4556}))
		if outcome := r.handle(ctx, data, x); outcome != test.outcome {
			t.Fatalf("datagram %d with sequence number %d: %v, expected %v", i, test.seq, outcome, test.outcome)
		}

		if i == 0 {
			if seq, ok := r.Table().Lookup(x); !ok || seq != 1 {
				t.Fatalf("table holds %d, %t after first contact", seq, ok)
			}
		}
	}

	if contacts := sink.inbox(); len(contacts) != 2 {
		t.Fatalf("sink received %d contacts, expected 2", len(contacts))
	}
	if seq, _ := r.Table().Lookup(x); seq != 2 {
		t.Fatalf("table holds sequence number %d", seq)
	}
}

func TestReceiverContact(t *testing.T) {
	tests := []struct {
		name     string
		b        beacon.Beacon
		src      string
		cla      string
		duration time.Duration
	}{
		{
			name:     "period",
			b:        neighborBeacon(1, beacon.TCPCLv4{Port: 4556}),
			src:      "192.0.2.1:3005",
			cla:      "tcpclv4:192.0.2.1:4556",
			duration: 20 * time.Second,
		},
		{
			name: "no period",
			b: beacon.Beacon{
				Version:  beacon.Version,
				NodeID:   "dtn://neighbor/",
				Services: []beacon.Service{beacon.MTCPCL{Port: 35037}},
			},
			src:      "[2001:db8::1]:3005",
			cla:      "mtcp:[2001:db8::1]:35037",
			duration: DefaultContactDuration,
		},
		{
			name: "first common convergence layer",
			b: neighborBeacon(1,
				beacon.GeoLocation{Latitude: 1, Longitude: 2},
				beacon.TCPCLv3{Port: 1},
				beacon.MTCPCL{Port: 2},
				beacon.TCPCLv4{Port: 3}),
			src:      "[::ffff:192.0.2.1]:3005",
			cla:      "mtcp:192.0.2.1:2",
			duration: 20 * time.Second,
		},
	}

	for _, test := range tests {
		sink := &mockSink{}
		r := NewReceiver(nil, ownBeacon(), sink, Config{})

		before := time.Now()
		if outcome := r.handle(context.Background(), mustBytes(test.b), netip.MustParseAddrPort(test.src)); outcome != OutcomeAccepted {
			t.Fatalf("%s: outcome is %v", test.name, outcome)
		}

		contacts := sink.inbox()
		if len(contacts) != 1 {
			t.Fatalf("%s: sink received %d contacts", test.name, len(contacts))
		}

		c := contacts[0]
		if c.NodeID != "dtn://neighbor/" || c.CLAAddress != test.cla || c.Duration != test.duration {
			t.Fatalf("%s: unexpected contact %v", test.name, c)
		}
		if c.Start.Before(before) {
			t.Fatalf("%s: contact starts in the past", test.name)
		}
	}
}

func TestReceiverZeroValuedFields(t *testing.T) {
	zeroPeriod := neighborBeacon(1, beacon.TCPCLv4{Port: 4556})
	zeroPeriod.SetPeriod(0)

	emptyNodeID := neighborBeacon(1, beacon.TCPCLv4{Port: 4556})
	emptyNodeID.SetNodeID("")

	tests := []struct {
		name     string
		b        beacon.Beacon
		nodeID   string
		duration time.Duration
	}{
		{"zero period", zeroPeriod, "dtn://neighbor/", 0},
		{"empty node ID", emptyNodeID, "", 20 * time.Second},
	}

	for _, test := range tests {
		sink := &mockSink{}
		r := NewReceiver(nil, ownBeacon(), sink, Config{})

		src := netip.MustParseAddrPort("192.0.2.1:3005")
		if outcome := r.handle(context.Background(), mustBytes(test.b), src); outcome != OutcomeAccepted {
			t.Fatalf("%s: outcome is %v", test.name, outcome)
		}

		contacts := sink.inbox()
		if len(contacts) != 1 {
			t.Fatalf("%s: sink received %d contacts", test.name, len(contacts))
		}
		if c := contacts[0]; c.NodeID != test.nodeID || c.Duration != test.duration {
			t.Fatalf("%s: unexpected contact %v", test.name, c)
		}
	}
}

func TestReceiverDiscards(t *testing.T) {
	src := netip.MustParseAddrPort("192.0.2.1:3005")

	self := ownBeacon()
	self.SequenceNumber = 23

	noNodeID := neighborBeacon(1, beacon.TCPCLv4{Port: 4556})
	noNodeID.NodeID = ""

	tests := []struct {
		name    string
		data    []byte
		outcome Outcome
	}{
		{"malformed", []byte{0x83, 0x07, 0x00, 0x00}, OutcomeMalformed},
		{"garbage", []byte("hello world"), OutcomeMalformed},
		{"self", mustBytes(self), OutcomeSelf},
		{"no common convergence layer", mustBytes(neighborBeacon(1, beacon.TCPCLv3{Port: 4556})), OutcomeNoCLA},
		{"no services", mustBytes(neighborBeacon(1)), OutcomeNoCLA},
		{"no node id", mustBytes(noNodeID), OutcomeNoNodeID},
	}

	for _, test := range tests {
		sink := &mockSink{}
		r := NewReceiver(nil, ownBeacon(), sink, Config{})

		if outcome := r.handle(context.Background(), test.data, src); outcome != test.outcome {
			t.Fatalf("%s: outcome is %v, expected %v", test.name, outcome, test.outcome)
		}
		if contacts := sink.inbox(); len(contacts) != 0 {
			t.Fatalf("%s: sink received contacts %v", test.name, contacts)
		}

		// Only beacons passing the freshness check are recorded.
		_, recorded := r.Table().Lookup(src)
		if shouldRecord := test.outcome == OutcomeNoCLA || test.outcome == OutcomeNoNodeID; recorded != shouldRecord {
			t.Fatalf("%s: recorded=%t", test.name, recorded)
		}
	}
}

func TestReceiverSelfRejection(t *testing.T) {
	sink := &mockSink{}
	r := NewReceiver(nil, ownBeacon(), sink, Config{})
	src := netip.MustParseAddrPort("192.0.2.1:3005")

	for _, seq := range []uint64{0, 1, 1 << 32, 1<<64 - 1} {
		self := ownBeacon()
		self.SequenceNumber = seq

		if outcome := r.handle(context.Background(), mustBytes(self), src); outcome != OutcomeSelf {
			t.Fatalf("own beacon with sequence number %d: %v", seq, outcome)
		}
	}

	if l := r.Table().Len(); l != 0 {
		t.Fatalf("own beacons were recorded")
	}
}

func TestReceiverIPv6Only(t *testing.T) {
	sink := &mockSink{}
	r := NewReceiver(nil, ownBeacon(), sink, Config{Mode: IPv6Only})

	mapped := netip.MustParseAddrPort("[::ffff:192.0.2.1]:3005")
	native := netip.MustParseAddrPort("[2001:db8::1]:3005")
	data := mustBytes(neighborBeacon(1, beacon.TCPCLv4{Port: 4556}))

	if outcome := r.handle(context.Background(), data, mapped); outcome != OutcomeAddressFamily {
		t.Fatalf("IPv4-mapped source: %v", outcome)
	}
	if _, ok := r.Table().Lookup(mapped); ok {
		t.Fatal("IPv4-mapped source was recorded")
	}

	if outcome := r.handle(context.Background(), data, native); outcome != OutcomeAccepted {
		t.Fatalf("IPv6 source: %v", outcome)
	}
	if contacts := sink.inbox(); len(contacts) != 1 || contacts[0].CLAAddress != "tcpclv4:[2001:db8::1]:4556" {
		t.Fatalf("unexpected contacts %v", contacts)
	}
}

func TestReceiverSinkFailure(t *testing.T) {
	sink := &mockSink{err: errors.New("agent unavailable")}
	r := NewReceiver(nil, ownBeacon(), sink, Config{})
	src := netip.MustParseAddrPort("192.0.2.1:3005")

	if outcome := r.handle(context.Background(), mustBytes(neighborBeacon(5, beacon.TCPCLv4{Port: 4556})), src); outcome != OutcomeAccepted {
		t.Fatalf("outcome is %v", outcome)
	}
	if contacts := sink.inbox(); len(contacts) != 1 {
		t.Fatalf("sink received %d contacts", len(contacts))
	}

	// The table update is kept and the contact is not retried.
	if seq, ok := r.Table().Lookup(src); !ok || seq != 5 {
		t.Fatalf("table holds %d, %t", seq, ok)
	}
	if outcome := r.handle(context.Background(), mustBytes(neighborBeacon(5, beacon.TCPCLv4{Port: 4556})), src); outcome != OutcomeStale {
		t.Fatalf("repeated beacon: %v", outcome)
	}
	if contacts := sink.inbox(); len(contacts) != 0 {
		t.Fatalf("contact was retried")
	}
}

func TestReceiverSerialFreshness(t *testing.T) {
	sink := &mockSink{}
	r := NewReceiver(nil, ownBeacon(), sink, Config{Freshness: FreshnessSerial})
	src := netip.MustParseAddrPort("192.0.2.1:3005")

	for _, seq := range []uint64{1<<64 - 2, 1<<64 - 1, 0, 1} {
		if outcome := r.handle(context.Background(), mustBytes(neighborBeacon(seq, beacon.TCPCLv4{Port: 4556})), src); outcome != OutcomeAccepted {
			t.Fatalf("sequence number %d: %v", seq, outcome)
		}
	}
}

func TestReceiverRateLimit(t *testing.T) {
	sink := &mockSink{}
	r := NewReceiver(nil, ownBeacon(), sink, Config{RateLimit: 0.001, RateBurst: 2})

	a := netip.MustParseAddrPort("192.0.2.1:3005")
	b := netip.MustParseAddrPort("192.0.2.2:3005")

	expected := []Outcome{OutcomeAccepted, OutcomeAccepted, OutcomeRateLimited}
	for i, outcome := range expected {
		data := mustBytes(neighborBeacon(uint64(i+1), beacon.TCPCLv4{Port: 4556}))
		if o := r.handle(context.Background(), data, a); o != outcome {
			t.Fatalf("datagram %d: %v, expected %v", i, o, outcome)
		}
	}

	if o := r.handle(context.Background(), mustBytes(neighborBeacon(1, beacon.TCPCLv4{Port: 4556})), b); o != OutcomeAccepted {
		t.Fatalf("other source was limited: %v", o)
	}
}

func TestReceiverObserver(t *testing.T) {
	var sightings []Sighting
	observer := NeighborObserverFunc(func(s Sighting) { sightings = append(sightings, s) })

	r := NewReceiver(nil, ownBeacon(), &mockSink{}, Config{}, observer)
	src := netip.MustParseAddrPort("192.0.2.1:3005")

	r.handle(context.Background(), mustBytes(neighborBeacon(1, beacon.TCPCLv4{Port: 4556})), src)
	r.handle(context.Background(), mustBytes(neighborBeacon(1, beacon.TCPCLv4{Port: 4556})), src)
	r.handle(context.Background(), mustBytes(neighborBeacon(2, beacon.TCPCLv3{Port: 4556})), src)

	if len(sightings) != 2 {
		t.Fatalf("observed %d sightings, expected 2", len(sightings))
	}
	if sightings[0].Contact == nil || sightings[0].Contact.CLAAddress != "tcpclv4:192.0.2.1:4556" {
		t.Fatalf("first sighting has contact %v", sightings[0].Contact)
	}
	if sightings[1].Contact != nil || sightings[1].Beacon.SequenceNumber != 2 {
		t.Fatalf("second sighting is %v", sightings[1])
	}
}

var (
	errClosedForTest  = fmt.Errorf("read udp: %w", net.ErrClosed)
	errTimeoutForTest = fmt.Errorf("read udp: %w", os.ErrDeadlineExceeded)
)

// mockPacketReader returns queued datagrams and times out afterwards, or reports a closed connection.
type mockPacketReader struct {
	queue  []datagram
	closed bool
}

func (m *mockPacketReader) ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error) {
	if len(m.queue) == 0 {
		if m.closed {
			return 0, netip.AddrPort{}, errClosedForTest
		}
		return 0, netip.AddrPort{}, errTimeoutForTest
	}

	dg := m.queue[0]
	m.queue = m.queue[1:]
	return copy(b, dg.data), dg.addr, nil
}

func (m *mockPacketReader) SetReadDeadline(time.Time) error { return nil }

func TestReceiverServe(t *testing.T) {
	src := netip.MustParseAddrPort("192.0.2.1:3005")
	conn := &mockPacketReader{
		queue: []datagram{
			{mustBytes(neighborBeacon(1, beacon.TCPCLv4{Port: 4556})), src},
			{[]byte{}, src},
			{mustBytes(neighborBeacon(2, beacon.TCPCLv4{Port: 4556})), src},
		},
		closed: true,
	}

	sink := &mockSink{}
	r := NewReceiver(conn, ownBeacon(), sink, Config{})

	if err := r.Serve(context.Background()); err == nil {
		t.Fatal("Serve returned without error on a closed connection")
	}
	if contacts := sink.inbox(); len(contacts) != 2 {
		t.Fatalf("sink received %d contacts, expected 2", len(contacts))
	}
}

func TestReceiverServeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReceiver(&mockPacketReader{}, ownBeacon(), &mockSink{}, Config{})
	if err := r.Serve(ctx); err != nil {
		t.Fatal(err)
	}
}
