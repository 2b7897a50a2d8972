// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

type datagram struct {
	data []byte
	addr netip.AddrPort
}

// mockConn records written datagrams and fails for the addresses in fail.
type mockConn struct {
	sync.Mutex

	fail    map[netip.AddrPort]bool
	written []datagram
}

func (m *mockConn) WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error) {
	m.Lock()
	defer m.Unlock()

	if m.fail[addr] {
		return 0, errors.New("network is unreachable")
	}

	data := make([]byte, len(b))
	copy(data, b)
	m.written = append(m.written, datagram{data, addr})
	return len(b), nil
}

func (m *mockConn) datagrams() []datagram {
	m.Lock()
	defer m.Unlock()

	return append([]datagram(nil), m.written...)
}

// mockSink records submitted contacts, failing each submission with err if not nil.
type mockSink struct {
	sync.Mutex

	err      error
	contacts []agent.Contact
}

func (m *mockSink) SubmitContact(_ context.Context, c agent.Contact) error {
	m.Lock()
	defer m.Unlock()

	m.contacts = append(m.contacts, c)
	return m.err
}

func (m *mockSink) inbox() (contacts []agent.Contact) {
	m.Lock()
	defer m.Unlock()

	contacts = m.contacts
	m.contacts = nil
	return
}

// ownBeacon of a node supporting TCPCLv4 and MTCPCL.
func ownBeacon() beacon.Beacon {
	return beacon.Beacon{
		Version:  beacon.Version,
		NodeID:   "dtn://own/",
		Services: []beacon.Service{beacon.TCPCLv4{Port: 4556}, beacon.MTCPCL{Port: 35037}},
		Period:   10 * time.Second,
	}
}

func mustBytes(b beacon.Beacon) []byte {
	data, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return data
}
