// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"net"
	"testing"
	"time"
)

// randomPort returns a random open TCP port.
func randomPort(t *testing.T) (port int) {
	if addr, err := net.ResolveTCPAddr("tcp", "localhost:0"); err != nil {
		t.Fatal(err)
	} else if l, err := net.ListenTCP("tcp", addr); err != nil {
		t.Fatal(err)
	} else {
		port = l.Addr().(*net.TCPAddr).Port
		_ = l.Close()
	}
	return
}

// isAddrReachable checks if a TCP address - like localhost:2342 - is reachable.
func isAddrReachable(addr string) (open bool) {
	if conn, err := net.DialTimeout("tcp", addr, time.Second); err != nil {
		open = false
	} else {
		open = true
		_ = conn.Close()
	}
	return
}

// sameContact compares two Contacts on a millisecond basis, as they are transmitted.
func sameContact(a, b Contact) bool {
	return a.NodeID == b.NodeID &&
		a.CLAAddress == b.CLAAddress &&
		a.Start.UnixMilli() == b.Start.UnixMilli() &&
		a.Duration.Milliseconds() == b.Duration.Milliseconds() &&
		a.DataRate == b.DataRate
}
