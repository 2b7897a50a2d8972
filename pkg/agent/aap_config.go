// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"fmt"
	"strings"
	"time"
)

// milliseconds1970To2k is the offset between the Unix and the DTN epoch, which starts in the year 2000 (UTC).
const milliseconds1970To2k = 946684800000

// dtnTime returns the milliseconds since the DTN epoch.
func dtnTime(t time.Time) uint64 {
	return uint64(t.UnixMilli() - milliseconds1970To2k)
}

// contactConfig creates ud3tn's configuration command to add a Contact, e.g.,
//
//	1(dtn://node-b/):(tcpclv4:192.0.2.1:4556)::[{754012800000,754012830000,4294967295}];
//
// The command consists of the node ID, the CLA address, an empty list of reachable endpoints and the contact list.
func contactConfig(c Contact) []byte {
	return []byte(fmt.Sprintf("1(%s):(%s)::[{%d,%d,%d}];",
		c.NodeID, c.CLAAddress, dtnTime(c.Start), dtnTime(c.End()), c.DataRate))
}

// configEndpoint derives the configuration endpoint of a ud3tn node from its node ID. For a "dtn" node ID, this is
// its "config" service; for an "ipn" node ID, the service number 9000.
func configEndpoint(nodeID string) (string, error) {
	switch {
	case strings.HasPrefix(nodeID, "dtn://"):
		if !strings.HasSuffix(nodeID, "/") {
			nodeID += "/"
		}
		return nodeID + "config", nil

	case strings.HasPrefix(nodeID, "ipn:"):
		node, _, _ := strings.Cut(strings.TrimPrefix(nodeID, "ipn:"), ".")
		if node == "" {
			return "", fmt.Errorf("invalid ipn node ID %q", nodeID)
		}
		return fmt.Sprintf("ipn:%s.9000", node), nil

	default:
		return "", fmt.Errorf("unsupported node ID scheme of %q", nodeID)
	}
}
