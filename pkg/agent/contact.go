// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RateUnlimited is the data rate hint for a contact without a known bandwidth limit.
const RateUnlimited uint32 = math.MaxUint32

// Contact is a time-bounded opportunity to reach a neighboring node.
type Contact struct {
	// NodeID of the neighbor, e.g., "dtn://node-b/".
	NodeID string

	// CLAAddress to reach the neighbor, e.g., "tcpclv4:192.0.2.1:4556".
	CLAAddress string

	// Start of this contact's validity.
	Start time.Time

	// Duration of this contact's validity.
	Duration time.Duration

	// DataRate hint in bytes per second.
	DataRate uint32
}

// NewContact creates a Contact starting now without a data rate limit.
func NewContact(nodeID, claAddress string, duration time.Duration) Contact {
	return Contact{
		NodeID:     nodeID,
		CLAAddress: claAddress,
		Start:      time.Now(),
		Duration:   duration,
		DataRate:   RateUnlimited,
	}
}

// End of this contact's validity.
func (c Contact) End() time.Time {
	return c.Start.Add(c.Duration)
}

func (c Contact) String() string {
	return fmt.Sprintf("Contact(%s via %s, %v for %v)",
		c.NodeID, c.CLAAddress, c.Start.Format("15:04:05.000"), c.Duration)
}

// ContactSink accepts contacts for a routing agent.
type ContactSink interface {
	// SubmitContact hands a Contact over. An error reports that this Contact was not delivered; it will not be
	// submitted again.
	SubmitContact(ctx context.Context, c Contact) error
}

// ContactError is the failure to deliver a Contact to a ContactSink.
type ContactError struct {
	Contact Contact
	Err     error
}

func (e *ContactError) Error() string {
	return fmt.Sprintf("submitting %v failed: %v", e.Contact, e.Err)
}

func (e *ContactError) Unwrap() error {
	return e.Err
}
