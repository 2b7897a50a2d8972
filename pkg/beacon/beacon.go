// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dtn7/cboring"
)

// Version of the supported beacon format. Beacons of any other version are rejected.
const Version uint8 = 8

// maxPeriodSeconds is the longest period representable as a time.Duration.
const maxPeriodSeconds = uint64(math.MaxInt64 / int64(time.Second))

// Beacon is sent periodically to advertise a DTN node.
type Beacon struct {
	// Version of this beacon, must be Version.
	Version uint8

	// NodeID advertised by this beacon. An empty string is absent, unless set by SetNodeID.
	NodeID string

	// SequenceNumber is incremented by one for each emitted beacon. It wraps around.
	SequenceNumber uint64

	// Services available on this node, e.g., convergence layers or a geographical location.
	Services []Service

	// Period between two advertisements. It has seconds resolution; anything below one second
	// is absent, unless set by SetPeriod.
	Period time.Duration

	// present marks optional fields whose value alone would be considered absent, e.g., an
	// empty node ID received on the wire.
	present uint8
}

// NewBeacon creates an empty Beacon of the supported Version.
func NewBeacon() Beacon {
	return Beacon{Version: Version}
}

// Next returns a copy of this Beacon with an incremented sequence number.
func (b Beacon) Next() Beacon {
	next := b
	next.SequenceNumber++
	return next
}

// SetNodeID sets the node ID and marks it present, even if it is empty.
func (b *Beacon) SetNodeID(nodeID string) {
	b.NodeID = nodeID
	if nodeID == "" {
		b.present |= FlagNodeID
	}
}

// SetPeriod sets the period and marks it present, even if it is shorter than one second.
func (b *Beacon) SetPeriod(period time.Duration) {
	b.Period = period
	if period < time.Second {
		b.present |= FlagPeriod
	}
}

// HasNodeID checks if a node ID is present.
func (b Beacon) HasNodeID() bool {
	return b.NodeID != "" || b.present&FlagNodeID != 0
}

// HasPeriod checks if a period is present.
func (b Beacon) HasPeriod() bool {
	return b.Period >= time.Second || b.present&FlagPeriod != 0
}

// Flags for this Beacon's present fields.
func (b Beacon) Flags() (flags uint8) {
	if b.HasNodeID() {
		flags |= FlagNodeID
	}
	if len(b.Services) > 0 {
		flags |= FlagServices
	}
	if b.HasPeriod() {
		flags |= FlagPeriod
	}
	return
}

// arity is the length of the CBOR array for this Beacon: three mandatory fields and one per optional field.
func (b Beacon) arity() (n uint64) {
	n = 3
	for _, flag := range []uint8{FlagNodeID, FlagServices, FlagPeriod} {
		if b.Flags()&flag != 0 {
			n++
		}
	}
	return
}

// MarshalCbor writes this Beacon's CBOR representation.
func (b *Beacon) MarshalCbor(w io.Writer) error {
	flags := b.Flags()

	if flags&FlagPeriod != 0 && b.Period < 0 {
		return fmt.Errorf("negative period %v", b.Period)
	}

	if err := cboring.WriteArrayLength(b.arity(), w); err != nil {
		return err
	}

	for _, n := range []uint64{uint64(b.Version), uint64(flags), b.SequenceNumber} {
		if err := cboring.WriteUInt(n, w); err != nil {
			return err
		}
	}

	if flags&FlagNodeID != 0 {
		if err := cboring.WriteTextString(b.NodeID, w); err != nil {
			return err
		}
	}

	if flags&FlagServices != 0 {
		if err := cboring.WriteArrayLength(uint64(len(b.Services)), w); err != nil {
			return err
		}
		for i, service := range b.Services {
			if err := marshalService(service, w); err != nil {
				return fmt.Errorf("marshalling service %d (%v) failed: %w", i, service, err)
			}
		}
	}

	if flags&FlagPeriod != 0 {
		if err := cboring.WriteUInt(uint64(b.Period/time.Second), w); err != nil {
			return err
		}
	}

	return nil
}

// UnmarshalCbor reads a Beacon from its CBOR representation. Any error is a *DecodeError.
func (b *Beacon) UnmarshalCbor(r io.Reader) error {
	arity, err := cboring.ReadArrayLength(r)
	if err != nil {
		return malformed("beacon", err)
	}

	var read uint64
	next := func(field string) error {
		if read >= arity {
			return missing(field)
		}
		read++
		return nil
	}

	var nb Beacon

	if err := next("version"); err != nil {
		return err
	}
	if n, err := cboring.ReadUInt(r); err != nil {
		return malformed("version", err)
	} else if n != uint64(Version) {
		return &DecodeError{Kind: ErrUnsupportedVersion, Field: "version", Err: fmt.Errorf("got %d", n)}
	} else {
		nb.Version = Version
	}

	if err := next("flags"); err != nil {
		return err
	}
	flags, err := cboring.ReadUInt(r)
	if err != nil {
		return malformed("flags", err)
	} else if flags > math.MaxUint8 {
		return malformed("flags", fmt.Errorf("value %d exceeds a byte", flags))
	}

	if err := next("sequence number"); err != nil {
		return err
	}
	if nb.SequenceNumber, err = cboring.ReadUInt(r); err != nil {
		return malformed("sequence number", err)
	}

	if uint8(flags)&FlagNodeID != 0 {
		if err := next("node id"); err != nil {
			return err
		}
		nodeID, err := cboring.ReadTextString(r)
		if err != nil {
			return malformed("node id", err)
		}
		nb.SetNodeID(nodeID)
	}

	if uint8(flags)&FlagServices != 0 {
		if err := next("services"); err != nil {
			return err
		}
		n, err := cboring.ReadArrayLength(r)
		if err != nil {
			return malformed("services", err)
		}
		for i := uint64(0); i < n; i++ {
			service, err := unmarshalService(r)
			if err != nil {
				return err
			}
			nb.Services = append(nb.Services, service)
		}
	}

	if uint8(flags)&FlagPeriod != 0 {
		if err := next("period"); err != nil {
			return err
		}
		secs, err := cboring.ReadUInt(r)
		if err != nil {
			return malformed("period", err)
		} else if secs > maxPeriodSeconds {
			return malformed("period", fmt.Errorf("%d seconds are out of range", secs))
		}
		nb.SetPeriod(time.Duration(secs) * time.Second)
	}

	if read != arity {
		return malformed("beacon", fmt.Errorf("%d unexpected trailing elements", arity-read))
	}

	*b = nb
	return nil
}

// Bytes returns this Beacon's CBOR representation.
func (b Beacon) Bytes() ([]byte, error) {
	buff := new(bytes.Buffer)
	if err := b.MarshalCbor(buff); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// ParseBeacon decodes a Beacon from a CBOR byte string, e.g., a received datagram. The data must
// contain exactly one Beacon. Any error is a *DecodeError.
func ParseBeacon(data []byte) (b Beacon, err error) {
	r := bytes.NewReader(data)
	if err = b.UnmarshalCbor(r); err != nil {
		return Beacon{}, err
	}
	if r.Len() > 0 {
		return Beacon{}, malformed("beacon", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return
}

func (b Beacon) String() string {
	nodeID := b.NodeID
	if !b.HasNodeID() {
		nodeID = "<undefined>"
	}
	return fmt.Sprintf("Beacon(v%d, node=%s, seq=%d, services=%v, period=%v)",
		b.Version, nodeID, b.SequenceNumber, b.Services, b.Period)
}
