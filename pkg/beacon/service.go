// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/netip"

	"github.com/dtn7/cboring"
)

// ServiceTag identifies a Service's kind on the wire.
type ServiceTag uint8

const (
	// TagTCPCLv4 is a TCP Convergence Layer v4 (RFC 9174).
	TagTCPCLv4 ServiceTag = 0

	// TagTCPCLv3 is a TCP Convergence Layer v3 (RFC 7242).
	TagTCPCLv3 ServiceTag = 1

	// TagMTCPCL is a Minimal TCP Convergence Layer (draft-ietf-dtn-mtcpcl).
	TagMTCPCL ServiceTag = 2

	// TagGeoLocation is the node's geographical location.
	TagGeoLocation ServiceTag = 64

	// TagAddress is the node's physical address.
	TagAddress ServiceTag = 65
)

// IsCLA checks if this tag identifies a convergence layer.
func (t ServiceTag) IsCLA() bool {
	switch t {
	case TagTCPCLv4, TagTCPCLv3, TagMTCPCL:
		return true
	default:
		return false
	}
}

// known checks if this tag has its own Service implementation.
func (t ServiceTag) known() bool {
	return t.IsCLA() || t == TagGeoLocation || t == TagAddress
}

func (t ServiceTag) String() string {
	switch t {
	case TagTCPCLv4:
		return "tcpclv4"
	case TagTCPCLv3:
		return "tcpclv3"
	case TagMTCPCL:
		return "mtcp"
	case TagGeoLocation:
		return "geo"
	case TagAddress:
		return "address"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Service is an entry of a Beacon's service block. The set of implementations is closed:
// TCPCLv4, TCPCLv3, MTCPCL, GeoLocation, Address and Unknown for every other tag.
type Service interface {
	// Tag of this Service.
	Tag() ServiceTag

	// marshalPayload writes the tag-dependent payload.
	marshalPayload(w io.Writer) error
}

// TCPCLv4 service, reachable on Port.
type TCPCLv4 struct {
	Port uint16
}

func (TCPCLv4) Tag() ServiceTag { return TagTCPCLv4 }

func (s TCPCLv4) marshalPayload(w io.Writer) error { return cboring.WriteUInt(uint64(s.Port), w) }

func (s TCPCLv4) String() string { return fmt.Sprintf("TCPCLv4(%d)", s.Port) }

// TCPCLv3 service, reachable on Port.
type TCPCLv3 struct {
	Port uint16
}

func (TCPCLv3) Tag() ServiceTag { return TagTCPCLv3 }

func (s TCPCLv3) marshalPayload(w io.Writer) error { return cboring.WriteUInt(uint64(s.Port), w) }

func (s TCPCLv3) String() string { return fmt.Sprintf("TCPCLv3(%d)", s.Port) }

// MTCPCL service, reachable on Port.
type MTCPCL struct {
	Port uint16
}

func (MTCPCL) Tag() ServiceTag { return TagMTCPCL }

func (s MTCPCL) marshalPayload(w io.Writer) error { return cboring.WriteUInt(uint64(s.Port), w) }

func (s MTCPCL) String() string { return fmt.Sprintf("MTCPCL(%d)", s.Port) }

// GeoLocation of a node.
type GeoLocation struct {
	Latitude  float32
	Longitude float32
}

func (GeoLocation) Tag() ServiceTag { return TagGeoLocation }

func (s GeoLocation) marshalPayload(w io.Writer) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}
	if err := writeFloat32(s.Latitude, w); err != nil {
		return err
	}
	return writeFloat32(s.Longitude, w)
}

func (s GeoLocation) String() string {
	return fmt.Sprintf("GeoLocation(%g,%g)", s.Latitude, s.Longitude)
}

// Address is a node's physical address.
type Address struct {
	Text string
}

func (Address) Tag() ServiceTag { return TagAddress }

func (s Address) marshalPayload(w io.Writer) error { return cboring.WriteTextString(s.Text, w) }

func (s Address) String() string { return fmt.Sprintf("Address(%q)", s.Text) }

// Unknown is a service whose tag is not understood. Raw holds the payload's CBOR encoding,
// which is written back unchanged. Its Code must not be one of the known tags.
type Unknown struct {
	Code uint8
	Raw  []byte
}

func (s Unknown) Tag() ServiceTag { return ServiceTag(s.Code) }

func (s Unknown) marshalPayload(w io.Writer) error {
	if s.Tag().known() {
		return fmt.Errorf("tag %d is known and cannot be an unknown service", s.Code)
	}

	if item, err := readRawItem(bytes.NewReader(s.Raw)); err != nil {
		return fmt.Errorf("raw payload is invalid CBOR: %w", err)
	} else if len(item) != len(s.Raw) {
		return fmt.Errorf("raw payload holds more than one CBOR item")
	}

	_, err := w.Write(s.Raw)
	return err
}

func (s Unknown) String() string {
	return fmt.Sprintf("Unknown(%d,%s)", s.Code, hex.EncodeToString(s.Raw))
}

// marshalService writes a Service as a (tag, payload) tuple.
func marshalService(s Service, w io.Writer) error {
	if s == nil {
		return fmt.Errorf("nil service")
	}
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}
	if err := cboring.WriteUInt(uint64(s.Tag()), w); err != nil {
		return err
	}
	return s.marshalPayload(w)
}

// unmarshalService reads a (tag, payload) tuple and dispatches on the tag.
func unmarshalService(r io.Reader) (Service, error) {
	if l, err := cboring.ReadArrayLength(r); err != nil {
		return nil, malformed("service", err)
	} else if l != 2 {
		return nil, malformed("service", fmt.Errorf("wrong array length: %d instead of 2", l))
	}

	n, err := cboring.ReadUInt(r)
	if err != nil {
		return nil, malformed("service tag", err)
	} else if n > math.MaxUint8 {
		return nil, malformed("service tag", fmt.Errorf("value %d exceeds a byte", n))
	}

	switch tag := ServiceTag(n); tag {
	case TagTCPCLv4:
		port, err := readPort(r)
		return TCPCLv4{Port: port}, err

	case TagTCPCLv3:
		port, err := readPort(r)
		return TCPCLv3{Port: port}, err

	case TagMTCPCL:
		port, err := readPort(r)
		return MTCPCL{Port: port}, err

	case TagGeoLocation:
		if l, err := cboring.ReadArrayLength(r); err != nil {
			return nil, malformed("geo location", err)
		} else if l != 2 {
			return nil, malformed("geo location", fmt.Errorf("wrong array length: %d instead of 2", l))
		}

		var geo GeoLocation
		if geo.Latitude, err = readFloat32(r); err != nil {
			return nil, malformed("latitude", err)
		}
		if geo.Longitude, err = readFloat32(r); err != nil {
			return nil, malformed("longitude", err)
		}
		return geo, nil

	case TagAddress:
		text, err := cboring.ReadTextString(r)
		if err != nil {
			return nil, malformed("address", err)
		}
		return Address{Text: text}, nil

	default:
		raw, err := readRawItem(r)
		if err != nil {
			return nil, malformed(fmt.Sprintf("payload of service %d", n), err)
		}
		return Unknown{Code: uint8(tag), Raw: raw}, nil
	}
}

func readPort(r io.Reader) (uint16, error) {
	n, err := cboring.ReadUInt(r)
	if err != nil {
		return 0, malformed("convergence layer port", err)
	} else if n > math.MaxUint16 {
		return 0, malformed("convergence layer port", fmt.Errorf("value %d exceeds a port", n))
	}
	return uint16(n), nil
}

// CLAAddress renders a convergence layer address, e.g., "tcpclv4:192.0.2.1:4556", for a
// convergence layer Service offered at the given IP. IPv4-mapped IPv6 addresses are written in
// their IPv4 form.
func CLAAddress(s Service, ip netip.Addr) (string, error) {
	var port uint16
	switch s := s.(type) {
	case TCPCLv4:
		port = s.Port
	case TCPCLv3:
		port = s.Port
	case MTCPCL:
		port = s.Port
	default:
		return "", fmt.Errorf("service %v is no convergence layer", s)
	}

	return fmt.Sprintf("%v:%v", s.Tag(), netip.AddrPortFrom(ip.Unmap(), port)), nil
}
