// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// aapType is the message type of ud3tn's Application Agent Protocol, version 1.
type aapType uint8

const (
	aapAck aapType = iota
	aapNack
	aapRegister
	aapSendBundle
	aapRecvBundle
	aapSendConfirm
	aapCancelBundle
	aapWelcome
	aapPing
)

const (
	aapVersion = 0x1

	// aapMaxPayload limits received payloads.
	aapMaxPayload = 1 << 20
)

func (t aapType) String() string {
	switch t {
	case aapAck:
		return "ACK"
	case aapNack:
		return "NACK"
	case aapRegister:
		return "REGISTER"
	case aapSendBundle:
		return "SENDBUNDLE"
	case aapRecvBundle:
		return "RECVBUNDLE"
	case aapSendConfirm:
		return "SENDCONFIRM"
	case aapCancelBundle:
		return "CANCELBUNDLE"
	case aapWelcome:
		return "WELCOME"
	case aapPing:
		return "PING"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// hasEID checks if this message type carries an endpoint ID.
func (t aapType) hasEID() bool {
	switch t {
	case aapRegister, aapSendBundle, aapRecvBundle, aapWelcome:
		return true
	default:
		return false
	}
}

// hasPayload checks if this message type carries a bundle payload.
func (t aapType) hasPayload() bool {
	return t == aapSendBundle || t == aapRecvBundle
}

// hasBundleID checks if this message type carries a bundle ID.
func (t aapType) hasBundleID() bool {
	return t == aapSendConfirm || t == aapCancelBundle
}

// aapMessage is a single AAP message. Fields not used by its type are ignored.
type aapMessage struct {
	msgType  aapType
	eid      string
	payload  []byte
	bundleID uint64
}

func (m aapMessage) String() string {
	return fmt.Sprintf("AAP(%v, eid=%q, payload=%d bytes, bundle=%d)", m.msgType, m.eid, len(m.payload), m.bundleID)
}

// writeTo serializes this message: a header byte, followed by the type-dependent fields in network byte order.
func (m aapMessage) writeTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := bw.WriteByte(aapVersion<<4 | byte(m.msgType)); err != nil {
		return err
	}

	if m.msgType.hasEID() {
		if len(m.eid) > math.MaxUint16 {
			return fmt.Errorf("endpoint ID of %d bytes is too long", len(m.eid))
		}
		if err := binary.Write(bw, binary.BigEndian, uint16(len(m.eid))); err != nil {
			return err
		}
		if _, err := bw.WriteString(m.eid); err != nil {
			return err
		}
	}

	if m.msgType.hasPayload() {
		if err := binary.Write(bw, binary.BigEndian, uint64(len(m.payload))); err != nil {
			return err
		}
		if _, err := bw.Write(m.payload); err != nil {
			return err
		}
	}

	if m.msgType.hasBundleID() {
		if err := binary.Write(bw, binary.BigEndian, m.bundleID); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// readAAPMessage reads the next AAP message.
func readAAPMessage(r io.Reader) (m aapMessage, err error) {
	var header [1]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return
	}

	if version := header[0] >> 4; version != aapVersion {
		err = fmt.Errorf("unsupported AAP version %d", version)
		return
	}
	m.msgType = aapType(header[0] & 0x0f)
	if m.msgType > aapPing {
		err = fmt.Errorf("unknown AAP message type %d", m.msgType)
		return
	}

	if m.msgType.hasEID() {
		var eidLen uint16
		if err = binary.Read(r, binary.BigEndian, &eidLen); err != nil {
			return
		}
		eid := make([]byte, eidLen)
		if _, err = io.ReadFull(r, eid); err != nil {
			return
		}
		m.eid = string(eid)
	}

	if m.msgType.hasPayload() {
		var payloadLen uint64
		if err = binary.Read(r, binary.BigEndian, &payloadLen); err != nil {
			return
		} else if payloadLen > aapMaxPayload {
			err = fmt.Errorf("AAP payload of %d bytes exceeds limit", payloadLen)
			return
		}
		m.payload = make([]byte, payloadLen)
		if _, err = io.ReadFull(r, m.payload); err != nil {
			return
		}
	}

	if m.msgType.hasBundleID() {
		err = binary.Read(r, binary.BigEndian, &m.bundleID)
	}

	return
}
