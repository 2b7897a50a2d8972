// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/dtn7/cboring"
)

// webSinkMessage describes a message which might be sent over a WebSocketSink's connection.
// Implementations are available at the end of this file.
type webSinkMessage interface {
	// typeCode is an unique identifier for each message type.
	typeCode() uint64

	// CborMarshaler must only be implemented for the type's logic.
	// A generic wrapper for the typeCode is available in the marshalCbor and unmarshalCbor functions.
	cboring.CborMarshaler
}

const (
	wsmStatusCode    uint64 = 0
	wsmContactCode   uint64 = 1
	wsmSubscribeCode uint64 = 2
)

var wsmMapping = map[uint64]reflect.Type{
	wsmStatusCode:    reflect.TypeOf(wsmStatus{}),
	wsmContactCode:   reflect.TypeOf(wsmContact{}),
	wsmSubscribeCode: reflect.TypeOf(wsmSubscribe{}),
}

// marshalCbor writes a webSinkMessage wrapped with its type code as CBOR.
func marshalCbor(wsm webSinkMessage, w io.Writer) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}

	if err := cboring.WriteUInt(wsm.typeCode(), w); err != nil {
		return err
	}

	return cboring.Marshal(wsm, w)
}

// unmarshalCbor reads a new webSinkMessage based on its type code from CBOR.
func unmarshalCbor(r io.Reader) (wsm webSinkMessage, err error) {
	if n, arrErr := cboring.ReadArrayLength(r); arrErr != nil {
		err = arrErr
		return
	} else if n != 2 {
		err = fmt.Errorf("expected array of two elements, got %d", n)
		return
	}

	if n, typeErr := cboring.ReadUInt(r); typeErr != nil {
		err = typeErr
		return
	} else if t, ok := wsmMapping[n]; !ok {
		err = fmt.Errorf("no known message type code %d", n)
		return
	} else {
		wsm = reflect.New(t).Interface().(webSinkMessage)
	}

	err = cboring.Unmarshal(wsm, r)
	return
}

// wsmStatus acknowledges a previous message or reports an error with a non-empty string.
type wsmStatus struct {
	errorMsg string
}

// newStatusMessage creates a new wsmStatus webSinkMessage.
func newStatusMessage(err error) *wsmStatus {
	if err == nil {
		return &wsmStatus{""}
	}
	return &wsmStatus{err.Error()}
}

func (*wsmStatus) typeCode() uint64 {
	return wsmStatusCode
}

func (ws *wsmStatus) MarshalCbor(w io.Writer) error {
	return cboring.WriteTextString(ws.errorMsg, w)
}

func (ws *wsmStatus) UnmarshalCbor(r io.Reader) (err error) {
	ws.errorMsg, err = cboring.ReadTextString(r)
	return
}

// wsmContact pushes a Contact to a client. Times are transmitted in milliseconds; the start as a Unix timestamp.
type wsmContact struct {
	c Contact
}

// newContactMessage creates a new wsmContact webSinkMessage.
func newContactMessage(c Contact) *wsmContact {
	return &wsmContact{c}
}

func (*wsmContact) typeCode() uint64 {
	return wsmContactCode
}

func (wc *wsmContact) MarshalCbor(w io.Writer) error {
	if err := cboring.WriteArrayLength(5, w); err != nil {
		return err
	}

	for _, s := range []string{wc.c.NodeID, wc.c.CLAAddress} {
		if err := cboring.WriteTextString(s, w); err != nil {
			return err
		}
	}

	for _, n := range []uint64{
		uint64(wc.c.Start.UnixMilli()), uint64(wc.c.Duration.Milliseconds()), uint64(wc.c.DataRate)} {
		if err := cboring.WriteUInt(n, w); err != nil {
			return err
		}
	}

	return nil
}

func (wc *wsmContact) UnmarshalCbor(r io.Reader) error {
	if n, err := cboring.ReadArrayLength(r); err != nil {
		return err
	} else if n != 5 {
		return fmt.Errorf("expected CBOR array of 5 elements, not %d", n)
	}

	for _, s := range []*string{&wc.c.NodeID, &wc.c.CLAAddress} {
		if x, err := cboring.ReadTextString(r); err != nil {
			return err
		} else {
			*s = x
		}
	}

	var fields [3]uint64
	for i := range fields {
		if n, err := cboring.ReadUInt(r); err != nil {
			return err
		} else {
			fields[i] = n
		}
	}

	if fields[2] > uint64(RateUnlimited) {
		return fmt.Errorf("data rate %d exceeds 32 bit", fields[2])
	}

	wc.c.Start = time.UnixMilli(int64(fields[0]))
	wc.c.Duration = time.Duration(fields[1]) * time.Millisecond
	wc.c.DataRate = uint32(fields[2])
	return nil
}

// wsmSubscribe is sent from a client to the server to only receive contacts for node IDs starting with a prefix.
type wsmSubscribe struct {
	prefix string
}

// newSubscribeMessage creates a new wsmSubscribe webSinkMessage.
func newSubscribeMessage(prefix string) *wsmSubscribe {
	return &wsmSubscribe{prefix}
}

func (*wsmSubscribe) typeCode() uint64 {
	return wsmSubscribeCode
}

func (ws *wsmSubscribe) MarshalCbor(w io.Writer) error {
	return cboring.WriteTextString(ws.prefix, w)
}

func (ws *wsmSubscribe) UnmarshalCbor(r io.Reader) (err error) {
	ws.prefix, err = cboring.ReadTextString(r)
	return
}
