// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// ContactStream is the client side version of the WebSocketSink.
type ContactStream struct {
	conn    *websocket.Conn
	pending []Contact
}

// DialContactStream connects to a WebSocketSink and subscribes to all contacts whose node ID starts with prefix. An
// empty prefix subscribes to every contact.
func DialContactStream(apiUrl, prefix string) (cs *ContactStream, err error) {
	var conn *websocket.Conn
	if conn, _, err = websocket.DefaultDialer.Dial(apiUrl, nil); err != nil {
		return
	}

	cs = &ContactStream{conn: conn}
	if err = cs.subscribe(prefix); err != nil {
		_ = conn.Close()
		cs = nil
	}
	return
}

func (cs *ContactStream) writeMessage(msg webSinkMessage) error {
	wc, wcErr := cs.conn.NextWriter(websocket.BinaryMessage)
	if wcErr != nil {
		return wcErr
	}

	if cborErr := marshalCbor(msg, wc); cborErr != nil {
		return cborErr
	}

	return wc.Close()
}

func (cs *ContactStream) readMessage() (msg webSinkMessage, err error) {
	if mt, r, rErr := cs.conn.NextReader(); rErr != nil {
		err = rErr
	} else if mt != websocket.BinaryMessage {
		err = fmt.Errorf("expected binary message, got %d", mt)
	} else {
		msg, err = unmarshalCbor(r)
	}
	return
}

// subscribe sends the prefix and waits for its acknowledgement. Contacts arriving meanwhile are queued.
func (cs *ContactStream) subscribe(prefix string) error {
	if err := cs.writeMessage(newSubscribeMessage(prefix)); err != nil {
		return err
	}

	for {
		msg, err := cs.readMessage()
		if err != nil {
			return err
		}

		switch msg := msg.(type) {
		case *wsmStatus:
			if msg.errorMsg != "" {
				return fmt.Errorf("received non-empty error message: %s", msg.errorMsg)
			}
			return nil

		case *wsmContact:
			cs.pending = append(cs.pending, msg.c)

		default:
			return fmt.Errorf("expected wsmStatus, got %T", msg)
		}
	}
}

// Next blocks until the next Contact was received.
func (cs *ContactStream) Next() (Contact, error) {
	if len(cs.pending) > 0 {
		c := cs.pending[0]
		cs.pending = cs.pending[1:]
		return c, nil
	}

	for {
		msg, err := cs.readMessage()
		if err != nil {
			return Contact{}, err
		}

		if msg, ok := msg.(*wsmContact); ok {
			return msg.c, nil
		}
	}
}

// Close this ContactStream.
func (cs *ContactStream) Close() error {
	_ = cs.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return cs.conn.Close()
}
