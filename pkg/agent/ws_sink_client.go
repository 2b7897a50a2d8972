// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type webSinkClient struct {
	sync.Mutex

	conn   *websocket.Conn
	prefix string

	shutdownOnce sync.Once
}

func newWebSinkClient(conn *websocket.Conn) *webSinkClient {
	return &webSinkClient{conn: conn}
}

func (client *webSinkClient) shutdown() {
	client.shutdownOnce.Do(func() {
		log.WithField("web sink client", client.conn.RemoteAddr().String()).Debug("Reached shutdown")

		_ = client.conn.Close()
	})
}

// handleConn reads incoming messages until the connection is closed.
func (client *webSinkClient) handleConn() {
	defer client.shutdown()

	var logger = log.WithField("web sink client", client.conn.RemoteAddr().String())

	for {
		if messageType, reader, err := client.conn.NextReader(); err != nil {
			if errors.Is(err, net.ErrClosed) || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.WithError(err).Debug("Reader errored due to closed connection")
			} else {
				logger.WithError(err).Warn("Opening next Websocket Reader errored")
			}
			return
		} else if messageType != websocket.BinaryMessage {
			logger.WithField("message type", messageType).Warn("Websocket Reader's type is not binary")
			return
		} else if msg, err := unmarshalCbor(reader); err != nil {
			logger.WithError(err).Warn("Unmarshal CBOR errored")
			return
		} else {
			switch msg := msg.(type) {
			case *wsmSubscribe:
				client.subscribe(msg)
				if err := client.writeMessage(newStatusMessage(nil)); err != nil {
					logger.WithError(err).Warn("Acknowledging subscription errored")
					return
				}

			default:
				logger.WithField("message", msg).Info("Received unknown / unsupported message")
			}
		}
	}
}

func (client *webSinkClient) subscribe(m *wsmSubscribe) {
	client.Lock()
	defer client.Unlock()

	log.WithFields(log.Fields{
		"web sink client": client.conn.RemoteAddr().String(),
		"prefix":          m.prefix,
	}).Debug("Client subscribed to node prefix")

	client.prefix = m.prefix
}

// interested checks if this client's prefix matches the Contact's node ID.
func (client *webSinkClient) interested(c Contact) bool {
	client.Lock()
	defer client.Unlock()

	return strings.HasPrefix(c.NodeID, client.prefix)
}

func (client *webSinkClient) writeMessage(msg webSinkMessage) error {
	client.Lock()
	defer client.Unlock()

	wc, wcErr := client.conn.NextWriter(websocket.BinaryMessage)
	if wcErr != nil {
		return wcErr
	}

	if cborErr := marshalCbor(msg, wc); cborErr != nil {
		return cborErr
	}

	return wc.Close()
}
