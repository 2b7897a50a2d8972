// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// WebSocketSink is a WebSocket based ContactSink. Each Contact is pushed to all connected clients, which might
// restrict themselves to a node ID prefix. The ContactStream can be used as a client.
type WebSocketSink struct {
	sync.Mutex

	clients  map[*webSinkClient]struct{}
	upgrader websocket.Upgrader
}

// NewWebSocketSink creates a WebSocketSink. The ServeHTTP function must be bound to the HTTP server.
func NewWebSocketSink() *WebSocketSink {
	return &WebSocketSink{
		clients:  make(map[*webSinkClient]struct{}),
		upgrader: websocket.Upgrader{},
	}
}

// ServeHTTP must be bound to a HTTP endpoint, e.g., to /ws by a http.ServeMux.
func (w *WebSocketSink) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, connErr := w.upgrader.Upgrade(rw, r, nil)
	if connErr != nil {
		log.WithError(connErr).Warn("Upgrading HTTP request to WebSocket errored")
		return
	}

	client := newWebSinkClient(conn)

	w.Lock()
	w.clients[client] = struct{}{}
	w.Unlock()

	client.handleConn()

	w.Lock()
	delete(w.clients, client)
	w.Unlock()
}

// SubmitContact to every connected client whose prefix matches the Contact's node ID. A client failing to receive
// the Contact gets disconnected; its error is reported.
func (w *WebSocketSink) SubmitContact(_ context.Context, c Contact) (err error) {
	w.Lock()
	clients := make([]*webSinkClient, 0, len(w.clients))
	for client := range w.clients {
		clients = append(clients, client)
	}
	w.Unlock()

	for _, client := range clients {
		if !client.interested(c) {
			continue
		}

		if clientErr := client.writeMessage(newContactMessage(c)); clientErr != nil {
			log.WithFields(log.Fields{
				"web sink client": client.conn.RemoteAddr().String(),
				"contact":         c,
				"error":           clientErr,
			}).Warn("Sending contact to client errored")

			client.shutdown()
			err = multierror.Append(err, clientErr)
		}
	}
	return
}

// Clients returns the amount of currently connected clients.
func (w *WebSocketSink) Clients() int {
	w.Lock()
	defer w.Unlock()

	return len(w.clients)
}
