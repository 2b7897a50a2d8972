// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// aapTimeout bounds each exchange with the ud3tn node.
const aapTimeout = 5 * time.Second

// AAPSink is a ContactSink for ud3tn, configuring each Contact through its Application Agent Protocol (AAP).
//
// The connection is established on the first submission and kept afterwards. After an error, the connection is
// dropped and re-established for the next Contact; the failed Contact is not retried.
type AAPSink struct {
	sync.Mutex

	network   string
	address   string
	agentID   string
	configEID string

	conn    net.Conn
	nodeEID string
}

// NewAAPSink creates an AAPSink for a ud3tn node's AAP socket, e.g., "unix:/tmp/ud3tn.socket" or
// "tcp:localhost:4242". The AAPSink registers itself as agentID. If configEID is empty, it is derived from the node ID
// announced by ud3tn.
func NewAAPSink(address, agentID, configEID string) (*AAPSink, error) {
	network, addr, ok := strings.Cut(address, ":")
	if !ok || addr == "" {
		return nil, fmt.Errorf("AAP address %q misses a network prefix, e.g., tcp: or unix:", address)
	}

	switch network {
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		return nil, fmt.Errorf("unsupported AAP network %q", network)
	}

	if agentID == "" {
		return nil, fmt.Errorf("AAP agent ID must not be empty")
	}

	return &AAPSink{
		network:   network,
		address:   addr,
		agentID:   agentID,
		configEID: configEID,
	}, nil
}

// exchange sends a message and reads its answer.
func (sink *AAPSink) exchange(msg aapMessage) (aapMessage, error) {
	_ = sink.conn.SetDeadline(time.Now().Add(aapTimeout))

	if err := msg.writeTo(sink.conn); err != nil {
		return aapMessage{}, err
	}
	return readAAPMessage(sink.conn)
}

// connect dials the ud3tn node, reads its WELCOME and registers the agent ID.
func (sink *AAPSink) connect(ctx context.Context) error {
	var dialer net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, aapTimeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, sink.network, sink.address)
	if err != nil {
		return err
	}
	sink.conn = conn

	_ = conn.SetDeadline(time.Now().Add(aapTimeout))
	if welcome, err := readAAPMessage(conn); err != nil {
		sink.disconnect()
		return err
	} else if welcome.msgType != aapWelcome {
		sink.disconnect()
		return fmt.Errorf("expected WELCOME, got %v", welcome)
	} else {
		sink.nodeEID = welcome.eid
	}

	if ack, err := sink.exchange(aapMessage{msgType: aapRegister, eid: sink.agentID}); err != nil {
		sink.disconnect()
		return err
	} else if ack.msgType != aapAck {
		sink.disconnect()
		return fmt.Errorf("registering agent %q was answered by %v", sink.agentID, ack)
	}

	log.WithFields(log.Fields{
		"aap":     sink.network + ":" + sink.address,
		"node":    sink.nodeEID,
		"agentID": sink.agentID,
	}).Info("Connected to ud3tn's AAP")

	return nil
}

func (sink *AAPSink) disconnect() {
	if sink.conn != nil {
		_ = sink.conn.Close()
		sink.conn = nil
	}
}

// SubmitContact sends the Contact as a configuration bundle to the ud3tn node.
func (sink *AAPSink) SubmitContact(ctx context.Context, c Contact) error {
	sink.Lock()
	defer sink.Unlock()

	if sink.conn == nil {
		if err := sink.connect(ctx); err != nil {
			return fmt.Errorf("connecting to AAP at %s:%s failed: %w", sink.network, sink.address, err)
		}
	}

	configEID := sink.configEID
	if configEID == "" {
		var err error
		if configEID, err = configEndpoint(sink.nodeEID); err != nil {
			return err
		}
	}

	msg := aapMessage{
		msgType: aapSendBundle,
		eid:     configEID,
		payload: contactConfig(c),
	}

	confirm, err := sink.exchange(msg)
	if err != nil {
		sink.disconnect()
		return err
	} else if confirm.msgType != aapSendConfirm {
		sink.disconnect()
		return fmt.Errorf("sending configuration bundle was answered by %v", confirm)
	}

	log.WithFields(log.Fields{
		"contact": c,
		"config":  configEID,
		"bundle":  confirm.bundleID,
	}).Debug("Configured contact via AAP")

	return nil
}

// Close the connection to the ud3tn node, if established.
func (sink *AAPSink) Close() error {
	sink.Lock()
	defer sink.Unlock()

	sink.disconnect()
	return nil
}
