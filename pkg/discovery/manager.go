// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/thejerf/suture/v4"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

// Manager publishes and receives beacons. It is a suture.Supervisor for its Announcer, Receiver and, if configured,
// PeerWatcher and must be served, e.g., by adding it to a parent supervisor.
type Manager struct {
	*suture.Supervisor

	conn      *net.UDPConn
	own       beacon.Beacon
	announcer *Announcer
	receiver  *Receiver
}

// NewManager binds the discovery socket and prepares announcing the own Beacon. Fresh neighbors are submitted to the
// sink and reported to the observers. An error is returned if the socket or the peers file cannot be set up.
//
// If the own Beacon advertises a period, beacons are sent at this period. An unset Config.Interval is taken from it,
// a different one is rejected.
func NewManager(own beacon.Beacon, sink agent.ContactSink, conf Config, observers ...NeighborObserver) (*Manager, error) {
	if own.HasPeriod() {
		if own.Period < time.Second {
			return nil, fmt.Errorf("own beacon advertises period %v, below one second", own.Period)
		} else if conf.Interval <= 0 {
			conf.Interval = own.Period
		} else if conf.Interval != own.Period {
			return nil, fmt.Errorf("own beacon advertises period %v, but beacons are sent every %v", own.Period, conf.Interval)
		}
	}

	conf = conf.withDefaults()

	if own.NodeID == "" {
		return nil, fmt.Errorf("own beacon misses a node ID")
	}
	if own.Version != beacon.Version {
		return nil, fmt.Errorf("own beacon has unsupported version %d", own.Version)
	}

	conn, err := listen(conf)
	if err != nil {
		return nil, err
	}

	localPort := conn.LocalAddr().(*net.UDPAddr).AddrPort().Port()

	manager := &Manager{
		Supervisor: suture.New("discovery", suture.Spec{
			EventHook: func(e suture.Event) {
				log.WithField("event", e.String()).Info("Discovery supervisor event")
			},
			Timeout: conf.Interval + time.Second,
		}),

		conn:      conn,
		own:       own,
		announcer: NewAnnouncer(conn, own, conf.Interval, conf.groups(localPort), conf.Unicast),
		receiver:  NewReceiver(conn, own, sink, conf, observers...),
	}

	manager.Add(manager.announcer)
	manager.Add(manager.receiver)

	if conf.PeersFile != "" {
		pw, err := NewPeerWatcher(conf.PeersFile, conf.Unicast, manager.announcer)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("loading peers file failed: %w", err)
		}
		manager.Add(pw)
	}

	log.WithFields(log.Fields{
		"address":   conn.LocalAddr(),
		"mode":      conf.Mode,
		"broadcast": conf.Broadcast,
		"interval":  conf.Interval,
		"beacon":    own,
	}).Info("Created discovery Manager")

	return manager, nil
}

// LocalAddr of the discovery socket.
func (manager *Manager) LocalAddr() netip.AddrPort {
	return manager.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Beacon is the own Beacon, as passed to NewManager.
func (manager *Manager) Beacon() beacon.Beacon {
	return manager.own
}

// Announcer of this Manager.
func (manager *Manager) Announcer() *Announcer {
	return manager.announcer
}

// Close the discovery socket. The Receiver stops afterwards; the context passed to Serve should be canceled as well.
func (manager *Manager) Close() error {
	if err := manager.conn.Close(); err != nil {
		return &SocketError{Op: "close", Err: err}
	}
	return nil
}

func (manager *Manager) String() string {
	return fmt.Sprintf("Manager(%s)", manager.own.NodeID)
}
