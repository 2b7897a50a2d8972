// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// listen binds the discovery socket on the wildcard address of the configured address families, disables multicast
// loopback and joins the multicast groups. Failing to join a group is only logged; everything else is fatal.
func listen(conf Config) (*net.UDPConn, error) {
	lc := net.ListenConfig{Control: listenControl}

	addr := fmt.Sprintf(":%d", conf.Port)
	pc, err := lc.ListenPacket(context.Background(), conf.Mode.network(), addr)
	if err != nil {
		return nil, &SocketError{Op: "bind", Addr: conf.Mode.network() + " " + addr, Err: err}
	}
	conn := pc.(*net.UDPConn)

	ifis, err := multicastInterfaces(conf.Interface)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if conf.Mode.v6() {
		if err := setupIPv6(ipv6.NewPacketConn(conn), conf, ifis); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	if conf.Mode.v4() {
		if err := setupIPv4(ipv4.NewPacketConn(conn), conf, ifis); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// multicastInterfaces returns the named interface or, if name is empty, all multicast capable interfaces being up.
func multicastInterfaces(name string) ([]net.Interface, error) {
	if name != "" {
		ifi, err := net.InterfaceByName(name)
		if err != nil {
			return nil, &SocketError{Op: "find interface", Addr: name, Err: err}
		}
		return []net.Interface{*ifi}, nil
	}

	all, err := net.Interfaces()
	if err != nil {
		return nil, &SocketError{Op: "list interfaces", Err: err}
	}

	var ifis []net.Interface
	for _, ifi := range all {
		if ifi.Flags&net.FlagUp != 0 && ifi.Flags&net.FlagMulticast != 0 {
			ifis = append(ifis, ifi)
		}
	}
	return ifis, nil
}

// joinGroups on each interface; failures are logged.
func joinGroups(join func(*net.Interface, net.Addr) error, ifis []net.Interface, group net.IP) {
	joined := 0
	for i := range ifis {
		ifi := &ifis[i]
		logger := log.WithFields(log.Fields{
			"interface": ifi.Name,
			"group":     group,
		})

		if err := join(ifi, &net.UDPAddr{IP: group}); err != nil {
			logger.WithError(&SocketError{Op: "join", Addr: group.String(), Err: err}).Warn("Joining multicast group errored")
		} else {
			logger.Debug("Joined multicast group")
			joined++
		}
	}

	if joined == 0 {
		log.WithField("group", group).Warn("Multicast group was not joined on any interface")
	}
}

func setupIPv4(p *ipv4.PacketConn, conf Config, ifis []net.Interface) error {
	if err := p.SetMulticastLoopback(false); err != nil {
		return &SocketError{Op: "disable IPv4 multicast loopback", Err: err}
	}

	if conf.Interface != "" && len(ifis) == 1 {
		if err := p.SetMulticastInterface(&ifis[0]); err != nil {
			return &SocketError{Op: "set IPv4 multicast interface", Addr: conf.Interface, Err: err}
		}
	}

	if !conf.Broadcast {
		joinGroups(p.JoinGroup, ifis, net.ParseIP(MulticastAddress4))
	}
	return nil
}

func setupIPv6(p *ipv6.PacketConn, conf Config, ifis []net.Interface) error {
	if err := p.SetMulticastLoopback(false); err != nil {
		return &SocketError{Op: "disable IPv6 multicast loopback", Err: err}
	}

	if conf.Interface != "" && len(ifis) == 1 {
		if err := p.SetMulticastInterface(&ifis[0]); err != nil {
			return &SocketError{Op: "set IPv6 multicast interface", Addr: conf.Interface, Err: err}
		}
	}

	if !conf.Broadcast {
		joinGroups(p.JoinGroup, ifis, net.ParseIP(MulticastAddress6))
	}
	return nil
}
