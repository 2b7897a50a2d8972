// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// ResolvePeer parses a unicast peer, e.g., "192.0.2.1:3005", "[2001:db8::1]:3005" or "node-b.example:3005". Host
// names are resolved; the first address is used. IPv4 addresses are always returned in their four byte form, also
// when resolved or written as IPv4-mapped IPv6 addresses, to be usable on IPv4 only sockets.
func ResolvePeer(s string) (netip.AddrPort, error) {
	addrPort, err := netip.ParseAddrPort(s)
	if err != nil {
		udpAddr, resolveErr := net.ResolveUDPAddr("udp", s)
		if resolveErr != nil {
			return netip.AddrPort{}, fmt.Errorf("resolving peer %q failed: %w", s, resolveErr)
		}
		addrPort = udpAddr.AddrPort()
	}

	return netip.AddrPortFrom(addrPort.Addr().Unmap(), addrPort.Port()), nil
}

// ParsePeers reads one unicast peer per line. Empty lines and comments, starting with a '#', are skipped.
func ParsePeers(r io.Reader) (peers []netip.AddrPort, err error) {
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		peer, peerErr := ResolvePeer(line)
		if peerErr != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, peerErr)
		}
		peers = append(peers, peer)
	}

	err = scanner.Err()
	return
}

// LoadPeers from a file, as defined by ParsePeers.
func LoadPeers(path string) ([]netip.AddrPort, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParsePeers(f)
}

// PeerWatcher reloads the unicast peers of an Announcer whenever its peers file changes. The peers file's entries
// are appended to the static unicast peers.
type PeerWatcher struct {
	path      string
	static    []netip.AddrPort
	announcer *Announcer
}

// NewPeerWatcher for a peers file. The file is loaded once; an error is returned if this fails.
func NewPeerWatcher(path string, static []netip.AddrPort, announcer *Announcer) (*PeerWatcher, error) {
	pw := &PeerWatcher{
		path:      filepath.Clean(path),
		static:    static,
		announcer: announcer,
	}
	return pw, pw.reload()
}

func (pw *PeerWatcher) reload() error {
	peers, err := LoadPeers(pw.path)
	if err != nil {
		return err
	}

	unicast := make([]netip.AddrPort, 0, len(pw.static)+len(peers))
	unicast = append(unicast, pw.static...)
	unicast = append(unicast, peers...)
	pw.announcer.SetUnicast(unicast)

	log.WithFields(log.Fields{
		"file":  pw.path,
		"peers": peers,
	}).Info("Loaded unicast peers")
	return nil
}

// Serve watches the peers file until the context is canceled. The file's directory is watched, as editors commonly
// replace files instead of writing them.
func (pw *PeerWatcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(pw.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify's Event channel was closed")
			}

			if filepath.Clean(e.Name) != pw.path || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			if err := pw.reload(); err != nil {
				log.WithField("file", pw.path).WithError(err).Warn("Reloading unicast peers errored")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify's Errors channel was closed")
			}
			log.WithError(err).Warn("fsnotify errored")
		}
	}
}

func (pw *PeerWatcher) String() string {
	return fmt.Sprintf("PeerWatcher(%s)", pw.path)
}
