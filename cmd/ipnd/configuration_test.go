// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/netip"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
	"github.com/dtn7/dtn7-ipnd/pkg/storage"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "ipnd.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDaemon(t *testing.T) {
	path := writeConfig(t, `
[node]
id = "dtn://node-a/"

[logging]
level = "debug"

[discovery]
mode = "ipv6"
interval = 5
unicast = ["[2001:db8::1]:3005"]
freshness = "serial"
max-neighbors = 64
neighbor-ttl = "1m"
rate-limit = 2.5

[[service]]
type = "tcpclv4"
port = 4556

[[service]]
type = "geo"
latitude = 52.5
longitude = 13.25

[contact]
backends = ["log", "websocket", "aap"]
aap-address = "unix:/tmp/ud3tn.socket"
default-duration = 60

[api]
listen = "localhost:8080"
`)

	d, err := parseDaemon(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	expectedBeacon := beacon.Beacon{
		Version: beacon.Version,
		NodeID:  "dtn://node-a/",
		Services: []beacon.Service{
			beacon.TCPCLv4{Port: 4556},
			beacon.GeoLocation{Latitude: 52.5, Longitude: 13.25},
		},
		Period: 5 * time.Second,
	}
	if !reflect.DeepEqual(d.own, expectedBeacon) {
		t.Fatalf("beacon is %v, expected %v", d.own, expectedBeacon)
	}

	expectedDiscovery := discovery.Config{
		Mode:            discovery.IPv6Only,
		Port:            discovery.Port,
		Interval:        5 * time.Second,
		Unicast:         []netip.AddrPort{netip.MustParseAddrPort("[2001:db8::1]:3005")},
		Freshness:       discovery.FreshnessSerial,
		MaxNeighbors:    64,
		NeighborTTL:     time.Minute,
		RateLimit:       2.5,
		DefaultDuration: time.Minute,
	}
	if !reflect.DeepEqual(d.discovery, expectedDiscovery) {
		t.Fatalf("discovery config is %+v, expected %+v", d.discovery, expectedDiscovery)
	}

	if d.sink.Len() != 3 {
		t.Fatalf("MuxSink has %d sinks, expected 3", d.sink.Len())
	}
	if d.ws == nil || d.wsHandler() == nil {
		t.Fatal("websocket backend is missing")
	}
	if _, ok := d.store.(*storage.MemoryStore); !ok {
		t.Fatalf("store is %T, expected a MemoryStore", d.store)
	}
	if d.apiListen != "localhost:8080" {
		t.Fatalf("API listens on %q", d.apiListen)
	}
}

func TestParseDaemonDefaults(t *testing.T) {
	path := writeConfig(t, `
[node]
id = "ipn:23.0"

[store]
path = "`+filepath.Join(t.TempDir(), "store")+`"
`)

	d, err := parseDaemon(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if d.own.Period != discovery.DefaultInterval || len(d.own.Services) != 0 {
		t.Fatalf("unexpected beacon %v", d.own)
	}
	if d.discovery.Mode != discovery.IPBoth || d.discovery.Port != discovery.Port {
		t.Fatalf("unexpected discovery config %+v", d.discovery)
	}
	if d.sink.Len() != 1 || d.wsHandler() != nil {
		t.Fatal("expected only the log backend")
	}
	if _, ok := d.store.(*storage.Store); !ok {
		t.Fatalf("store is %T, expected a Store", d.store)
	}
}

func TestParseDaemonInvalid(t *testing.T) {
	tests := map[string]string{
		"missing node id": `
[discovery]
mode = "ipv4"`,
		"unknown mode": `
[node]
id = "dtn://a/"
[discovery]
mode = "ipx"`,
		"unknown service": `
[node]
id = "dtn://a/"
[[service]]
type = "udpcl"`,
		"unknown backend": `
[node]
id = "dtn://a/"
[contact]
backends = ["mail"]`,
		"aap without address": `
[node]
id = "dtn://a/"
[contact]
backends = ["aap"]`,
		"websocket without api": `
[node]
id = "dtn://a/"
[contact]
backends = ["websocket"]`,
		"invalid peer": `
[node]
id = "dtn://a/"
[discovery]
unicast = ["192.0.2.1"]`,
		"invalid ttl": `
[node]
id = "dtn://a/"
[discovery]
neighbor-ttl = "forever"`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if d, err := parseDaemon(writeConfig(t, content)); err == nil {
				d.Close()
				t.Fatal("invalid configuration was accepted")
			}
		})
	}
}
