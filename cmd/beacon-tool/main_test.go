// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

func TestCreateHex(t *testing.T) {
	c := createCommand{NodeID: "node-A", Period: 30, Sequence: 5, TCPCLv3: 4556, Hex: true}

	var out bytes.Buffer
	if err := c.run(&out); err != nil {
		t.Fatal(err)
	}

	if expected := "8608070566" + "6e6f64652d41" + "8182011911cc181e\n"; out.String() != expected {
		t.Fatalf("created %q, expected %q", out.String(), expected)
	}
}

func TestCreateParse(t *testing.T) {
	c := createCommand{
		NodeID:  "dtn://node-b/",
		Period:  10,
		TCPCLv4: 4556,
		MTCPCL:  35037,
		Geo:     "52.5, 13.25",
		Address: "Hans-Meerwein-Str. 6",
	}

	var created bytes.Buffer
	if err := c.run(&created); err != nil {
		t.Fatal(err)
	}

	b, err := beacon.ParseBeacon(created.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Services) != 4 {
		t.Fatalf("beacon has services %v", b.Services)
	}
	if geo, ok := b.Services[2].(beacon.GeoLocation); !ok || geo.Latitude != 52.5 || geo.Longitude != 13.25 {
		t.Fatalf("third service is %v", b.Services[2])
	}

	var parsed bytes.Buffer
	if err := (&parseCommand{}).run(&created, &parsed); err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{
		"Version:         8",
		"Flags:           00000111",
		"Node ID:         dtn://node-b/",
		"Period:          10s",
		"Service:         TCPCLv4(4556)",
		"Service:         MTCPCL(35037)",
		`Service:         Address("Hans-Meerwein-Str. 6")`,
	} {
		if !strings.Contains(parsed.String(), line) {
			t.Fatalf("parsed output misses %q:\n%s", line, parsed.String())
		}
	}
}

func TestParseHex(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("83080017\n")
	if err := (&parseCommand{Hex: true}).run(in, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Sequence number: 23") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestInvalidInput(t *testing.T) {
	if err := (&createCommand{Geo: "52.5"}).run(&bytes.Buffer{}); err == nil {
		t.Fatal("invalid geolocation was accepted")
	}
	if err := (&parseCommand{}).run(strings.NewReader("\x83\x07\x00\x00"), &bytes.Buffer{}); err == nil {
		t.Fatal("beacon of version 7 was accepted")
	}
	if err := (&parseCommand{Hex: true}).run(strings.NewReader("zz"), &bytes.Buffer{}); err == nil {
		t.Fatal("invalid hex was accepted")
	}
}
