// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

type createCommand struct {
	NodeID   string `name:"node-id" help:"Advertised node ID"`
	Period   uint64 `short:"p" placeholder:"SECONDS" help:"Seconds between two advertisements"`
	Sequence uint64 `help:"Sequence number"`
	TCPCLv4  uint16 `name:"tcpclv4" placeholder:"PORT" help:"Add a TCPCLv4 convergence layer"`
	TCPCLv3  uint16 `name:"tcpclv3" placeholder:"PORT" help:"Add a TCPCLv3 convergence layer"`
	MTCPCL   uint16 `name:"mtcpcl" placeholder:"PORT" help:"Add a Minimal TCP convergence layer"`
	Geo      string `placeholder:"LAT,LON" help:"Add a geolocation service"`
	Address  string `placeholder:"ADDRESS" help:"Add a physical address service"`
	Hex      bool   `help:"Write hexadecimal instead of binary output"`
}

// parseGeo from a "LAT,LON" string.
func parseGeo(s string) (beacon.GeoLocation, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return beacon.GeoLocation{}, fmt.Errorf("geolocation %q is not LAT,LON", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 32)
	if err != nil {
		return beacon.GeoLocation{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 32)
	if err != nil {
		return beacon.GeoLocation{}, fmt.Errorf("longitude: %w", err)
	}

	return beacon.GeoLocation{Latitude: float32(lat), Longitude: float32(lon)}, nil
}

// beacon described by the flags.
func (c *createCommand) beacon() (beacon.Beacon, error) {
	b := beacon.NewBeacon()
	b.NodeID = c.NodeID
	b.SequenceNumber = c.Sequence
	b.Period = time.Duration(c.Period) * time.Second

	if c.TCPCLv3 != 0 {
		b.Services = append(b.Services, beacon.TCPCLv3{Port: c.TCPCLv3})
	}
	if c.TCPCLv4 != 0 {
		b.Services = append(b.Services, beacon.TCPCLv4{Port: c.TCPCLv4})
	}
	if c.MTCPCL != 0 {
		b.Services = append(b.Services, beacon.MTCPCL{Port: c.MTCPCL})
	}
	if c.Geo != "" {
		geo, err := parseGeo(c.Geo)
		if err != nil {
			return b, err
		}
		b.Services = append(b.Services, geo)
	}
	if c.Address != "" {
		b.Services = append(b.Services, beacon.Address{Text: c.Address})
	}

	return b, nil
}

func (c *createCommand) run(w io.Writer) error {
	b, err := c.beacon()
	if err != nil {
		return err
	}

	data, err := b.Bytes()
	if err != nil {
		return err
	}

	if c.Hex {
		_, err = fmt.Fprintln(w, hex.EncodeToString(data))
	} else {
		_, err = w.Write(data)
	}
	return err
}

func (c *createCommand) Run(s streams) error {
	return c.run(s.out)
}
