// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
)

type parseCommand struct {
	Hex bool `help:"Read hexadecimal instead of binary input"`
}

func (c *parseCommand) run(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if c.Hex {
		if data, err = hex.DecodeString(string(bytes.TrimSpace(data))); err != nil {
			return err
		}
	}

	b, err := beacon.ParseBeacon(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Version:         %d\n", b.Version)
	fmt.Fprintf(w, "Flags:           %08b\n", b.Flags())
	fmt.Fprintf(w, "Sequence number: %d\n", b.SequenceNumber)
	if b.HasNodeID() {
		fmt.Fprintf(w, "Node ID:         %s\n", b.NodeID)
	}
	if b.HasPeriod() {
		fmt.Fprintf(w, "Period:          %v\n", b.Period)
	}
	for _, service := range b.Services {
		fmt.Fprintf(w, "Service:         %v\n", service)
	}
	return nil
}

func (c *parseCommand) Run(s streams) error {
	return c.run(s.in, s.out)
}
