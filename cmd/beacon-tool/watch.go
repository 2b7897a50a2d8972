// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
)

type watchCommand struct {
	URL    string `arg:"" help:"WebSocket URL, e.g., ws://localhost:8080/ws"`
	Prefix string `help:"Only print contacts whose node ID starts with this prefix"`
	Count  int    `short:"n" help:"Exit after this many contacts; zero watches forever"`
}

func (c *watchCommand) run(w io.Writer) error {
	cs, err := agent.DialContactStream(c.URL, c.Prefix)
	if err != nil {
		return err
	}
	defer cs.Close()

	for i := 0; c.Count <= 0 || i < c.Count; i++ {
		contact, err := cs.Next()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n",
			contact.Start.Format("15:04:05.000"), contact.NodeID, contact.CLAAddress, contact.Duration)
	}
	return nil
}

func (c *watchCommand) Run(s streams) error {
	return c.run(s.out)
}
