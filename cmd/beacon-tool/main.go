// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command beacon-tool creates and inspects IPND beacons and follows the contact stream of a running ipnd.
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Create createCommand `cmd:"" help:"Create a beacon and write its CBOR encoding to stdout"`
	Parse  parseCommand  `cmd:"" help:"Parse a CBOR encoded beacon from stdin"`
	Watch  watchCommand  `cmd:"" help:"Print contacts from an ipnd WebSocket contact stream"`
}

// streams are bound to each command's Run method.
type streams struct {
	in  *os.File
	out *os.File
}

func main() {
	var params cli
	kongCtx := kong.Parse(&params,
		kong.Name("beacon-tool"),
		kong.Description("Create, parse and watch IPND beacons"),
		kong.UsageOnError())

	err := kongCtx.Run(streams{in: os.Stdin, out: os.Stdout})
	kongCtx.FatalIfErrorf(err)
}
