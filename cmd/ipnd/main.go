// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command ipnd announces this node by IPND beacons and submits contacts for discovered neighbors.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
	"github.com/thejerf/suture/v4"

	"github.com/dtn7/dtn7-ipnd/pkg/api"
	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
	"github.com/dtn7/dtn7-ipnd/pkg/storage"
)

type cli struct {
	Config  string `arg:"" type:"existingfile" help:"TOML configuration file"`
	Verbose bool   `short:"v" help:"Log on debug level, overriding the configuration"`
}

func main() {
	var params cli
	kong.Parse(&params, kong.Description("IP Neighbor Discovery daemon for DTN nodes"))

	d, err := parseDaemon(params.Config)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse config")
	}
	if params.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	manager, err := discovery.NewManager(d.own, d.sink, d.discovery, d.store)
	if err != nil {
		log.WithError(err).Fatal("Failed to start discovery")
	}

	root := suture.New("ipnd", suture.Spec{
		EventHook: func(e suture.Event) {
			log.WithField("event", e.String()).Warn("Supervisor event")
		},
	})
	root.Add(manager)

	if d.apiListen != "" {
		root.Add(api.NewAPI(d.apiListen, d.own, d.store, d.wsHandler()))
	}
	if d.discovery.NeighborTTL > 0 {
		root.Add(storage.NewCleaner(d.store, d.discovery.NeighborTTL))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Serve(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("Supervisor stopped")
	}
	log.Info("Shutting down..")

	if err := manager.Close(); err != nil {
		log.WithError(err).Warn("Closing discovery errored")
	}
	if err := d.Close(); err != nil {
		log.WithError(err).Warn("Closing contact sinks and store errored")
	}
}
