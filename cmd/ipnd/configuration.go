// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-ipnd/pkg/agent"
	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
	"github.com/dtn7/dtn7-ipnd/pkg/discovery"
	"github.com/dtn7/dtn7-ipnd/pkg/storage"
)

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Node      nodeConf
	Logging   logConf
	Discovery discoveryConf
	Service   []serviceConf
	Contact   contactConf
	Api       apiConf
	Store     storeConf
}

// nodeConf describes the Node-configuration block.
type nodeConf struct {
	Id string
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// discoveryConf describes the Discovery-configuration block.
type discoveryConf struct {
	Mode           string
	Broadcast      bool
	Port           uint16
	Interval       uint
	Interface      string
	Unicast        []string
	PeersFile      string  `toml:"peers-file"`
	PollIntervalMs uint    `toml:"poll-interval-ms"`
	Freshness      string
	MaxNeighbors   int     `toml:"max-neighbors"`
	NeighborTTL    string  `toml:"neighbor-ttl"`
	RateLimit      float64 `toml:"rate-limit"`
	RateBurst      int     `toml:"rate-burst"`
}

// serviceConf describes a Service-configuration block; one for each announced service.
type serviceConf struct {
	Type      string
	Port      uint16
	Latitude  float32
	Longitude float32
	Address   string
}

// contactConf describes the Contact-configuration block, selecting the contact sinks.
type contactConf struct {
	Backends        []string
	AapAddress      string `toml:"aap-address"`
	AapAgentId      string `toml:"aap-agent-id"`
	AapConfigEid    string `toml:"aap-config-eid"`
	DefaultDuration uint   `toml:"default-duration"`
}

// apiConf describes the HTTP API-configuration block.
type apiConf struct {
	Listen string
}

// storeConf describes the Store-configuration block. An empty path selects a volatile store.
type storeConf struct {
	Path string
}

// daemon bundles everything parsed from the configuration.
type daemon struct {
	own       beacon.Beacon
	discovery discovery.Config

	sink    *agent.MuxSink
	ws      *agent.WebSocketSink
	closers []io.Closer

	store     storage.NeighborStore
	apiListen string
}

// wsHandler is the WebSocketSink as a http.Handler, or nil without a websocket backend.
func (d *daemon) wsHandler() http.Handler {
	if d.ws == nil {
		return nil
	}
	return d.ws
}

// Close all sinks and the store.
func (d *daemon) Close() (err error) {
	for _, c := range d.closers {
		if cErr := c.Close(); cErr != nil {
			err = multierror.Append(err, cErr)
		}
	}
	return
}

// setupLogging as configured.
func setupLogging(conf logConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}
}

// parseService inspects a "service" serviceConf and returns a beacon.Service.
func parseService(conf serviceConf) (beacon.Service, error) {
	switch conf.Type {
	case "tcpclv4", "tcpcl":
		return beacon.TCPCLv4{Port: conf.Port}, nil
	case "tcpclv3":
		return beacon.TCPCLv3{Port: conf.Port}, nil
	case "mtcpcl", "mtcp":
		return beacon.MTCPCL{Port: conf.Port}, nil
	case "geo":
		return beacon.GeoLocation{Latitude: conf.Latitude, Longitude: conf.Longitude}, nil
	case "address":
		if conf.Address == "" {
			return nil, fmt.Errorf("service.address is empty")
		}
		return beacon.Address{Text: conf.Address}, nil
	default:
		return nil, fmt.Errorf("unknown service.type %q", conf.Type)
	}
}

// parseDiscovery converts the Discovery-configuration block into a discovery.Config.
func parseDiscovery(conf discoveryConf, contact contactConf) (dc discovery.Config, err error) {
	if dc.Mode, err = discovery.ParseIPMode(conf.Mode); err != nil {
		return
	}
	if dc.Freshness, err = discovery.ParseFreshnessMode(conf.Freshness); err != nil {
		return
	}

	dc.Broadcast = conf.Broadcast
	dc.Port = conf.Port
	if dc.Port == 0 {
		dc.Port = discovery.Port
	}

	dc.Interval = time.Duration(conf.Interval) * time.Second
	dc.Interface = conf.Interface
	dc.PeersFile = conf.PeersFile
	dc.PollInterval = time.Duration(conf.PollIntervalMs) * time.Millisecond
	dc.MaxNeighbors = conf.MaxNeighbors
	dc.RateLimit = conf.RateLimit
	dc.RateBurst = conf.RateBurst
	dc.DefaultDuration = time.Duration(contact.DefaultDuration) * time.Second

	if conf.NeighborTTL != "" {
		if dc.NeighborTTL, err = time.ParseDuration(conf.NeighborTTL); err != nil {
			return
		}
	}

	for _, peer := range conf.Unicast {
		addr, peerErr := discovery.ResolvePeer(peer)
		if peerErr != nil {
			err = peerErr
			return
		}
		dc.Unicast = append(dc.Unicast, addr)
	}

	return
}

// parseSinks creates the configured contact sinks, multiplexed by an agent.MuxSink.
func parseSinks(conf contactConf, d *daemon) error {
	d.sink = agent.NewMuxSink()

	backends := conf.Backends
	if len(backends) == 0 {
		backends = []string{"log"}
	}

	for _, backend := range backends {
		switch backend {
		case "log":
			d.sink.Register(agent.LogSink{})

		case "aap":
			aap, err := agent.NewAAPSink(conf.AapAddress, conf.AapAgentId, conf.AapConfigEid)
			if err != nil {
				return err
			}
			d.sink.Register(aap)
			d.closers = append(d.closers, aap)

		case "websocket":
			d.ws = agent.NewWebSocketSink()
			d.sink.Register(d.ws)

		default:
			return fmt.Errorf("unknown contact.backends entry %q", backend)
		}
	}

	return nil
}

// parseDaemon creates the daemon based on the given TOML configuration.
func parseDaemon(filename string) (d *daemon, err error) {
	var conf tomlConfig
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return
	}

	setupLogging(conf.Logging)

	if conf.Node.Id == "" {
		err = fmt.Errorf("node.id is empty")
		return
	}
	if conf.Contact.AapAgentId == "" {
		conf.Contact.AapAgentId = "ipnd"
	}

	d = &daemon{apiListen: conf.Api.Listen}

	if d.discovery, err = parseDiscovery(conf.Discovery, conf.Contact); err != nil {
		return nil, err
	}

	d.own = beacon.NewBeacon()
	d.own.NodeID = conf.Node.Id
	d.own.Period = d.discovery.Interval
	if d.own.Period == 0 {
		d.own.Period = discovery.DefaultInterval
	}

	for _, serviceConf := range conf.Service {
		service, serviceErr := parseService(serviceConf)
		if serviceErr != nil {
			return nil, serviceErr
		}
		d.own.Services = append(d.own.Services, service)
	}

	if err = parseSinks(conf.Contact, d); err != nil {
		return nil, err
	}

	if d.ws != nil && d.apiListen == "" {
		return nil, fmt.Errorf("contact backend websocket requires api.listen")
	}

	if conf.Store.Path == "" {
		d.store = storage.NewMemoryStore()
	} else if d.store, err = storage.NewStore(conf.Store.Path); err != nil {
		return nil, err
	}
	d.closers = append(d.closers, d.store)

	return
}
