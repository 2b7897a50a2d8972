// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides a HTTP interface to inspect a running discovery daemon.
//
// The following endpoints are available:
//
//	GET /beacon            the own beacon
//	GET /neighbors         all known neighbors
//	GET /neighbors/{key}   a single neighbor, identified by its path escaped node ID or source address
//	GET /metrics           Prometheus metrics
//	    /ws                WebSocket contact stream, if configured
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-ipnd/pkg/beacon"
	"github.com/dtn7/dtn7-ipnd/pkg/storage"
)

// API serves the HTTP endpoints. It is both a http.Handler and a suture.Service.
type API struct {
	router *mux.Router
	listen string

	own   beacon.Beacon
	store storage.NeighborStore
}

// NewAPI for the own Beacon and a NeighborStore. If ws is not nil, it is bound to /ws, e.g., an agent.WebSocketSink.
// The listen address is only used by Serve.
func NewAPI(listen string, own beacon.Beacon, store storage.NeighborStore, ws http.Handler) *API {
	api := &API{
		router: mux.NewRouter().UseEncodedPath(),
		listen: listen,
		own:    own,
		store:  store,
	}

	api.router.HandleFunc("/beacon", api.handleBeacon).Methods(http.MethodGet)
	api.router.HandleFunc("/neighbors", api.handleNeighbors).Methods(http.MethodGet)
	api.router.HandleFunc("/neighbors/{key}", api.handleNeighbor).Methods(http.MethodGet)
	api.router.Handle("/metrics", promhttp.Handler())

	if ws != nil {
		api.router.Handle("/ws", ws)
	}

	return api
}

// ServeHTTP dispatches to the registered endpoints.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

// Serve a HTTP server on the listen address until the context is canceled.
func (api *API) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              api.listen,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- server.ListenAndServe() }()

	log.WithField("listen", api.listen).Info("Started HTTP API")

	select {
	case err := <-errs:
		return fmt.Errorf("HTTP API on %s failed: %w", api.listen, err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (api *API) String() string {
	return fmt.Sprintf("API(%s)", api.listen)
}

// beaconResponse is the JSON representation of the own Beacon.
type beaconResponse struct {
	Version  uint8    `json:"version"`
	NodeID   string   `json:"node_id"`
	Services []string `json:"services"`
	Period   string   `json:"period,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (api *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write HTTP API response")
	}
}

func (api *API) handleBeacon(w http.ResponseWriter, _ *http.Request) {
	resp := beaconResponse{
		Version:  api.own.Version,
		NodeID:   api.own.NodeID,
		Services: make([]string, 0, len(api.own.Services)),
	}
	for _, service := range api.own.Services {
		resp.Services = append(resp.Services, fmt.Sprint(service))
	}
	if api.own.HasPeriod() {
		resp.Period = api.own.Period.String()
	}

	api.writeJSON(w, http.StatusOK, resp)
}

func (api *API) handleNeighbors(w http.ResponseWriter, _ *http.Request) {
	recs, err := api.store.Neighbors()
	if err != nil {
		log.WithError(err).Warn("Failed to list neighbors")
		api.writeJSON(w, http.StatusInternalServerError, errorResponse{err.Error()})
		return
	}

	api.writeJSON(w, http.StatusOK, recs)
}

func (api *API) handleNeighbor(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(mux.Vars(r)["key"])
	if err != nil {
		api.writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	rec, err := api.store.Neighbor(key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		api.writeJSON(w, http.StatusNotFound, errorResponse{err.Error()})

	case err != nil:
		log.WithError(err).WithField("neighbor", key).Warn("Failed to fetch neighbor")
		api.writeJSON(w, http.StatusInternalServerError, errorResponse{err.Error()})

	default:
		api.writeJSON(w, http.StatusOK, rec)
	}
}
