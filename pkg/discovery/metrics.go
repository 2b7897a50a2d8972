// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricBeaconsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "beacons_sent_total",
		Help:      "Total number of beacons sent, counted per destination.",
	})
	metricSendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "send_errors_total",
		Help:      "Total number of failed beacon sends, counted per destination.",
	})
	metricReceiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "receive_errors_total",
		Help:      "Total number of failed socket reads, excluding timeouts.",
	})
	metricBeaconsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "beacons_received_total",
		Help:      "Total number of received datagrams, per outcome.",
	}, []string{"outcome"})
	metricNeighbors = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "neighbors",
		Help:      "Number of source addresses in the neighbor table.",
	})
	metricContacts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "contacts_submitted_total",
		Help:      "Total number of contacts submitted to the contact sink.",
	})
	metricContactErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ipnd",
		Subsystem: "discovery",
		Name:      "contact_errors_total",
		Help:      "Total number of contacts rejected by the contact sink.",
	})
)

func init() {
	// Present all outcomes, even when zero.
	for o := OutcomeAccepted; o <= OutcomeRateLimited; o++ {
		metricBeaconsReceived.WithLabelValues(o.String())
	}
}
