// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogSink is a ContactSink which only logs each Contact. It never fails.
type LogSink struct{}

// SubmitContact logs the Contact.
func (LogSink) SubmitContact(_ context.Context, c Contact) error {
	log.WithFields(log.Fields{
		"node":     c.NodeID,
		"cla":      c.CLAAddress,
		"start":    c.Start,
		"duration": c.Duration,
	}).Info("New contact")
	return nil
}
