// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// MuxSink mimics a ContactSink to be used as a multiplexer for different ContactSinks.
type MuxSink struct {
	sync.Mutex

	children []ContactSink
}

// NewMuxSink creates a new MuxSink for the given ContactSinks.
func NewMuxSink(sinks ...ContactSink) *MuxSink {
	return &MuxSink{children: sinks}
}

// Register a new ContactSink for this multiplexer.
func (mux *MuxSink) Register(sink ContactSink) {
	mux.Lock()
	defer mux.Unlock()

	mux.children = append(mux.children, sink)
}

// Unregister a previously registered ContactSink.
func (mux *MuxSink) Unregister(sink ContactSink) {
	mux.Lock()
	defer mux.Unlock()

	for i, child := range mux.children {
		if child == sink {
			mux.children = append(mux.children[:i], mux.children[i+1:]...)
			break
		}
	}
}

// SubmitContact to each registered ContactSink. Every child is tried, even if a previous one failed; all errors
// are combined.
func (mux *MuxSink) SubmitContact(ctx context.Context, c Contact) (err error) {
	mux.Lock()
	children := make([]ContactSink, len(mux.children))
	copy(children, mux.children)
	mux.Unlock()

	for _, child := range children {
		if childErr := child.SubmitContact(ctx, c); childErr != nil {
			err = multierror.Append(err, childErr)
		}
	}
	return
}

// Len returns the amount of registered ContactSinks.
func (mux *MuxSink) Len() int {
	mux.Lock()
	defer mux.Unlock()

	return len(mux.children)
}
