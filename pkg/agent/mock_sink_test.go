// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"sync"
)

// mockSink is a trivial implementation of a ContactSink, only used for testing.
type mockSink struct {
	sync.Mutex

	err   error
	queue []Contact
}

// newMockSink creates a mockSink, failing each submission with err if not nil.
func newMockSink(err error) *mockSink {
	return &mockSink{err: err}
}

func (m *mockSink) SubmitContact(_ context.Context, c Contact) error {
	m.Lock()
	defer m.Unlock()

	m.queue = append(m.queue, c)
	return m.err
}

// inbox returns all received contacts and cleans the internal queue.
func (m *mockSink) inbox() (contacts []Contact) {
	m.Lock()
	defer m.Unlock()

	contacts = m.queue
	m.queue = nil
	return
}
