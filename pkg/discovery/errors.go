// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import "fmt"

// SocketError is a failure of a socket operation, e.g., binding, joining a group, sending or receiving. During setup
// it is fatal; afterwards it is only logged.
type SocketError struct {
	Op   string
	Addr string
	Err  error
}

func (e *SocketError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("socket %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("socket %s %s failed: %v", e.Op, e.Addr, e.Err)
}

func (e *SocketError) Unwrap() error {
	return e.Err
}
