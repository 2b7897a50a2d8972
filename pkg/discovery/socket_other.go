// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !unix

package discovery

import "syscall"

// This file implements the socket setup for operating systems without unix socket options. The broadcast mode might
// not work there.

// listenControl does not set any socket options.
func listenControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
