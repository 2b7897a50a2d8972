// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build unix

package discovery

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl is the net.ListenConfig's Control function. SO_REUSEADDR allows multiple discovery sockets on the
// same port, e.g., next to another IPND implementation; SO_BROADCAST is required for the broadcast mode.
func listenControl(_, _ string, rawConn syscall.RawConn) error {
	opts := []int{unix.SO_REUSEADDR, unix.SO_BROADCAST}

	var sockErr error
	err := rawConn.Control(func(fd uintptr) {
		for _, opt := range opts {
			if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt, 1); sockErr != nil {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
