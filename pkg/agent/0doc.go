// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package agent forwards discovered contacts to the routing agent of a DTN node.
//
// The main interface is the ContactSink, which only requires a single SubmitContact function. A Contact describes a
// neighbor's node ID, the convergence layer address to reach it and a validity window. Due to this simplicity, a
// ContactSink can be implemented in various forms. This package includes a LogSink, an AAPSink speaking ud3tn's
// Application Agent Protocol, a WebSocketSink streaming contacts to connected clients and a MuxSink to combine them.
package agent
