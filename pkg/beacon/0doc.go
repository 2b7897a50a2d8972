// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package beacon implements IP Neighbor Discovery (IPND) beacons of version 8 and their CBOR
// representation.
//
// A Beacon is encoded as a CBOR array. The first three elements, version, flags and sequence
// number, are always present. The flags byte selects which of the optional fields follow: the
// node ID, the service block and the beacon period. Services are 2-tuples of a tag and a
// tag-dependent payload. Services with an unknown tag are kept as Unknown, carrying their raw
// CBOR payload, so that they survive a decode-encode cycle unchanged.
package beacon
