// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

// Flags of a Beacon, indicating which optional fields are present. Bits 3 to 7 are reserved;
// they are never set by MarshalCbor and ignored by UnmarshalCbor.
const (
	// FlagNodeID is set if the sender's node ID is present. It should always be set.
	FlagNodeID uint8 = 0b0000_0001

	// FlagServices is set if the service block is present.
	FlagServices uint8 = 0b0000_0010

	// FlagPeriod is set if the beacon period is present.
	FlagPeriod uint8 = 0b0000_0100
)
