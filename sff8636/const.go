// Package sff8636 builds the single-device-address, paged memory map
// defined by SFF-8636 rev 2.10a for QSFP/QSFP+ modules: a fixed lower page
// carrying identifier, status, interrupt flags and all telemetry, plus
// selectable 128-byte upper pages for serial ID (00h) and channel
// thresholds/controls (03h). Upper pages 01h and 02h are not modeled.
package sff8636

import "github.com/xcvrsim/xcvrsim/sff8472"

// MaxChannels is the channel count of the largest form factor this layout
// supports (QSFP = 4 lanes; OSFP is handled by package cmis, which defines
// its own offsets).
const MaxChannels = 4

// Lower-page field offsets.
const (
	OffIdentifier = 0
	OffStatus     = 1 // 2 bytes: 1-2
	OffIntFlags   = 3 // 19 bytes: 3-21
	OffRxLOS      = 3 // bit per lane, within the interrupt-flags span
	OffTxFault    = 4 // bit per lane, within the interrupt-flags span
	OffTemp       = 22
	OffVcc        = 26
	OffRxPower    = 34 // 2 bytes * MaxChannels
	OffTxBias     = 50 // 2 bytes * MaxChannels
	OffTxPower    = 66 // 2 bytes * MaxChannels
	OffControl    = 86 // 14 bytes: 86-99, includes TxDisable at 86
	OffTxDisable  = 86
	OffPageSelect = 127

	// Module-level temperature/Vcc alarm+warning flags, packed into one
	// byte within the interrupt-flags span (offsets 3-21). OffRxLOS/
	// OffTxFault already occupy offsets 3-4 for per-lane status, so the
	// alarm/warning bytes this project computes are placed just after them.
	OffTempVccFlags = 9
	// Per-channel alarm bitmaps (one bit per lane, channel 0 at bit 0),
	// also within the interrupt-flags span.
	OffRxPowerHighAlarm = 10
	OffRxPowerLowAlarm  = 11
	OffTxBiasHighAlarm  = 12
	OffTxBiasLowAlarm   = 13
	OffTxPowerHighAlarm = 14
	OffTxPowerLowAlarm  = 15
)

// OffTempVccFlags bit assignments.
const (
	FlagTempHighAlarm = 1 << 7
	FlagTempLowAlarm  = 1 << 6
	FlagTempHighWarn  = 1 << 5
	FlagTempLowWarn   = 1 << 4
	FlagVccHighAlarm  = 1 << 3
	FlagVccLowAlarm   = 1 << 2
	FlagVccHighWarn   = 1 << 1
	FlagVccLowWarn    = 1 << 0
)

// Status byte bits, lower page offset 1.
const (
	StatusDataNotReady = 1 << 0
	StatusFlatMem      = 1 << 2
)

// Upper Page 00h (serial ID) field offsets, shifted +128 relative to
// SFF-8472 A0h per the reference decoder in the surveyed corpus, except
// that the vendor revision is 2 bytes here and the wavelength sits at
// 186-187.
const (
	OffIdentifier00 = 128
	OffConnector00  = 130
	OffCompliance00 = 131 // 8 bytes: 131-138
	OffVendorName00 = 148 // 16 bytes
	OffVendorOUI00  = 165 // 3 bytes
	OffVendorPN00   = 168 // 16 bytes
	OffVendorRev00  = 184 // 2 bytes
	OffWavelength00 = 186 // 2 bytes
	OffCCBase00     = 191
	OffVendorSN00   = 196 // 16 bytes
	OffDateCode00   = 212 // 8 bytes
	OffCCExt00      = 223
)

// Identifier values reuse sff8472's SFF-8024 table.
const (
	IdentifierQSFP     = sff8472.IdentifierQSFP
	IdentifierQSFPPlus = sff8472.IdentifierQSFPPlus
	IdentifierQSFP28   = sff8472.IdentifierQSFP28
)
