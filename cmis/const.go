// Package cmis builds the single-device-address, banked memory map defined
// by CMIS 4.0 for QSFP-DD and OSFP modules, and implements the module and
// data-path state machines that react to control-register writes and
// sideband signal transitions (CMIS §6.3).
package cmis

// MaxLanes is the lane count of the largest form factor this layout
// supports (OSFP/QSFP-DD = 8 lanes).
const MaxLanes = 8

// Lower-page field offsets, per the governing spec (CMIS §6.3 / §8).
const (
	OffIdentifier      = 0
	OffModuleState     = 3  // bits 1-3
	OffFlagsSummary    = 2  // latched-flag summary this project adds to gate IntL
	OffTemp            = 14 // Module Monitors: Temperature, CMIS Table 8-8
	OffVcc             = 16 // Module Monitors: Voltage, CMIS Table 8-8
	OffTempVccFlags    = 18 // this project's addition: packed alarm/warning bits
	OffLowPwrRequestSW = 26 // bit 6
	OffTxDisable       = 86 // bit per lane, this project's addition
	OffRxLOS           = 9  // bit per lane, this project's addition
	OffTxFault         = 10 // bit per lane, this project's addition
	OffBankSelect      = 126
	OffPageSelect      = 127
)

// OffTempVccFlags bit assignments, packed the same way sff8636's equivalent
// byte is.
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

const (
	moduleStateMask  = 0x0E
	moduleStateShift = 1

	lowPwrRequestBit = 1 << 6
)

// Page 10h (data-path control) field offsets.
const (
	OffDataPathDeinit = 128 // bitmap, bit set = host requests lane deinit
)

// Page 11h (data-path status/monitors) field offsets. Per-lane bias/power
// monitors are this project's addition, laid out after the DPState bytes
// with room for MaxLanes lanes each.
const (
	OffLaneStatus    = 128               // one byte per lane, DPState value
	OffTxBiasMonitor = 136               // 2 bytes * lane
	OffTxPowerMonitor = OffTxBiasMonitor + 2*MaxLanes
	OffRxPowerMonitor = OffTxPowerMonitor + 2*MaxLanes

	// Per-lane alarm bitmaps (one bit per lane), this project's addition.
	OffTxBiasHighAlarm  = OffRxPowerMonitor + 2*MaxLanes
	OffTxBiasLowAlarm   = OffTxBiasHighAlarm + 1
	OffTxPowerHighAlarm = OffTxBiasLowAlarm + 1
	OffTxPowerLowAlarm  = OffTxPowerHighAlarm + 1
	OffRxPowerHighAlarm = OffTxPowerLowAlarm + 1
	OffRxPowerLowAlarm  = OffRxPowerHighAlarm + 1
)

// Upper page 00h (administrative: vendor identity) field offsets, laid out
// analogous to SFF-8636 page 00h since CMIS keeps the same "shifted A0h"
// convention for vendor fields.
const (
	OffVendorName00 = 129
	OffVendorOUI00  = 145
	OffVendorPN00   = 148
	OffVendorRev00  = 164
	OffVendorSN00   = 166
	OffDateCode00   = 182
	OffCCBase00     = 190
)

// Module identifier values reuse SFF-8024 codes where they overlap; CMIS
// modules typically report these plus higher values for QSFP-DD/OSFP not
// modeled here.
const (
	IdentifierQSFPDD = 0x18
	IdentifierOSFP   = 0x19
)
