// Package sff8472 builds the A0h (serial ID) and A2h (diagnostic monitoring)
// register templates defined by SFF-8472 rev 12.4, and refreshes the A0h
// checksums (RefreshChecksums) that keep the A0h template standards-
// compliant as its fields are edited. The A2h status and alarm/warning
// bytes are defined here but written by the monitor and module packages.
package sff8472

// Identifier byte values (A0h offset 0), per SFF-8024 Table 4-1 as
// referenced by SFF-8472 §5.
const (
	IdentifierUnknown       = 0x00
	IdentifierGBIC          = 0x01
	IdentifierSoldered      = 0x02
	IdentifierSFP           = 0x03
	Identifier300PinXBI     = 0x04
	IdentifierXENPAK        = 0x05
	IdentifierXFP           = 0x06
	IdentifierXFF           = 0x07
	IdentifierXFPE          = 0x08
	IdentifierXPAK          = 0x09
	IdentifierX2            = 0x0A
	IdentifierQSFP          = 0x0C
	IdentifierQSFPPlus      = 0x0D
	IdentifierQSFP28        = 0x11
)

// Connector type byte values (A0h offset 2).
const (
	ConnectorUnknown        = 0x00
	ConnectorSC             = 0x01
	ConnectorFCStyle1       = 0x02
	ConnectorFCStyle2       = 0x03
	ConnectorBNCTNC         = 0x04
	ConnectorFCCoax         = 0x05
	ConnectorFiberJack      = 0x06
	ConnectorLC             = 0x07
	ConnectorMTRJ           = 0x08
	ConnectorMU             = 0x09
	ConnectorSG             = 0x0A
	ConnectorOpticalPigtail = 0x0B
	ConnectorMPO1x12        = 0x0C
	ConnectorMPO2x16        = 0x0D
	ConnectorHSSDCII        = 0x20
	ConnectorCopperPigtail  = 0x21
	ConnectorRJ45           = 0x22
	ConnectorNoSeparable    = 0x23
	ConnectorMXC2x16        = 0x24
)

// Encoding byte values (A0h offset 11).
const (
	EncodingUnspecified    = 0x00
	Encoding8B10B          = 0x01
	Encoding4B5B           = 0x02
	EncodingNRZ            = 0x03
	EncodingManchester     = 0x04
	EncodingSONETScrambled = 0x05
	Encoding64B66B         = 0x06
)

// Transceiver compliance code bits, A0h offset 3 (10G Ethernet/Infiniband).
const (
	Code10GBaseER = 1 << 7
	Code10GBaseLRM = 1 << 6
	Code10GBaseLR  = 1 << 5
	Code10GBaseSR  = 1 << 4
)

// Transceiver compliance code bits, A0h offset 6 (Gigabit Ethernet).
const (
	Code1000BaseT  = 1 << 3
	Code1000BaseCX = 1 << 2
	Code1000BaseLX = 1 << 1
	Code1000BaseSX = 1 << 0
)

// Diagnostic Monitoring Type bits, A0h offset 92.
const (
	DiagImplemented       = 1 << 6
	DiagInternallyCal     = 1 << 5
	DiagExternallyCal     = 1 << 4
	DiagRxPowerAverage    = 1 << 3
	DiagAddressChangeReq  = 1 << 2
)

// Status/control bits, A2h offset 110, per SFF-8472 Table 9-11.
const (
	StatusTxDisableState = 1 << 7
	StatusSoftTxDisable  = 1 << 6
	StatusRS1State       = 1 << 5
	StatusRateSelect     = 1 << 4
	StatusSoftRateSelect = 1 << 3
	StatusTxFault        = 1 << 2
	StatusRxLOS          = 1 << 1
	StatusDataNotReady   = 1 << 0
)

// Alarm/warning flag bits, shared layout for A2h offsets 112/116 (the
// "first" flag byte of each pair) and 113/117 (the "second" flag byte).
const (
	FlagTempHigh    = 1 << 7
	FlagTempLow     = 1 << 6
	FlagVccHigh     = 1 << 5
	FlagVccLow      = 1 << 4
	FlagTxBiasHigh  = 1 << 3
	FlagTxBiasLow   = 1 << 2
	FlagTxPowerHigh = 1 << 1
	FlagTxPowerLow  = 1 << 0

	FlagRxPowerHigh = 1 << 7
	FlagRxPowerLow  = 1 << 6
)

// A0h field offsets.
const (
	OffIdentifier    = 0
	OffExtIdentifier = 1
	OffConnector     = 2
	OffCompliance3_10 = 3
	OffEncoding      = 11
	OffBitRate       = 12
	OffRateID        = 13
	OffVendorName    = 20
	OffVendorOUI     = 37
	OffVendorPN      = 40
	OffVendorRev     = 56
	OffWavelength    = 60
	OffCCBase        = 63
	OffOptions       = 64
	OffMaxBitRateMargin = 66
	OffMinBitRateMargin = 67
	OffVendorSN      = 68
	OffDateCode      = 84
	OffDiagMonType   = 92
	OffEnhancedOpts  = 93
	OffSFF8472Compliance = 94
	OffCCExt         = 95
)

// A2h field offsets.
const (
	OffThresholds   = 0  // 56 bytes of alarm/warning thresholds
	OffCalibration  = 56 // 40 bytes of calibration constants
	OffTemp         = 96
	OffVcc          = 98
	OffTxBias       = 100
	OffTxPower      = 102
	OffRxPower      = 104
	OffA2Status     = 110
	OffAlarmFlags1  = 112
	OffAlarmFlags2  = 113
	OffWarnFlags1   = 116
	OffWarnFlags2   = 117
)

// Threshold field offsets within the A2h threshold block (relative to
// OffThresholds), each a 2-byte register in the same units as the
// corresponding live telemetry field.
const (
	ThTempHighAlarm = 0
	ThTempLowAlarm  = 2
	ThTempHighWarn  = 4
	ThTempLowWarn   = 6
	ThVccHighAlarm  = 8
	ThVccLowAlarm   = 10
	ThVccHighWarn   = 12
	ThVccLowWarn    = 14
	ThBiasHighAlarm = 16
	ThBiasLowAlarm  = 18
	ThBiasHighWarn  = 20
	ThBiasLowWarn   = 22
	ThTxPowerHighAlarm = 24
	ThTxPowerLowAlarm  = 26
	ThTxPowerHighWarn  = 28
	ThTxPowerLowWarn   = 30
	ThRxPowerHighAlarm = 32
	ThRxPowerLowAlarm  = 34
	ThRxPowerHighWarn  = 36
	ThRxPowerLowWarn   = 38
)
