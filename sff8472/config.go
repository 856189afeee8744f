package sff8472

// Config is the immutable-at-attach configuration for an SFP/SFP+ module,
// per SFF-8472 §5 (A0h serial ID fields).
type Config struct {
	Identifier     byte // IdentifierSFP, etc.
	ExtIdentifier  byte
	Connector      byte
	Compliance3_10 [8]byte // transceiver compliance codes, A0h bytes 3-10
	Encoding       byte
	NominalBitRate byte // units of 100 MBd
	RateID         byte

	VendorName   string // up to 16 ASCII chars
	VendorOUI    [3]byte
	VendorPN     string // up to 16 ASCII chars
	VendorRev    string // up to 4 ASCII chars
	Wavelength   uint16 // nm
	VendorSN     string // up to 16 ASCII chars
	DateCode     string // YYMMDDLL, up to 8 chars

	DiagMonitoringType byte
	EnhancedOptions    byte
	ComplianceRev      byte // SFF-8472 revision the module claims, OffSFF8472Compliance
}

// Thresholds carries the alarm/warning threshold set written into A2h bytes
// 0..55. Units match the corresponding live telemetry field.
type Thresholds struct {
	TempHighAlarm, TempLowAlarm float64 // degrees C
	TempHighWarn, TempLowWarn   float64

	VccHighAlarm, VccLowAlarm float64 // volts
	VccHighWarn, VccLowWarn   float64

	BiasHighAlarm, BiasLowAlarm float64 // mA
	BiasHighWarn, BiasLowWarn   float64

	TxPowerHighAlarm, TxPowerLowAlarm float64 // mW
	TxPowerHighWarn, TxPowerLowWarn   float64

	RxPowerHighAlarm, RxPowerLowAlarm float64 // mW
	RxPowerHighWarn, RxPowerLowWarn   float64
}

// DefaultThresholds returns a permissive threshold set (wide enough that no
// alarm fires under normal simulated conditions), suitable as a starting
// point for tests that only care about one threshold crossing.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHighAlarm: 95, TempLowAlarm: -45,
		TempHighWarn: 90, TempLowWarn: -40,
		VccHighAlarm: 3.6, VccLowAlarm: 2.9,
		VccHighWarn: 3.5, VccLowWarn: 3.0,
		BiasHighAlarm: 120, BiasLowAlarm: 2,
		BiasHighWarn: 100, BiasLowWarn: 4,
		TxPowerHighAlarm: 6.3, TxPowerLowAlarm: 0.01,
		TxPowerHighWarn: 5.0, TxPowerLowWarn: 0.02,
		RxPowerHighAlarm: 3.2, RxPowerLowAlarm: 0.001,
		RxPowerHighWarn: 2.5, RxPowerLowWarn: 0.002,
	}
}
