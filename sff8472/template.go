package sff8472

import (
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
)

// reservedUpper returns a single all-reserved upper page. Neither A0h nor
// A2h has a paging concept; this placeholder lets the generic Map
// machinery, which always resolves through a selected page, return 0x00 for
// offsets 128..255 the way the real EEPROM parts do.
func reservedUpper() ([memmap.PageSize]byte, [memmap.PageSize]memmap.Access) {
	var data [memmap.PageSize]byte
	var access [memmap.PageSize]memmap.Access
	for i := range access {
		access[i] = memmap.Reserved
	}
	return data, access
}

// NewA0 builds the A0h memory map (identifier, vendor info, transceiver
// codes) from cfg.
func NewA0(cfg Config) *memmap.Map {
	m := memmap.New(-1, -1, memmap.DropSilently)

	var lower [memmap.LowerSize]byte
	var a [memmap.LowerSize]memmap.Access
	for i := range a {
		a[i] = memmap.Reserved
	}

	lower[OffIdentifier] = cfg.Identifier
	a[OffIdentifier] = memmap.RO
	lower[OffExtIdentifier] = cfg.ExtIdentifier
	a[OffExtIdentifier] = memmap.RO
	lower[OffConnector] = cfg.Connector
	a[OffConnector] = memmap.RO
	copy(lower[OffCompliance3_10:OffCompliance3_10+8], cfg.Compliance3_10[:])
	for i := 0; i < 8; i++ {
		a[OffCompliance3_10+i] = memmap.RO
	}
	lower[OffEncoding] = cfg.Encoding
	a[OffEncoding] = memmap.RO
	lower[OffBitRate] = cfg.NominalBitRate
	a[OffBitRate] = memmap.RO
	lower[OffRateID] = cfg.RateID
	a[OffRateID] = memmap.RO

	regfield.PutASCII(lower[OffVendorName:OffVendorName+16], cfg.VendorName)
	for i := 0; i < 16; i++ {
		a[OffVendorName+i] = memmap.RO
	}
	copy(lower[OffVendorOUI:OffVendorOUI+3], cfg.VendorOUI[:])
	for i := 0; i < 3; i++ {
		a[OffVendorOUI+i] = memmap.RO
	}
	regfield.PutASCII(lower[OffVendorPN:OffVendorPN+16], cfg.VendorPN)
	for i := 0; i < 16; i++ {
		a[OffVendorPN+i] = memmap.RO
	}
	regfield.PutASCII(lower[OffVendorRev:OffVendorRev+4], cfg.VendorRev)
	for i := 0; i < 4; i++ {
		a[OffVendorRev+i] = memmap.RO
	}
	regfield.PutU16(lower[OffWavelength:OffWavelength+2], cfg.Wavelength)
	a[OffWavelength] = memmap.RO
	a[OffWavelength+1] = memmap.RO

	a[OffCCBase] = memmap.RO

	regfield.PutASCII(lower[OffVendorSN:OffVendorSN+16], cfg.VendorSN)
	for i := 0; i < 16; i++ {
		a[OffVendorSN+i] = memmap.RO
	}
	regfield.PutASCII(lower[OffDateCode:OffDateCode+8], cfg.DateCode)
	for i := 0; i < 8; i++ {
		a[OffDateCode+i] = memmap.RO
	}

	lower[OffDiagMonType] = cfg.DiagMonitoringType
	a[OffDiagMonType] = memmap.RO
	lower[OffEnhancedOpts] = cfg.EnhancedOptions
	a[OffEnhancedOpts] = memmap.RO
	lower[OffSFF8472Compliance] = cfg.ComplianceRev
	a[OffSFF8472Compliance] = memmap.RO

	a[OffCCExt] = memmap.RO

	lower[OffCCBase] = regfield.Checksum8(lower[0:OffCCBase])
	lower[OffCCExt] = regfield.Checksum8(lower[OffOptions:OffCCExt])

	m.InstallLower(lower, a)
	data, access := reservedUpper()
	m.InstallPage(0, 0, data, access)
	_ = m.SelectPage(0)
	return m
}

// NewA2 builds the A2h memory map (thresholds, calibration, live
// diagnostics, status/alarm flags) from th. The live telemetry fields start
// zeroed; call the monitoring engine's Tick to populate them.
func NewA2(th Thresholds) *memmap.Map {
	m := memmap.New(-1, -1, memmap.DropSilently)

	var lower [memmap.LowerSize]byte
	var a [memmap.LowerSize]memmap.Access
	for i := range a {
		a[i] = memmap.Reserved
	}

	writeU16Th := func(off int, raw uint16) {
		regfield.PutU16(lower[OffThresholds+off:OffThresholds+off+2], raw)
		a[OffThresholds+off] = memmap.RW
		a[OffThresholds+off+1] = memmap.RW
	}
	writeI16Th := func(off int, raw int16) {
		regfield.PutI16(lower[OffThresholds+off:OffThresholds+off+2], raw)
		a[OffThresholds+off] = memmap.RW
		a[OffThresholds+off+1] = memmap.RW
	}

	writeI16Th(ThTempHighAlarm, regfield.TempToRaw(th.TempHighAlarm))
	writeI16Th(ThTempLowAlarm, regfield.TempToRaw(th.TempLowAlarm))
	writeI16Th(ThTempHighWarn, regfield.TempToRaw(th.TempHighWarn))
	writeI16Th(ThTempLowWarn, regfield.TempToRaw(th.TempLowWarn))

	writeU16Th(ThVccHighAlarm, regfield.VoltageToRaw(th.VccHighAlarm))
	writeU16Th(ThVccLowAlarm, regfield.VoltageToRaw(th.VccLowAlarm))
	writeU16Th(ThVccHighWarn, regfield.VoltageToRaw(th.VccHighWarn))
	writeU16Th(ThVccLowWarn, regfield.VoltageToRaw(th.VccLowWarn))

	writeU16Th(ThBiasHighAlarm, regfield.BiasToRaw(th.BiasHighAlarm))
	writeU16Th(ThBiasLowAlarm, regfield.BiasToRaw(th.BiasLowAlarm))
	writeU16Th(ThBiasHighWarn, regfield.BiasToRaw(th.BiasHighWarn))
	writeU16Th(ThBiasLowWarn, regfield.BiasToRaw(th.BiasLowWarn))

	writeU16Th(ThTxPowerHighAlarm, regfield.PowerToRaw(th.TxPowerHighAlarm))
	writeU16Th(ThTxPowerLowAlarm, regfield.PowerToRaw(th.TxPowerLowAlarm))
	writeU16Th(ThTxPowerHighWarn, regfield.PowerToRaw(th.TxPowerHighWarn))
	writeU16Th(ThTxPowerLowWarn, regfield.PowerToRaw(th.TxPowerLowWarn))

	writeU16Th(ThRxPowerHighAlarm, regfield.PowerToRaw(th.RxPowerHighAlarm))
	writeU16Th(ThRxPowerLowAlarm, regfield.PowerToRaw(th.RxPowerLowAlarm))
	writeU16Th(ThRxPowerHighWarn, regfield.PowerToRaw(th.RxPowerHighWarn))
	writeU16Th(ThRxPowerLowWarn, regfield.PowerToRaw(th.RxPowerLowWarn))

	// Calibration constants (56..95): the module declares itself internally
	// calibrated, so the monitoring engine writes already-calibrated raw
	// values directly and this block stays fixed, read-only content.
	for i := OffCalibration; i < OffTemp; i++ {
		a[i] = memmap.RO
	}

	a[OffTemp] = memmap.RO
	a[OffTemp+1] = memmap.RO
	a[OffVcc] = memmap.RO
	a[OffVcc+1] = memmap.RO
	a[OffTxBias] = memmap.RO
	a[OffTxBias+1] = memmap.RO
	a[OffTxPower] = memmap.RO
	a[OffTxPower+1] = memmap.RO
	a[OffRxPower] = memmap.RO
	a[OffRxPower+1] = memmap.RO

	a[OffA2Status] = memmap.RO
	a[OffAlarmFlags1] = memmap.RO
	a[OffAlarmFlags2] = memmap.RO
	a[OffWarnFlags1] = memmap.RO
	a[OffWarnFlags2] = memmap.RO

	m.InstallLower(lower, a)
	data, access := reservedUpper()
	m.InstallPage(0, 0, data, access)
	_ = m.SelectPage(0)
	return m
}

// RefreshChecksums recomputes CC_BASE and CC_EXT over the current A0h lower
// page and writes them back via ForceLower (CC_BASE/CC_EXT are RO to the
// host but the template itself must keep them live across field edits).
func RefreshChecksums(a0 *memmap.Map) {
	lower := a0.LowerBytes()
	a0.ForceLower(OffCCBase, []byte{regfield.Checksum8(lower[0:OffCCBase])})
	a0.ForceLower(OffCCExt, []byte{regfield.Checksum8(lower[OffOptions:OffCCExt])})
}
