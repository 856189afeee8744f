// Package monitor implements the monitoring engine described by the
// governing spec: on each Tick, live telemetry is encoded into a module's
// register map and the alarm/warning flag bytes are re-evaluated against
// the module's thresholds (re-read from the map for SFF-8472, held by the
// engine for SFF-8636 and CMIS). Telemetry is always written before
// flags are recomputed, so a reader that samples flags then value observes
// a pair that is at worst one tick stale, never inconsistent in the other
// direction.
package monitor

import (
	"math"

	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
	"github.com/xcvrsim/xcvrsim/sff8472"
)

// Telemetry is the semantic (physical-unit) readings for an SFP/SFP+
// module, which has exactly one optical channel.
type Telemetry struct {
	TempC    float64
	VccV     float64
	TxBiasMA float64
	TxPowerMW float64
	RxPowerMW float64
}

// SFF8472Engine drives the A2h diagnostic page of a single SFP module.
type SFF8472Engine struct {
	a2 *memmap.Map
}

// NewSFF8472Engine returns an engine writing into a2, which must have been
// built by sff8472.NewA2.
func NewSFF8472Engine(a2 *memmap.Map) *SFF8472Engine {
	return &SFF8472Engine{a2: a2}
}

// Tick writes t's encoded values into the A2h telemetry fields, then
// re-evaluates every alarm/warning flag against the thresholds currently
// stored in the map (which the host may have rewritten since the last
// tick).
func (e *SFF8472Engine) Tick(t Telemetry) {
	e.a2.ForceLower(sff8472.OffTemp, beI16(regfield.TempToRaw(t.TempC)))
	e.a2.ForceLower(sff8472.OffVcc, beU16(regfield.VoltageToRaw(t.VccV)))
	e.a2.ForceLower(sff8472.OffTxBias, beU16(regfield.BiasToRaw(t.TxBiasMA)))
	e.a2.ForceLower(sff8472.OffTxPower, beU16(regfield.PowerToRaw(t.TxPowerMW)))
	e.a2.ForceLower(sff8472.OffRxPower, beU16(regfield.PowerToRaw(t.RxPowerMW)))

	lower := e.a2.LowerBytes()
	readI16 := func(off int) float64 {
		return regfield.RawToTemp(regfield.I16(lower[sff8472.OffThresholds+off : sff8472.OffThresholds+off+2]))
	}
	readU16 := func(off int, scale func(uint16) float64) float64 {
		return scale(regfield.U16(lower[sff8472.OffThresholds+off : sff8472.OffThresholds+off+2]))
	}

	var alarm1, alarm2, warn1, warn2 byte

	if t.TempC > readI16(sff8472.ThTempHighAlarm) {
		alarm1 |= sff8472.FlagTempHigh
	}
	if t.TempC < readI16(sff8472.ThTempLowAlarm) {
		alarm1 |= sff8472.FlagTempLow
	}
	if t.TempC > readI16(sff8472.ThTempHighWarn) {
		warn1 |= sff8472.FlagTempHigh
	}
	if t.TempC < readI16(sff8472.ThTempLowWarn) {
		warn1 |= sff8472.FlagTempLow
	}

	if t.VccV > readU16(sff8472.ThVccHighAlarm, regfield.RawToVoltage) {
		alarm1 |= sff8472.FlagVccHigh
	}
	if t.VccV < readU16(sff8472.ThVccLowAlarm, regfield.RawToVoltage) {
		alarm1 |= sff8472.FlagVccLow
	}
	if t.VccV > readU16(sff8472.ThVccHighWarn, regfield.RawToVoltage) {
		warn1 |= sff8472.FlagVccHigh
	}
	if t.VccV < readU16(sff8472.ThVccLowWarn, regfield.RawToVoltage) {
		warn1 |= sff8472.FlagVccLow
	}

	if t.TxBiasMA > readU16(sff8472.ThBiasHighAlarm, regfield.RawToBias) {
		alarm1 |= sff8472.FlagTxBiasHigh
	}
	if t.TxBiasMA < readU16(sff8472.ThBiasLowAlarm, regfield.RawToBias) {
		alarm1 |= sff8472.FlagTxBiasLow
	}
	if t.TxBiasMA > readU16(sff8472.ThBiasHighWarn, regfield.RawToBias) {
		warn1 |= sff8472.FlagTxBiasHigh
	}
	if t.TxBiasMA < readU16(sff8472.ThBiasLowWarn, regfield.RawToBias) {
		warn1 |= sff8472.FlagTxBiasLow
	}

	if t.TxPowerMW > readU16(sff8472.ThTxPowerHighAlarm, regfield.RawToPower) {
		alarm1 |= sff8472.FlagTxPowerHigh
	}
	if t.TxPowerMW < readU16(sff8472.ThTxPowerLowAlarm, regfield.RawToPower) {
		alarm1 |= sff8472.FlagTxPowerLow
	}
	if t.TxPowerMW > readU16(sff8472.ThTxPowerHighWarn, regfield.RawToPower) {
		warn1 |= sff8472.FlagTxPowerHigh
	}
	if t.TxPowerMW < readU16(sff8472.ThTxPowerLowWarn, regfield.RawToPower) {
		warn1 |= sff8472.FlagTxPowerLow
	}

	if t.RxPowerMW > readU16(sff8472.ThRxPowerHighAlarm, regfield.RawToPower) {
		alarm2 |= sff8472.FlagRxPowerHigh
	}
	if t.RxPowerMW < readU16(sff8472.ThRxPowerLowAlarm, regfield.RawToPower) {
		alarm2 |= sff8472.FlagRxPowerLow
	}
	if t.RxPowerMW > readU16(sff8472.ThRxPowerHighWarn, regfield.RawToPower) {
		warn2 |= sff8472.FlagRxPowerHigh
	}
	if t.RxPowerMW < readU16(sff8472.ThRxPowerLowWarn, regfield.RawToPower) {
		warn2 |= sff8472.FlagRxPowerLow
	}

	e.a2.ForceLower(sff8472.OffAlarmFlags1, []byte{alarm1})
	e.a2.ForceLower(sff8472.OffAlarmFlags2, []byte{alarm2})
	e.a2.ForceLower(sff8472.OffWarnFlags1, []byte{warn1})
	e.a2.ForceLower(sff8472.OffWarnFlags2, []byte{warn2})
}

func beU16(v uint16) []byte {
	b := make([]byte, 2)
	regfield.PutU16(b, v)
	return b
}

func beI16(v int16) []byte {
	b := make([]byte, 2)
	regfield.PutI16(b, v)
	return b
}

// ToDBm converts a milliwatt optical power reading to dBm for human-
// readable display (the registers themselves stay linear mW, per the
// standard; this is purely a presentation helper for inspection tooling).
func ToDBm(milliwatts float64) float64 {
	if milliwatts <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(milliwatts)
}
