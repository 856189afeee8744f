package monitor

import (
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
	"github.com/xcvrsim/xcvrsim/sff8636"
)

// ChannelTelemetry is the semantic reading for one optical lane.
type ChannelTelemetry struct {
	TxBiasMA  float64
	TxPowerMW float64
	RxPowerMW float64
}

// SFF8636Telemetry is the full set of readings for a QSFP module.
type SFF8636Telemetry struct {
	TempC    float64
	VccV     float64
	Channels []ChannelTelemetry
}

// SFF8636Engine drives the lower-page telemetry fields of a QSFP module.
// SFF-8636 keeps thresholds on upper page 02h; this engine takes them
// directly rather than re-reading the map, since page 02h is optional and
// a module without it (NewPage03 only installs page 03h) still needs its
// lower-page telemetry refreshed.
type SFF8636Engine struct {
	m  *memmap.Map
	th ChannelThresholds
}

// ChannelThresholds bounds every per-lane and module-level reading this
// engine evaluates.
type ChannelThresholds struct {
	TempHighAlarm, TempLowAlarm float64
	TempHighWarn, TempLowWarn   float64
	VccHighAlarm, VccLowAlarm   float64
	VccHighWarn, VccLowWarn     float64
	BiasHighAlarm, BiasLowAlarm float64
	BiasHighWarn, BiasLowWarn   float64
	PowerHighAlarm, PowerLowAlarm float64
	PowerHighWarn, PowerLowWarn   float64
}

// NewSFF8636Engine returns an engine writing into m, which must have been
// built by sff8636.New.
func NewSFF8636Engine(m *memmap.Map, th ChannelThresholds) *SFF8636Engine {
	return &SFF8636Engine{m: m, th: th}
}

// Tick writes t's encoded values into the lower-page telemetry fields, then
// re-evaluates every alarm/warning flag against th (the thresholds this
// engine was constructed with). Unlike SFF8472Engine, thresholds are not
// re-read from the map: this project does not model SFF-8636's optional
// page 02h (thresholds/controls), so th is the only copy of them there is.
func (e *SFF8636Engine) Tick(t SFF8636Telemetry) {
	e.m.ForceLower(sff8636.OffTemp, be16i(regfield.TempToRaw(t.TempC)))
	e.m.ForceLower(sff8636.OffVcc, be16u(regfield.VoltageToRaw(t.VccV)))

	var tempVccFlags byte
	if t.TempC > e.th.TempHighAlarm {
		tempVccFlags |= sff8636.FlagTempHighAlarm
	}
	if t.TempC < e.th.TempLowAlarm {
		tempVccFlags |= sff8636.FlagTempLowAlarm
	}
	if t.TempC > e.th.TempHighWarn {
		tempVccFlags |= sff8636.FlagTempHighWarn
	}
	if t.TempC < e.th.TempLowWarn {
		tempVccFlags |= sff8636.FlagTempLowWarn
	}
	if t.VccV > e.th.VccHighAlarm {
		tempVccFlags |= sff8636.FlagVccHighAlarm
	}
	if t.VccV < e.th.VccLowAlarm {
		tempVccFlags |= sff8636.FlagVccLowAlarm
	}
	if t.VccV > e.th.VccHighWarn {
		tempVccFlags |= sff8636.FlagVccHighWarn
	}
	if t.VccV < e.th.VccLowWarn {
		tempVccFlags |= sff8636.FlagVccLowWarn
	}
	e.m.ForceLower(sff8636.OffTempVccFlags, []byte{tempVccFlags})

	var rxHigh, rxLow, biasHigh, biasLow, pwrHigh, pwrLow byte
	for i, ch := range t.Channels {
		if i >= sff8636.MaxChannels {
			break
		}
		e.m.ForceLower(sff8636.OffRxPower+2*i, be16u(regfield.PowerToRaw(ch.RxPowerMW)))
		e.m.ForceLower(sff8636.OffTxBias+2*i, be16u(regfield.BiasToRaw(ch.TxBiasMA)))
		e.m.ForceLower(sff8636.OffTxPower+2*i, be16u(regfield.PowerToRaw(ch.TxPowerMW)))

		bit := byte(1) << uint(i)
		if ch.RxPowerMW > e.th.PowerHighAlarm {
			rxHigh |= bit
		}
		if ch.RxPowerMW < e.th.PowerLowAlarm {
			rxLow |= bit
		}
		if ch.TxBiasMA > e.th.BiasHighAlarm {
			biasHigh |= bit
		}
		if ch.TxBiasMA < e.th.BiasLowAlarm {
			biasLow |= bit
		}
		if ch.TxPowerMW > e.th.PowerHighAlarm {
			pwrHigh |= bit
		}
		if ch.TxPowerMW < e.th.PowerLowAlarm {
			pwrLow |= bit
		}
	}
	e.m.ForceLower(sff8636.OffRxPowerHighAlarm, []byte{rxHigh})
	e.m.ForceLower(sff8636.OffRxPowerLowAlarm, []byte{rxLow})
	e.m.ForceLower(sff8636.OffTxBiasHighAlarm, []byte{biasHigh})
	e.m.ForceLower(sff8636.OffTxBiasLowAlarm, []byte{biasLow})
	e.m.ForceLower(sff8636.OffTxPowerHighAlarm, []byte{pwrHigh})
	e.m.ForceLower(sff8636.OffTxPowerLowAlarm, []byte{pwrLow})
}

func be16u(v uint16) []byte {
	b := make([]byte, 2)
	regfield.PutU16(b, v)
	return b
}

func be16i(v int16) []byte {
	b := make([]byte, 2)
	regfield.PutI16(b, v)
	return b
}
