package monitor

import (
	"github.com/xcvrsim/xcvrsim/cmis"
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
)

// CMISEngine drives the lower-page temperature/voltage fields and the
// page 11h per-lane bias/power monitors of a CMIS module (QSFP-DD/OSFP).
// Like SFF8636Engine, thresholds are supplied at construction rather than
// read from the map: CMIS keeps thresholds on upper page 02h, which this
// project does not model.
type CMISEngine struct {
	m  *memmap.Map
	th ChannelThresholds
}

// NewCMISEngine returns an engine writing into m, which must have been
// built by cmis.New.
func NewCMISEngine(m *memmap.Map, th ChannelThresholds) *CMISEngine {
	return &CMISEngine{m: m, th: th}
}

// Tick writes t's encoded values into the module's lower-page temperature/
// voltage fields and page 11h per-lane bias/power fields, then re-evaluates
// every alarm/warning flag against th. Optical power is encoded log-scaled
// (Q8.8 dBm, CMIS §8) via regfield.PowerToRawLog, unlike SFF-8472/SFF-8636's
// linear milliwatt encoding.
func (e *CMISEngine) Tick(t SFF8636Telemetry) {
	e.m.ForceLower(cmis.OffTemp, be16i(regfield.TempToRaw(t.TempC)))
	e.m.ForceLower(cmis.OffVcc, be16u(regfield.VoltageToRaw(t.VccV)))

	var tempVccFlags byte
	if t.TempC > e.th.TempHighAlarm {
		tempVccFlags |= cmis.FlagTempHighAlarm
	}
	if t.TempC < e.th.TempLowAlarm {
		tempVccFlags |= cmis.FlagTempLowAlarm
	}
	if t.TempC > e.th.TempHighWarn {
		tempVccFlags |= cmis.FlagTempHighWarn
	}
	if t.TempC < e.th.TempLowWarn {
		tempVccFlags |= cmis.FlagTempLowWarn
	}
	if t.VccV > e.th.VccHighAlarm {
		tempVccFlags |= cmis.FlagVccHighAlarm
	}
	if t.VccV < e.th.VccLowAlarm {
		tempVccFlags |= cmis.FlagVccLowAlarm
	}
	if t.VccV > e.th.VccHighWarn {
		tempVccFlags |= cmis.FlagVccHighWarn
	}
	if t.VccV < e.th.VccLowWarn {
		tempVccFlags |= cmis.FlagVccLowWarn
	}
	e.m.ForceLower(cmis.OffTempVccFlags, []byte{tempVccFlags})

	var biasHigh, biasLow, txPwrHigh, txPwrLow, rxPwrHigh, rxPwrLow byte
	for i, ch := range t.Channels {
		if i >= cmis.MaxLanes {
			break
		}
		_ = e.m.ForcePage(0, 0x11, cmis.OffTxBiasMonitor+2*i, be16u(regfield.BiasToRaw(ch.TxBiasMA)))
		_ = e.m.ForcePage(0, 0x11, cmis.OffTxPowerMonitor+2*i, be16i(regfield.PowerToRawLog(ch.TxPowerMW)))
		_ = e.m.ForcePage(0, 0x11, cmis.OffRxPowerMonitor+2*i, be16i(regfield.PowerToRawLog(ch.RxPowerMW)))

		bit := byte(1) << uint(i)
		if ch.TxBiasMA > e.th.BiasHighAlarm {
			biasHigh |= bit
		}
		if ch.TxBiasMA < e.th.BiasLowAlarm {
			biasLow |= bit
		}
		if ch.TxPowerMW > e.th.PowerHighAlarm {
			txPwrHigh |= bit
		}
		if ch.TxPowerMW < e.th.PowerLowAlarm {
			txPwrLow |= bit
		}
		if ch.RxPowerMW > e.th.PowerHighAlarm {
			rxPwrHigh |= bit
		}
		if ch.RxPowerMW < e.th.PowerLowAlarm {
			rxPwrLow |= bit
		}
	}
	_ = e.m.ForcePage(0, 0x11, cmis.OffTxBiasHighAlarm, []byte{biasHigh})
	_ = e.m.ForcePage(0, 0x11, cmis.OffTxBiasLowAlarm, []byte{biasLow})
	_ = e.m.ForcePage(0, 0x11, cmis.OffTxPowerHighAlarm, []byte{txPwrHigh})
	_ = e.m.ForcePage(0, 0x11, cmis.OffTxPowerLowAlarm, []byte{txPwrLow})
	_ = e.m.ForcePage(0, 0x11, cmis.OffRxPowerHighAlarm, []byte{rxPwrHigh})
	_ = e.m.ForcePage(0, 0x11, cmis.OffRxPowerLowAlarm, []byte{rxPwrLow})
}
