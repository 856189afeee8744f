// Package module glues the memory map(s), monitoring engine, state machine
// (CMIS only) and sideband signals together into one addressable unit,
// implementing bus.Module so the fabric can route host traffic to it. It
// also exposes the fault-injection surface a test harness drives directly:
// SetTemperature, SetVoltage, SetChannelTelemetry and SimulateFault.
package module

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/xcvrsim/xcvrsim/cmis"
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/monitor"
	"github.com/xcvrsim/xcvrsim/sff8472"
	"github.com/xcvrsim/xcvrsim/sff8636"
	"github.com/xcvrsim/xcvrsim/sideband"
)

// FormFactor is the physical module family.
type FormFactor int

const (
	SFP FormFactor = iota
	QSFP
	OSFP
)

// Family is the management-interface standard a module speaks.
type Family int

const (
	FamilySFF8472 Family = iota
	FamilySFF8636
	FamilyCMIS
)

// SingleDeviceAddress is the logical device address SFF-8636 and CMIS
// modules answer on: they have no A0h/A2h split, just one address with
// internal paging.
const SingleDeviceAddress = 0xA0

// SFF-8472 answers on two device addresses sharing the same physical bus.
const (
	AddrA0 = 0xA0
	AddrA2 = 0xA2
)

var (
	// ErrUnsupportedFamily is returned by New when Config.Family does not
	// match any implemented standard.
	ErrUnsupportedFamily = errors.New("module: unsupported family")
	// ErrUnknownFaultKind is returned by SimulateFault for an unrecognized
	// kind string.
	ErrUnknownFaultKind = errors.New("module: unknown fault kind")
	// ErrInvalidAddress is returned by ReadRegister/WriteRegister/ReadBlock/
	// WriteBlock when addr does not match any address this module answers.
	ErrInvalidAddress = errors.New("module: device address not recognized by this module")
	// ErrChannelRange is returned by SetChannelTelemetry for a lane index
	// outside the module's configured channel count.
	ErrChannelRange = errors.New("module: channel index out of range")
)

// Config ingests a module's immutable-at-attach configuration and initial
// thresholds.
type Config struct {
	FormFactor FormFactor
	Family     Family

	SFF8472           sff8472.Config
	SFF8472Thresholds sff8472.Thresholds

	SFF8636           sff8636.Config
	SFF8636Thresholds monitor.ChannelThresholds

	CMIS           cmis.Config
	CMISThresholds monitor.ChannelThresholds
}

// Module is one emulated transceiver: its memory map(s), monitoring
// engine, state machine (CMIS only) and sideband signals, plus the live
// telemetry state Tick encodes on each call.
type Module struct {
	family   Family
	channels int

	a0, a2 *memmap.Map // SFF-8472 only
	m      *memmap.Map // SFF-8636 / CMIS only

	sffEngine  *monitor.SFF8472Engine
	qsfpEngine *monitor.SFF8636Engine
	cmisEngine *monitor.CMISEngine
	sm         *cmis.StateMachine

	sffTelemetry  monitor.Telemetry
	qsfpTelemetry monitor.SFF8636Telemetry

	signals map[string]*sideband.Signal
}

// New constructs a Module per cfg. Sideband signals start at their idle
// (deasserted) levels; the bus fabric's Attach asserts ModPrsL separately.
func New(cfg Config) (*Module, error) {
	mod := &Module{
		family:  cfg.Family,
		signals: make(map[string]*sideband.Signal),
	}

	mod.signals[sideband.ModPrsL] = sideband.New(sideband.ModPrsL, 0, sideband.ModuleDriven)
	mod.signals[sideband.ResetL] = sideband.New(sideband.ResetL, 1, sideband.HostDriven)
	mod.signals[sideband.LPMode] = sideband.New(sideband.LPMode, 2, sideband.HostDriven)
	mod.signals[sideband.IntL] = sideband.New(sideband.IntL, 3, sideband.ModuleDriven)
	mod.signals[sideband.TxDisable] = sideband.New(sideband.TxDisable, 4, sideband.HostDriven)
	mod.signals[sideband.RxLOS] = sideband.New(sideband.RxLOS, 5, sideband.ModuleDriven)
	mod.signals[sideband.TxFault] = sideband.New(sideband.TxFault, 6, sideband.ModuleDriven)

	switch cfg.Family {
	case FamilySFF8472:
		mod.channels = 1
		mod.a0 = sff8472.NewA0(cfg.SFF8472)
		mod.a2 = sff8472.NewA2(cfg.SFF8472Thresholds)
		mod.sffEngine = monitor.NewSFF8472Engine(mod.a2)
		mod.signals[sideband.TxDisable].Observe(mod.onSFPTxDisable)
	case FamilySFF8636:
		mod.channels = cfg.SFF8636.Channels
		mod.m = sff8636.New(cfg.SFF8636)
		sff8636.NewPage03(mod.m)
		mod.qsfpEngine = monitor.NewSFF8636Engine(mod.m, cfg.SFF8636Thresholds)
		mod.qsfpTelemetry.Channels = make([]monitor.ChannelTelemetry, mod.channels)
	case FamilyCMIS:
		mod.channels = cfg.CMIS.Lanes
		mod.m = cmis.New(cfg.CMIS)
		mod.sm = cmis.NewStateMachine(mod.m, cfg.CMIS)
		mod.cmisEngine = monitor.NewCMISEngine(mod.m, cfg.CMISThresholds)
		mod.qsfpTelemetry.Channels = make([]monitor.ChannelTelemetry, mod.channels)
		mod.wireCMISSideband()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFamily, cfg.Family)
	}

	return mod, nil
}

// wireCMISSideband subscribes the state machine to ResetL/LPMode host
// transitions: the host writes a signal, the state machine observes it as
// an input, per the direction discipline each named line follows.
func (mod *Module) wireCMISSideband() {
	mod.signals[sideband.ResetL].Observe(func(l gpio.Level) {
		mod.sm.SetResetL(l == gpio.Low)
	})
	mod.signals[sideband.LPMode].Observe(func(l gpio.Level) {
		mod.sm.SetLPMode(l == gpio.High)
	})
	// Observers only fire on transitions, so seed the state machine with the
	// lines' starting levels.
	mod.sm.SetResetL(mod.signals[sideband.ResetL].Read() == gpio.Low)
	mod.sm.SetLPMode(mod.signals[sideband.LPMode].Read() == gpio.High)
}

// onSFPTxDisable reflects a host-driven TxDisable assertion into a
// module-driven TxFault/RxLOS response: a disabled laser reports loss of
// signal downstream and, held long enough, a transmitter fault. This
// project keeps the simpler of those two effects (LOS) and leaves fault
// injection to SimulateFault, since SFF-8472 ties TxFault to the laser
// driver's own health rather than to TxDisable.
func (mod *Module) onSFPTxDisable(l gpio.Level) {
	if l == gpio.Low {
		mod.signals[sideband.RxLOS].SetFromModule(levelFromAsserted(true))
	}
}

// Signal returns one of the seven named sideband lines.
func (mod *Module) Signal(name string) *sideband.Signal {
	return mod.signals[name]
}

// PresenceSignal implements bus.Module.
func (mod *Module) PresenceSignal() gpio.PinOut {
	return mod.signals[sideband.ModPrsL]
}

// Close implements bus.Module. The emulator is memory-only, so there is
// nothing to flush; it exists to satisfy the bus contract.
func (mod *Module) Close() error {
	return nil
}

// MapForInspection returns the memory map backing addr, bypassing the
// ReadRegister/ReadBlock contract. It exists only for same-process
// inspection tooling (cmd/emuctl); a host driver must never see this.
func (mod *Module) MapForInspection(addr byte) *memmap.Map {
	m, err := mod.mapFor(addr)
	if err != nil {
		return nil
	}
	return m
}

// mapFor resolves addr to the memory map it addresses, per this module's
// family.
func (mod *Module) mapFor(addr byte) (*memmap.Map, error) {
	switch mod.family {
	case FamilySFF8472:
		switch addr {
		case AddrA0:
			return mod.a0, nil
		case AddrA2:
			return mod.a2, nil
		}
	default:
		if addr == SingleDeviceAddress {
			return mod.m, nil
		}
	}
	return nil, fmt.Errorf("%w: %#x", ErrInvalidAddress, addr)
}

// ReadRegister implements bus.Module.
func (mod *Module) ReadRegister(addr byte, offset int) (byte, error) {
	m, err := mod.mapFor(addr)
	if err != nil {
		return 0, err
	}
	return m.ReadByte(offset)
}

// ReadBlock implements bus.Module.
func (mod *Module) ReadBlock(addr byte, offset, length int) ([]byte, error) {
	m, err := mod.mapFor(addr)
	if err != nil {
		return nil, err
	}
	return m.Read(offset, length)
}

// WriteRegister implements bus.Module. For CMIS it additionally feeds the
// byte to the state machine after the write lands, so control-register
// semantics (low-power request, data-path deinit) take effect.
func (mod *Module) WriteRegister(addr byte, offset int, value byte) error {
	m, err := mod.mapFor(addr)
	if err != nil {
		return err
	}
	if err := m.WriteByte(offset, value); err != nil {
		return err
	}
	mod.afterCMISWrite(offset, []byte{value})
	return nil
}

// WriteBlock implements bus.Module.
func (mod *Module) WriteBlock(addr byte, offset int, data []byte) error {
	m, err := mod.mapFor(addr)
	if err != nil {
		return err
	}
	if err := m.Write(offset, data); err != nil {
		return err
	}
	mod.afterCMISWrite(offset, data)
	return nil
}

// afterCMISWrite notifies the CMIS state machine of control-register
// bytes within a just-completed write. offset is absolute (0..255); a
// write may touch the lower-page low-power-request bit, or (if the
// module currently has page 10h selected) the data-path deinit bitmap.
func (mod *Module) afterCMISWrite(offset int, data []byte) {
	if mod.sm == nil {
		return
	}
	bank, page := mod.m.CurrentPage()
	_ = bank
	for i, v := range data {
		off := offset + i
		switch {
		case off < memmap.LowerSize:
			_ = mod.sm.OnControlWrite(cmis.LowerPage, off, v)
		case page == 0x10:
			_ = mod.sm.OnControlWrite(cmis.Page10h, off, v)
		}
	}
}

// Tick advances the module's monitoring engine by one step, encoding its
// currently-set telemetry values, and (for CMIS) advances the state
// machine and reflects its fault/deinit condition onto IntL.
func (mod *Module) Tick() {
	switch mod.family {
	case FamilySFF8472:
		mod.sffEngine.Tick(mod.sffTelemetry)
	case FamilySFF8636:
		mod.qsfpEngine.Tick(mod.qsfpTelemetry)
	case FamilyCMIS:
		mod.cmisEngine.Tick(mod.qsfpTelemetry)
		mod.sm.Tick()
		mod.signals[sideband.IntL].SetFromModule(levelFromAsserted(mod.sm.IntL()))
	}
}

func levelFromAsserted(assertedLow bool) gpio.Level {
	if assertedLow {
		return gpio.Low
	}
	return gpio.High
}

// SetTemperature sets the module (or, for SFP, the single channel's)
// temperature reading in degrees C, taking effect on the next Tick.
func (mod *Module) SetTemperature(c float64) {
	switch mod.family {
	case FamilySFF8472:
		mod.sffTelemetry.TempC = c
	default:
		mod.qsfpTelemetry.TempC = c
	}
}

// SetVoltage sets the module's supply voltage reading in volts, taking
// effect on the next Tick.
func (mod *Module) SetVoltage(v float64) {
	switch mod.family {
	case FamilySFF8472:
		mod.sffTelemetry.VccV = v
	default:
		mod.qsfpTelemetry.VccV = v
	}
}

// SetChannelTelemetry sets one lane's bias/Tx-power/Rx-power readings,
// taking effect on the next Tick. channel must be 0 for SFF-8472, which
// has exactly one optical lane.
func (mod *Module) SetChannelTelemetry(channel int, txBiasMA, txPowerMW, rxPowerMW float64) error {
	switch mod.family {
	case FamilySFF8472:
		if channel != 0 {
			return fmt.Errorf("%w: %d", ErrChannelRange, channel)
		}
		mod.sffTelemetry.TxBiasMA = txBiasMA
		mod.sffTelemetry.TxPowerMW = txPowerMW
		mod.sffTelemetry.RxPowerMW = rxPowerMW
	default:
		if channel < 0 || channel >= len(mod.qsfpTelemetry.Channels) {
			return fmt.Errorf("%w: %d", ErrChannelRange, channel)
		}
		mod.qsfpTelemetry.Channels[channel] = monitor.ChannelTelemetry{
			TxBiasMA:  txBiasMA,
			TxPowerMW: txPowerMW,
			RxPowerMW: rxPowerMW,
		}
	}
	return nil
}

// SetTemperaturePhysic is the physic.Temperature-typed equivalent of
// SetTemperature, for callers that carry telemetry in periph's physical
// unit types rather than bare float64s.
func (mod *Module) SetTemperaturePhysic(t physic.Temperature) {
	mod.SetTemperature(celsius(t))
}

// SetVoltagePhysic is the physic.ElectricPotential-typed equivalent of
// SetVoltage.
func (mod *Module) SetVoltagePhysic(v physic.ElectricPotential) {
	mod.SetVoltage(float64(v) / float64(physic.Volt))
}

// SetChannelTelemetryPhysic is the physic-typed equivalent of
// SetChannelTelemetry.
func (mod *Module) SetChannelTelemetryPhysic(channel int, txBias physic.ElectricCurrent, txPower, rxPower physic.Power) error {
	return mod.SetChannelTelemetry(channel,
		float64(txBias)/float64(physic.MilliAmpere),
		float64(txPower)/float64(physic.MilliWatt),
		float64(rxPower)/float64(physic.MilliWatt))
}

// celsius converts a physic.Temperature (absolute, Kelvin-based) to degrees
// Celsius, the unit every register layout in this project encodes.
func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
}

// Fault kinds recognized by SimulateFault.
const (
	FaultRxLOS       = "rx_los"
	FaultTxFault     = "tx_fault"
	FaultModuleFault = "module_fault"
	FaultTempHigh    = "temp_high"
	FaultTempLow     = "temp_low"
	FaultVccHigh     = "vcc_high"
	FaultVccLow      = "vcc_low"
)

// SimulateFault injects or clears a host-visible fault condition, bypassing
// the monitoring engine entirely: it latches a status/flag bit (or, for
// module_fault, drives the CMIS state machine into MODULE_FAULT) directly,
// per the façade's fault-injection contract. RxLOS/TxFault are reflected in
// the A2h status byte for SFP modules (SFF-8472 Table 9-11) and as per-lane
// register bits for QSFP/CMIS modules; the temp/vcc kinds only apply to
// SFF-8472, since its alarm flags are the only ones stored as independently
// host-writable register state rather than continuously re-derived from
// live telemetry by a monitoring engine on every Tick (SFF8636Engine and
// CMISEngine recompute their temp/vcc flags on every Tick call, so a direct
// latch here would simply be overwritten on the next Tick).
func (mod *Module) SimulateFault(kind string, lane int, active bool) error {
	switch kind {
	case FaultRxLOS:
		return mod.setTransceiverFault(sff8472.StatusRxLOS, sff8636.OffRxLOS, cmis.OffRxLOS, lane, active)
	case FaultTxFault:
		return mod.setTransceiverFault(sff8472.StatusTxFault, sff8636.OffTxFault, cmis.OffTxFault, lane, active)
	case FaultModuleFault:
		if mod.sm == nil {
			return fmt.Errorf("%w: %s only applies to CMIS modules", ErrUnknownFaultKind, kind)
		}
		mod.sm.InjectFault(active)
		return nil
	case FaultTempHigh:
		return mod.setAlarmBit(sff8472.OffAlarmFlags1, sff8472.FlagTempHigh, active)
	case FaultTempLow:
		return mod.setAlarmBit(sff8472.OffAlarmFlags1, sff8472.FlagTempLow, active)
	case FaultVccHigh:
		return mod.setAlarmBit(sff8472.OffAlarmFlags1, sff8472.FlagVccHigh, active)
	case FaultVccLow:
		return mod.setAlarmBit(sff8472.OffAlarmFlags1, sff8472.FlagVccLow, active)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFaultKind, kind)
	}
}

// setTransceiverFault sets or clears the RxLOS/TxFault condition: a bit in
// the A2h status byte for SFF-8472, or lane's bit in the lower-page bitmap
// for SFF-8636/CMIS. It also mirrors the condition onto the matching
// sideband pin for SFF-8472, which exposes these as physical signals.
func (mod *Module) setTransceiverFault(sffStatusBit byte, sff8636Off, cmisOff int, lane int, active bool) error {
	switch mod.family {
	case FamilySFF8472:
		if lane != 0 {
			return fmt.Errorf("%w: %d", ErrChannelRange, lane)
		}
		b, err := mod.a2.ReadByte(sff8472.OffA2Status)
		if err != nil {
			return err
		}
		if active {
			b |= sffStatusBit
		} else {
			b &^= sffStatusBit
		}
		mod.a2.ForceLower(sff8472.OffA2Status, []byte{b})
		if sffStatusBit == sff8472.StatusRxLOS {
			mod.signals[sideband.RxLOS].SetFromModule(levelFromAsserted(active))
		} else if sffStatusBit == sff8472.StatusTxFault {
			mod.signals[sideband.TxFault].SetFromModule(levelFromAsserted(active))
		}
		return nil
	case FamilySFF8636:
		return mod.setLaneBit(mod.m, sff8636Off, lane, active)
	case FamilyCMIS:
		return mod.setLaneBit(mod.m, cmisOff, lane, active)
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedFamily, mod.family)
}

// setAlarmBit latches or clears bit within the A2h alarm flag byte at off,
// bypassing the monitoring engine. It only applies to SFF-8472: SFF-8636
// and CMIS recompute their equivalent flags from live telemetry every Tick,
// so there is no independent bit for this to latch there.
func (mod *Module) setAlarmBit(off int, bit byte, active bool) error {
	if mod.family != FamilySFF8472 {
		return fmt.Errorf("%w: temp/vcc fault kinds only apply to SFF-8472 modules", ErrUnknownFaultKind)
	}
	b, err := mod.a2.ReadByte(off)
	if err != nil {
		return err
	}
	if active {
		b |= bit
	} else {
		b &^= bit
	}
	mod.a2.ForceLower(off, []byte{b})
	return nil
}

// setLaneBit sets or clears lane's bit within the byte at off, bypassing
// the access mask: these bits are module-driven status, not host-writable
// state.
func (mod *Module) setLaneBit(m *memmap.Map, off, lane int, active bool) error {
	if lane < 0 || lane >= mod.channels {
		return fmt.Errorf("%w: %d", ErrChannelRange, lane)
	}
	b, err := m.ReadByte(off)
	if err != nil {
		return err
	}
	if active {
		b |= 1 << uint(lane)
	} else {
		b &^= 1 << uint(lane)
	}
	m.ForceLower(off, []byte{b})
	return nil
}
