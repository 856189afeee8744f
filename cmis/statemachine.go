package cmis

import (
	"errors"

	"github.com/xcvrsim/xcvrsim/memmap"
)

// ErrInvalidState is returned when a control-register write requests a
// transition the state machine cannot honor in its current state (CMIS
// §6.3, e.g. requesting data-path activation while the module is in
// MODULE_LOW_PWR). Per the governing spec, the byte itself is still stored
// — only the semantic side effect is refused.
var ErrInvalidState = errors.New("cmis: invalid state transition requested")

// StateMachine implements the CMIS module and per-lane data-path state
// machines described by the governing spec §4.4. It owns no I/O of its
// own: sideband transitions and control-register writes are pushed in by
// the caller (the bus fabric / module façade), and Tick advances
// simulated time by exactly one step.
type StateMachine struct {
	m     *memmap.Map
	lanes int

	resetHoldTicks int
	initTicks      int

	resetAsserted bool
	lpModeForced  bool
	lowPwrReqSW   bool

	moduleState ModuleState
	dpState     []DPState
	deinitReq   []bool

	resetCountdown int // ticks remaining before reset lands the module in LOW_PWR
	initCountdown  int // ticks remaining before PWR_UP reaches READY

	faulted bool
}

// NewStateMachine returns a state machine driving m, which must have been
// built by cmis.New with the same lane count.
func NewStateMachine(m *memmap.Map, cfg Config) *StateMachine {
	sm := &StateMachine{
		m:              m,
		lanes:          cfg.Lanes,
		resetHoldTicks: cfg.ResetHoldTicks,
		initTicks:      cfg.InitTicks,
		moduleState:    ModuleLowPwr,
		dpState:        make([]DPState, cfg.Lanes),
		deinitReq:      make([]bool, cfg.Lanes),
	}
	sm.writeModuleState()
	sm.writeLaneStates()
	return sm
}

// SetResetL pushes a sideband ResetL transition. asserted == true means the
// active-low signal is driven low (reset asserted).
func (sm *StateMachine) SetResetL(asserted bool) {
	if asserted && !sm.resetAsserted {
		sm.resetCountdown = sm.resetHoldTicks
	}
	sm.resetAsserted = asserted
}

// SetLPMode pushes a sideband LPMode transition. forced == true means the
// host is forcing low-power mode.
func (sm *StateMachine) SetLPMode(forced bool) {
	sm.lpModeForced = forced
}

// OnControlWrite is called by the bus fabric after a raw register write
// lands in the map, so the state machine can interpret it. offset is the
// absolute (lower-page) offset for module-level control, or a page-10h
// upper-page offset (caller passes the upper-half offset verbatim, i.e.
// 128..255) for data-path control.
func (sm *StateMachine) OnControlWrite(pageSelector PageSelector, offset int, value byte) error {
	switch {
	case pageSelector == LowerPage && offset == OffLowPwrRequestSW:
		sm.lowPwrReqSW = value&lowPwrRequestBit != 0
		return nil
	case pageSelector == Page10h && offset == OffDataPathDeinit:
		if sm.moduleState != ModuleReady {
			// Recording the bitmap is always allowed; only the "activate
			// now" side effect needs MODULE_READY. A pure deinit request
			// (bit set) is never rejected.
			for lane := 0; lane < sm.lanes; lane++ {
				if value&(1<<uint(lane)) == 0 {
					return ErrInvalidState
				}
			}
		}
		for lane := 0; lane < sm.lanes; lane++ {
			sm.deinitReq[lane] = value&(1<<uint(lane)) != 0
		}
		return nil
	default:
		return nil
	}
}

// PageSelector disambiguates which page a control offset belongs to, since
// CMIS reuses raw offset numbers (0..255) independently per page.
type PageSelector int

const (
	LowerPage PageSelector = iota
	Page10h
)

// InjectFault latches MODULE_FAULT directly when active is true, bypassing
// normal transitions, per the module façade's fault-injection contract
// (§4.7). InjectFault(false) has no effect: faults are only cleared by an
// explicit reset pulse, never by clearing the injected condition.
func (sm *StateMachine) InjectFault(active bool) {
	if active {
		sm.faulted = true
		sm.moduleState = ModuleFault
		sm.writeModuleState()
	}
}

// Tick advances simulated time by one step: resolves a pending reset hold,
// advances MODULE_PWR_UP toward MODULE_READY, and steps every lane's
// data-path state. Lanes are evaluated in index order (0..N-1), which is
// this project's deterministic tie-break for simultaneous transitions.
func (sm *StateMachine) Tick() {
	sm.stepModuleState()
	for lane := 0; lane < sm.lanes; lane++ {
		sm.dpState[lane] = nextDPState(sm.dpState[lane], sm.moduleState == ModuleReady, sm.deinitReq[lane])
	}
	sm.writeModuleState()
	sm.writeLaneStates()
}

func (sm *StateMachine) stepModuleState() {
	if sm.resetAsserted {
		if sm.resetCountdown > 0 {
			sm.resetCountdown--
		}
		if sm.resetCountdown == 0 {
			sm.moduleState = ModuleLowPwr
			sm.faulted = false
		}
		return
	}

	switch sm.moduleState {
	case ModuleFault:
		// Only an explicit reset clears a latched fault; deasserting
		// ResetL alone does not.
		return
	case ModuleLowPwr:
		if sm.lpModeForced {
			return
		}
		if !sm.lowPwrReqSW {
			sm.moduleState = ModulePwrUp
			sm.initCountdown = sm.initTicks
		}
	case ModulePwrUp:
		if sm.lpModeForced || sm.lowPwrReqSW {
			sm.moduleState = ModuleLowPwr
			return
		}
		if sm.initCountdown > 0 {
			sm.initCountdown--
		}
		if sm.initCountdown == 0 {
			sm.moduleState = ModuleReady
		}
	case ModuleReady:
		if sm.lpModeForced || sm.lowPwrReqSW {
			sm.moduleState = ModulePwrDn
		}
	case ModulePwrDn:
		sm.moduleState = ModuleLowPwr
	}
}

// nextDPState advances one lane's data-path state by a single step.
func nextDPState(cur DPState, moduleReady, deinitRequested bool) DPState {
	if !moduleReady {
		return DPDeactivated
	}
	if deinitRequested {
		switch cur {
		case DPActivated, DPTxTurnOn:
			return DPTxTurnOff
		case DPTxTurnOff:
			return DPDeinit
		case DPDeinit:
			return DPDeactivated
		default:
			return DPDeactivated
		}
	}
	switch cur {
	case DPDeactivated, DPDeinit:
		return DPInit
	case DPInit:
		return DPTxTurnOn
	case DPTxTurnOn:
		return DPActivated
	default:
		return cur
	}
}

// ModuleState returns the current module-level state.
func (sm *StateMachine) ModuleState() ModuleState {
	return sm.moduleState
}

// DataPathState returns lane's current data-path state.
func (sm *StateMachine) DataPathState(lane int) DPState {
	return sm.dpState[lane]
}

// IntL reports whether the module-driven interrupt line should be asserted
// (active low: true means asserted/low). It fires on a latched fault or
// any lane with a pending host deinit request; this project does not model
// a full per-flag mask table, only the module-fault and lane-deinit
// conditions the governing spec's scenarios exercise.
func (sm *StateMachine) IntL() bool {
	if sm.faulted {
		return true
	}
	for _, req := range sm.deinitReq {
		if req {
			return true
		}
	}
	return false
}

func (sm *StateMachine) writeModuleState() {
	sm.m.ForceLower(OffModuleState, []byte{byte(sm.moduleState) << moduleStateShift & moduleStateMask})
	var flags byte
	if sm.faulted {
		flags |= 0x01
	}
	sm.m.ForceLower(OffFlagsSummary, []byte{flags})
}

func (sm *StateMachine) writeLaneStates() {
	for lane := 0; lane < sm.lanes; lane++ {
		_ = sm.m.ForcePage(0, 0x11, OffLaneStatus+lane, []byte{byte(sm.dpState[lane])})
	}
}
