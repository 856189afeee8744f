package cmis

import "testing"

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Identifier = IdentifierOSFP
	cfg.Lanes = 8
	cfg.VendorName = "Test Vendor"
	cfg.VendorPN = "TV-OSFP-001"
	cfg.VendorSN = "TV000002"
	cfg.DateCode = "260101  "
	return cfg
}

func readModuleState(t *testing.T, m interface {
	ReadByte(int) (byte, error)
}) ModuleState {
	t.Helper()
	b, err := m.ReadByte(OffModuleState)
	if err != nil {
		t.Fatalf("ReadByte(module state): %v", err)
	}
	return ModuleState(b >> moduleStateShift)
}

func TestLPModeHoldsLowPower(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	sm.SetLPMode(true)

	for i := 0; i < 5; i++ {
		sm.Tick()
	}
	if got := readModuleState(t, m); got != ModuleLowPwr {
		t.Fatalf("module state = %s, want MODULE_LOW_PWR", got)
	}
	if sm.ModuleState() != ModuleLowPwr {
		t.Fatalf("sm.ModuleState() = %s, want MODULE_LOW_PWR", sm.ModuleState())
	}
}

func TestLPModeClearReachesReadyAfterInitDelay(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	sm.SetLPMode(true)
	sm.Tick()
	if got := readModuleState(t, m); got != ModuleLowPwr {
		t.Fatalf("module state = %s, want MODULE_LOW_PWR", got)
	}

	sm.SetLPMode(false)
	for i := 0; i < cfg.InitTicks+1; i++ {
		sm.Tick()
	}
	if got := readModuleState(t, m); got != ModuleReady {
		t.Fatalf("module state = %s, want MODULE_READY after init delay", got)
	}
}

func TestResetPulseReachesLowPwrWithinHoldTicks(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	sm.SetLPMode(false)
	for i := 0; i < cfg.InitTicks+1; i++ {
		sm.Tick()
	}
	if sm.ModuleState() != ModuleReady {
		t.Fatalf("precondition failed: module state = %s, want MODULE_READY", sm.ModuleState())
	}

	sm.SetResetL(true)
	for i := 0; i < cfg.ResetHoldTicks; i++ {
		sm.Tick()
	}
	if got := readModuleState(t, m); got != ModuleLowPwr {
		t.Fatalf("module state after reset hold = %s, want MODULE_LOW_PWR", got)
	}
}

func TestDataPathActivatesAfterModuleReady(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	sm.SetLPMode(false)
	for i := 0; i < cfg.InitTicks+1; i++ {
		sm.Tick()
	}
	if sm.DataPathState(0) != DPDeactivated && sm.DataPathState(0) != DPInit {
		t.Fatalf("lane 0 data path = %s immediately after READY, want DEACTIVATED or INIT", sm.DataPathState(0))
	}

	for i := 0; i < 5; i++ {
		sm.Tick()
	}
	if got := sm.DataPathState(0); got != DPActivated {
		t.Fatalf("lane 0 data path = %s after settling, want DP_ACTIVATED", got)
	}
}

func TestFaultLatchesUntilReset(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	sm.InjectFault(true)
	if got := readModuleState(t, m); got != ModuleFault {
		t.Fatalf("module state = %s, want MODULE_FAULT", got)
	}

	sm.Tick()
	if got := readModuleState(t, m); got != ModuleFault {
		t.Fatalf("fault cleared by a plain tick: module state = %s", got)
	}

	sm.SetResetL(true)
	for i := 0; i < cfg.ResetHoldTicks; i++ {
		sm.Tick()
	}
	if got := readModuleState(t, m); got != ModuleLowPwr {
		t.Fatalf("module state after reset = %s, want MODULE_LOW_PWR", got)
	}
}

func TestDataPathDeinitAlwaysRecordedEvenOutsideReady(t *testing.T) {
	cfg := testConfig()
	m := New(cfg)
	sm := NewStateMachine(m, cfg)
	// Module is still in MODULE_LOW_PWR; a deinit request (all bits set)
	// must still be accepted without error.
	if err := sm.OnControlWrite(Page10h, OffDataPathDeinit, 0xFF); err != nil {
		t.Fatalf("OnControlWrite(deinit all) = %v, want nil", err)
	}
	for lane := 0; lane < cfg.Lanes; lane++ {
		if !sm.deinitReq[lane] {
			t.Fatalf("lane %d deinit request not recorded", lane)
		}
	}
}
