package module

import (
	"testing"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/xcvrsim/xcvrsim/cmis"
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/monitor"
	"github.com/xcvrsim/xcvrsim/sff8472"
	"github.com/xcvrsim/xcvrsim/sff8636"
	"github.com/xcvrsim/xcvrsim/sideband"
)

func newSFPModule(t *testing.T) *Module {
	t.Helper()
	mod, err := New(Config{
		Family: FamilySFF8472,
		SFF8472: sff8472.Config{
			Identifier: sff8472.IdentifierSFP,
			VendorName: "Test Vendor",
			VendorPN:   "TV-SFP-001",
			VendorSN:   "TV000001",
			DateCode:   "260101  ",
		},
		SFF8472Thresholds: sff8472.DefaultThresholds(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return mod
}

func TestIdentifierReadScenario(t *testing.T) {
	mod := newSFPModule(t)
	b, err := mod.ReadRegister(AddrA0, 0)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if b != sff8472.IdentifierSFP {
		t.Fatalf("identifier = %#x, want %#x", b, sff8472.IdentifierSFP)
	}
}

func TestTxFaultSimulationScenario(t *testing.T) {
	mod := newSFPModule(t)
	if err := mod.SimulateFault(FaultTxFault, 0, true); err != nil {
		t.Fatalf("SimulateFault: %v", err)
	}
	b, err := mod.ReadRegister(AddrA2, sff8472.OffA2Status)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if b&0x04 != 0x04 {
		t.Fatalf("A2h status byte = %#x, want bit 0x04 set", b)
	}
}

func TestTemperatureTickScenario(t *testing.T) {
	mod := newSFPModule(t)
	mod.SetTemperature(45.0)
	mod.Tick()
	got, err := mod.ReadBlock(AddrA2, sff8472.OffTemp, 2)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if got[0] != 0x2D || got[1] != 0x00 {
		t.Fatalf("temperature bytes = % x, want [2d 00]", got)
	}
}

func TestTemperaturePhysicMatchesFloatForm(t *testing.T) {
	mod := newSFPModule(t)
	mod.SetTemperaturePhysic(physic.ZeroCelsius + 45*physic.Kelvin)
	mod.Tick()
	got, err := mod.ReadBlock(AddrA2, sff8472.OffTemp, 2)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if got[0] != 0x2D || got[1] != 0x00 {
		t.Fatalf("temperature bytes = % x, want [2d 00]", got)
	}
}

func newQSFPModule(t *testing.T) *Module {
	t.Helper()
	mod, err := New(Config{
		Family: FamilySFF8636,
		SFF8636: sff8636.Config{
			Identifier: sff8636.IdentifierQSFP28,
			Channels:   4,
			VendorName: "Test Vendor",
			VendorPN:   "TV-QSFP-001",
			VendorSN:   "TV000002",
			DateCode:   "260101  ",
		},
		SFF8636Thresholds: monitor.ChannelThresholds{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return mod
}

func TestPageSwitchScenario(t *testing.T) {
	mod := newQSFPModule(t)
	before, err := mod.ReadBlock(SingleDeviceAddress, 0, memmap.LowerSize)
	if err != nil {
		t.Fatalf("ReadBlock(lower): %v", err)
	}

	if err := mod.WriteRegister(SingleDeviceAddress, sff8636.OffPageSelect, 0x03); err != nil {
		t.Fatalf("WriteRegister(page select): %v", err)
	}

	upper, err := mod.ReadBlock(SingleDeviceAddress, memmap.LowerSize, memmap.PageSize)
	if err != nil {
		t.Fatalf("ReadBlock(page 03h): %v", err)
	}
	for i, b := range upper {
		if b != 0 {
			t.Fatalf("page 03h offset %d = %#x, want 0 (freshly installed RW page)", i, b)
			break
		}
	}

	after, err := mod.ReadBlock(SingleDeviceAddress, 0, memmap.LowerSize)
	if err != nil {
		t.Fatalf("ReadBlock(lower) after page switch: %v", err)
	}
	for i := range before {
		if i == sff8636.OffPageSelect {
			continue
		}
		if before[i] != after[i] {
			t.Fatalf("lower page offset %d changed across page switch: %#x -> %#x", i, before[i], after[i])
		}
	}
}

func TestInvalidDeviceAddressRejected(t *testing.T) {
	mod := newSFPModule(t)
	if _, err := mod.ReadRegister(0x55, 0); err == nil {
		t.Fatal("ReadRegister(bad addr) = nil, want ErrInvalidAddress")
	}
}

func newCMISModule(t *testing.T) *Module {
	t.Helper()
	mod, err := New(Config{
		Family: FamilyCMIS,
		CMIS: cmis.Config{
			Identifier:     cmis.IdentifierOSFP,
			Lanes:          8,
			VendorName:     "Test Vendor",
			VendorPN:       "TV-OSFP-001",
			VendorSN:       "TV000003",
			DateCode:       "260101  ",
			ResetHoldTicks: 2,
			InitTicks:      2,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return mod
}

func TestCMISLPModeSignalHoldsLowPower(t *testing.T) {
	mod := newCMISModule(t)
	if err := mod.Signal(sideband.LPMode).Out(gpio.High); err != nil {
		t.Fatalf("Out(LPMode): %v", err)
	}
	mod.Tick()
	b, err := mod.ReadRegister(SingleDeviceAddress, cmis.OffModuleState)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if cmis.ModuleState(b>>1) != cmis.ModuleLowPwr {
		t.Fatalf("module state = %d, want MODULE_LOW_PWR", b)
	}
}

func TestCMISModuleFaultInjection(t *testing.T) {
	mod := newCMISModule(t)
	if err := mod.SimulateFault(FaultModuleFault, 0, true); err != nil {
		t.Fatalf("SimulateFault: %v", err)
	}
	b, err := mod.ReadRegister(SingleDeviceAddress, cmis.OffModuleState)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if cmis.ModuleState(b>>1) != cmis.ModuleFault {
		t.Fatalf("module state = %d, want MODULE_FAULT", b)
	}
}

func TestCMISTelemetryReachesMonitoringEngine(t *testing.T) {
	mod, err := New(Config{
		Family: FamilyCMIS,
		CMIS: cmis.Config{
			Identifier:     cmis.IdentifierOSFP,
			Lanes:          8,
			VendorName:     "Test Vendor",
			VendorPN:       "TV-OSFP-001",
			VendorSN:       "TV000003",
			DateCode:       "260101  ",
			ResetHoldTicks: 2,
			InitTicks:      2,
		},
		CMISThresholds: monitor.ChannelThresholds{TempHighAlarm: 70},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mod.SetTemperature(80)
	mod.Tick()
	b, err := mod.ReadRegister(SingleDeviceAddress, cmis.OffTempVccFlags)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if b&cmis.FlagTempHighAlarm == 0 {
		t.Fatalf("temp-high alarm not set above threshold: flags=%#x", b)
	}

	mod.SetTemperature(50)
	mod.Tick()
	b, err = mod.ReadRegister(SingleDeviceAddress, cmis.OffTempVccFlags)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if b&cmis.FlagTempHighAlarm != 0 {
		t.Fatalf("temp-high alarm still set after temperature dropped: flags=%#x", b)
	}
}
