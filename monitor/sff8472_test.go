package monitor

import (
	"testing"

	"github.com/xcvrsim/xcvrsim/sff8472"
)

func TestTemperatureEncodingScenario(t *testing.T) {
	a2 := sff8472.NewA2(sff8472.DefaultThresholds())
	e := NewSFF8472Engine(a2)
	e.Tick(Telemetry{TempC: 45.0})

	got, err := a2.Read(sff8472.OffTemp, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got[0] != 0x2D || got[1] != 0x00 {
		t.Fatalf("temperature bytes = % x, want [2d 00]", got)
	}
}

func TestHighTempAlarmFlagTracksThreshold(t *testing.T) {
	th := sff8472.DefaultThresholds()
	th.TempHighAlarm = 70
	a2 := sff8472.NewA2(th)
	e := NewSFF8472Engine(a2)

	e.Tick(Telemetry{TempC: 60})
	f, _ := a2.ReadByte(sff8472.OffAlarmFlags1)
	if f&sff8472.FlagTempHigh != 0 {
		t.Fatalf("temp-high alarm set below threshold: flags=%#x", f)
	}

	e.Tick(Telemetry{TempC: 80})
	f, _ = a2.ReadByte(sff8472.OffAlarmFlags1)
	if f&sff8472.FlagTempHigh == 0 {
		t.Fatalf("temp-high alarm not set above threshold: flags=%#x", f)
	}

	e.Tick(Telemetry{TempC: 60})
	f, _ = a2.ReadByte(sff8472.OffAlarmFlags1)
	if f&sff8472.FlagTempHigh != 0 {
		t.Fatalf("temp-high alarm still set after reading dropped back down: flags=%#x", f)
	}
}

func TestThresholdRewriteTakesEffectNextTick(t *testing.T) {
	a2 := sff8472.NewA2(sff8472.DefaultThresholds())
	e := NewSFF8472Engine(a2)

	e.Tick(Telemetry{TempC: 92})
	f, _ := a2.ReadByte(sff8472.OffAlarmFlags1)
	if f&sff8472.FlagTempHigh != 0 {
		t.Fatalf("unexpected alarm before threshold rewrite: flags=%#x", f)
	}

	if err := a2.Write(sff8472.OffThresholds+sff8472.ThTempHighAlarm, []byte{0x00, 0x00}); err != nil {
		t.Fatalf("Write(threshold): %v", err)
	}
	e.Tick(Telemetry{TempC: 92})
	f, _ = a2.ReadByte(sff8472.OffAlarmFlags1)
	if f&sff8472.FlagTempHigh == 0 {
		t.Fatalf("alarm did not pick up rewritten threshold: flags=%#x", f)
	}
}
