package monitor

import (
	"testing"

	"github.com/xcvrsim/xcvrsim/sff8636"
)

func newSFF8636Map() *sff8636.Config {
	cfg := sff8636.Config{
		Identifier: sff8636.IdentifierQSFP28,
		Connector:  0x0C,
		Channels:   4,
		VendorName: "Test Vendor",
		VendorSN:   "TV000002",
		DateCode:   "260101  ",
	}
	return &cfg
}

func TestSFF8636TemperatureEncodingScenario(t *testing.T) {
	cfg := newSFF8636Map()
	m := sff8636.New(*cfg)
	e := NewSFF8636Engine(m, ChannelThresholds{})
	e.Tick(SFF8636Telemetry{TempC: 45.0, Channels: make([]ChannelTelemetry, cfg.Channels)})

	got, err := m.Read(sff8636.OffTemp, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got[0] != 0x2D || got[1] != 0x00 {
		t.Fatalf("temperature bytes = % x, want [2d 00]", got)
	}
}

func TestSFF8636HighTempAlarmFlagTracksThreshold(t *testing.T) {
	cfg := newSFF8636Map()
	m := sff8636.New(*cfg)
	th := ChannelThresholds{TempHighAlarm: 70}
	e := NewSFF8636Engine(m, th)
	channels := make([]ChannelTelemetry, cfg.Channels)

	e.Tick(SFF8636Telemetry{TempC: 60, Channels: channels})
	f, _ := m.ReadByte(sff8636.OffTempVccFlags)
	if f&sff8636.FlagTempHighAlarm != 0 {
		t.Fatalf("temp-high alarm set below threshold: flags=%#x", f)
	}

	e.Tick(SFF8636Telemetry{TempC: 80, Channels: channels})
	f, _ = m.ReadByte(sff8636.OffTempVccFlags)
	if f&sff8636.FlagTempHighAlarm == 0 {
		t.Fatalf("temp-high alarm not set above threshold: flags=%#x", f)
	}

	e.Tick(SFF8636Telemetry{TempC: 60, Channels: channels})
	f, _ = m.ReadByte(sff8636.OffTempVccFlags)
	if f&sff8636.FlagTempHighAlarm != 0 {
		t.Fatalf("temp-high alarm still set after reading dropped back down: flags=%#x", f)
	}
}

func TestSFF8636PerChannelBiasAlarmBitmap(t *testing.T) {
	cfg := newSFF8636Map()
	m := sff8636.New(*cfg)
	th := ChannelThresholds{BiasHighAlarm: 50, BiasLowAlarm: 2}
	e := NewSFF8636Engine(m, th)

	e.Tick(SFF8636Telemetry{Channels: []ChannelTelemetry{
		{TxBiasMA: 60}, // lane 0: above high alarm
		{TxBiasMA: 10}, // lane 1: within range
		{TxBiasMA: 60}, // lane 2: above high alarm
		{TxBiasMA: 10}, // lane 3: within range
	}})

	f, err := m.ReadByte(sff8636.OffTxBiasHighAlarm)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if f != 0x05 {
		t.Fatalf("tx bias high alarm bitmap = %#x, want bits 0 and 2 set", f)
	}
}
