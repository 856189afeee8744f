package sideband

import (
	"testing"

	"periph.io/x/periph/conn/gpio"
)

func TestHostDrivenSignalAcceptsOut(t *testing.T) {
	s := New(ResetL, 1, HostDriven)
	if err := s.Out(gpio.Low); err != nil {
		t.Fatalf("Out: %v", err)
	}
	if s.Read() != gpio.Low {
		t.Fatalf("Read() = %v, want Low", s.Read())
	}
}

func TestModuleDrivenSignalRejectsOut(t *testing.T) {
	s := New(IntL, 3, ModuleDriven)
	if err := s.Out(gpio.Low); err == nil {
		t.Fatal("Out() on module-driven signal = nil, want error")
	}
}

func TestSetFromModulePanicsOnHostDrivenSignal(t *testing.T) {
	s := New(ResetL, 1, HostDriven)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("SetFromModule on host-driven signal did not panic")
		}
	}()
	s.SetFromModule(gpio.Low)
}

func TestObserverFiresOnTransitionOnly(t *testing.T) {
	s := New(LPMode, 2, HostDriven)
	fired := 0
	s.Observe(func(gpio.Level) { fired++ })

	_ = s.Out(gpio.High) // same as idle level, no transition
	if fired != 0 {
		t.Fatalf("observer fired on no-op write: %d", fired)
	}

	_ = s.Out(gpio.Low)
	if fired != 1 {
		t.Fatalf("observer fire count = %d, want 1", fired)
	}
}
