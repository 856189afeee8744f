// Package sideband emulates the seven named signal lines that ride outside
// the two-wire bus: ModPrsL, ResetL, LPMode, IntL, TxDisable, RxLOS and
// TxFault. Each line is a gpio.PinIO, the same interface the teacher
// package uses for its own bit-banged GPIO (periph.io/x/extra/hostextra/
// d2xx/gpio.go's syncPin), so host code written against the periph GPIO
// contract runs unmodified against the emulator.
package sideband

import (
	"errors"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// Direction records who is allowed to mutate a signal's level.
type Direction int

const (
	// HostDriven signals are mutated by the host via Out.
	HostDriven Direction = iota
	// ModuleDriven signals are mutated only by the module (the monitoring
	// engine or state machine); host writes are rejected.
	ModuleDriven
)

// Name constants for the seven signals this project emulates.
const (
	ModPrsL   = "ModPrsL"
	ResetL    = "ResetL"
	LPMode    = "LPMode"
	IntL      = "IntL"
	TxDisable = "TxDisable"
	RxLOS     = "RxLOS"
	TxFault   = "TxFault"
)

// Signal is one sideband line. It implements gpio.PinIO so it can be
// registered in periph's gpioreg and consumed by any code written against
// the standard GPIO interface.
type Signal struct {
	name string
	num  int
	dir  Direction
	pull gpio.Pull

	level     gpio.Level
	observers []func(gpio.Level)
}

// New returns a Signal named name with the given direction, defaulting to
// High (every signal this project models is active-low, so the idle state
// is the deasserted/High level).
func New(name string, num int, dir Direction) *Signal {
	return &Signal{name: name, num: num, dir: dir, pull: gpio.PullUp, level: gpio.High}
}

// String implements conn.Resource.
func (s *Signal) String() string { return s.name }

// Halt implements conn.Resource. Sideband lines have no held resource to
// release.
func (s *Signal) Halt() error { return nil }

// Name implements pin.Pin.
func (s *Signal) Name() string { return s.name }

// Number implements pin.Pin.
func (s *Signal) Number() int { return s.num }

// Function implements pin.Pin.
func (s *Signal) Function() string {
	if s.dir == HostDriven {
		return "host-driven sideband"
	}
	return "module-driven sideband"
}

// In implements gpio.PinIn. Edge triggering is not supported: a caller that
// needs to react to a transition should register an observer via Observe
// instead of polling WaitForEdge.
func (s *Signal) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errors.New("sideband: edge triggering is not supported, use Observe")
	}
	s.pull = pull
	return nil
}

// Read implements gpio.PinIn.
func (s *Signal) Read() gpio.Level { return s.level }

// WaitForEdge implements gpio.PinIn. The emulator never pushes events on
// its own schedule, so this always reports no edge occurred within t.
func (s *Signal) WaitForEdge(t time.Duration) bool { return false }

// DefaultPull implements gpio.PinIn.
func (s *Signal) DefaultPull() gpio.Pull { return gpio.PullUp }

// Pull implements gpio.PinIn.
func (s *Signal) Pull() gpio.Pull { return s.pull }

// Out implements gpio.PinOut. Only a HostDriven signal accepts host writes;
// a ModuleDriven signal rejects them, since the writer set for each line is
// a singleton by the direction discipline in the governing spec.
func (s *Signal) Out(l gpio.Level) error {
	if s.dir != HostDriven {
		return errors.New("sideband: " + s.name + " is module-driven, the host cannot set it")
	}
	s.set(l)
	return nil
}

// PWM implements gpio.PinOut. No sideband line in this project is a PWM
// output.
func (s *Signal) PWM(d gpio.Duty, f physic.Frequency) error {
	return errors.New("sideband: PWM is not supported")
}

// SetFromModule mutates a ModuleDriven signal's level on behalf of the
// monitoring engine or state machine. It is not part of gpio.PinIO; it is
// the module-side half of the direction discipline HostDriven/Out serves
// for the host side.
func (s *Signal) SetFromModule(l gpio.Level) {
	if s.dir != ModuleDriven {
		panic("sideband: SetFromModule called on a host-driven signal")
	}
	s.set(l)
}

func (s *Signal) set(l gpio.Level) {
	if l == s.level {
		return
	}
	s.level = l
	for _, obs := range s.observers {
		obs(l)
	}
}

// Observe registers fn to be called whenever this signal's level changes.
// The state machine uses this to subscribe to host-driven transitions
// (ResetL, LPMode); a host observes module-driven transitions by polling
// Read, since the emulator does not push events to the host unless it
// registers here (the governing spec's change-observer contract is
// module-internal only).
func (s *Signal) Observe(fn func(gpio.Level)) {
	s.observers = append(s.observers, fn)
}

var _ gpio.PinIO = (*Signal)(nil)
