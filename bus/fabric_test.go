package bus

import (
	"fmt"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

type fakePin struct {
	name  string
	level gpio.Level
}

func (p *fakePin) String() string                       { return p.name }
func (p *fakePin) Halt() error                           { return nil }
func (p *fakePin) Name() string                          { return p.name }
func (p *fakePin) Number() int                           { return 0 }
func (p *fakePin) Function() string                      { return "" }
func (p *fakePin) In(gpio.Pull, gpio.Edge) error         { return nil }
func (p *fakePin) Read() gpio.Level                      { return p.level }
func (p *fakePin) WaitForEdge(t time.Duration) bool      { return false }
func (p *fakePin) DefaultPull() gpio.Pull                { return gpio.Float }
func (p *fakePin) Pull() gpio.Pull                       { return gpio.Float }
func (p *fakePin) Out(l gpio.Level) error                { p.level = l; return nil }
func (p *fakePin) PWM(gpio.Duty, physic.Frequency) error { return nil }

var _ gpio.PinIO = (*fakePin)(nil)

type fakeModule struct {
	reg      map[int]byte
	presence *fakePin
	closed   bool
}

// fakeModuleSeq gives each fake module's presence pin a unique gpioreg
// name, since the registry is process-wide and shared across every test in
// this package.
var fakeModuleSeq int

func newFakeModule() *fakeModule {
	fakeModuleSeq++
	name := fmt.Sprintf("fake%d", fakeModuleSeq)
	return &fakeModule{reg: make(map[int]byte), presence: &fakePin{name: name, level: gpio.High}}
}

func (f *fakeModule) ReadRegister(addr byte, offset int) (byte, error) {
	return f.reg[offset], nil
}
func (f *fakeModule) WriteRegister(addr byte, offset int, value byte) error {
	f.reg[offset] = value
	return nil
}
func (f *fakeModule) ReadBlock(addr byte, offset, length int) ([]byte, error) {
	out := make([]byte, length)
	for i := range out {
		out[i] = f.reg[offset+i]
	}
	return out, nil
}
func (f *fakeModule) WriteBlock(addr byte, offset int, data []byte) error {
	for i, b := range data {
		f.reg[offset+i] = b
	}
	return nil
}
func (f *fakeModule) PresenceSignal() gpio.PinOut { return f.presence }
func (f *fakeModule) Close() error                { f.closed = true; return nil }

func TestAttachAssertsPresence(t *testing.T) {
	fab := NewFabric()
	m := newFakeModule()
	if err := fab.Attach(0, m); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if m.presence.level != gpio.Low {
		t.Fatalf("ModPrsL = %v, want Low (present)", m.presence.level)
	}
}

func TestDetachAssertsAbsenceAndCloses(t *testing.T) {
	fab := NewFabric()
	m := newFakeModule()
	_ = fab.Attach(0, m)
	if err := fab.Detach(0); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if m.presence.level != gpio.High {
		t.Fatalf("ModPrsL = %v, want High (absent)", m.presence.level)
	}
	if !m.closed {
		t.Fatal("module was not closed on detach")
	}
}

func TestReadWriteRouteToAttachedSlot(t *testing.T) {
	fab := NewFabric()
	m := newFakeModule()
	_ = fab.Attach(3, m)

	if err := fab.WriteRegister(3, 0xA0, 10, 0x7F); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	got, err := fab.ReadRegister(3, 0xA0, 10)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if got != 0x7F {
		t.Fatalf("ReadRegister = %#x, want 0x7F", got)
	}
}

func TestNoModuleAtSlot(t *testing.T) {
	fab := NewFabric()
	if _, err := fab.ReadRegister(0, 0xA0, 0); err == nil {
		t.Fatal("ReadRegister on empty slot = nil, want ErrNoModule")
	}
}

func TestSlotOccupiedRejectsSecondAttach(t *testing.T) {
	fab := NewFabric()
	_ = fab.Attach(0, newFakeModule())
	if err := fab.Attach(0, newFakeModule()); err == nil {
		t.Fatal("second Attach on occupied slot = nil, want ErrSlotOccupied")
	}
}

func TestSlotBusTxWritesThenReadsAtOffset(t *testing.T) {
	fab := NewFabric()
	_ = fab.Attach(1, newFakeModule())
	sb := fab.SlotBus(1)

	if err := sb.Tx(0xA0, []byte{5, 0x11, 0x22}, nil); err != nil {
		t.Fatalf("Tx(write): %v", err)
	}
	got := make([]byte, 2)
	if err := sb.Tx(0xA0, []byte{5}, got); err != nil {
		t.Fatalf("Tx(read): %v", err)
	}
	if got[0] != 0x11 || got[1] != 0x22 {
		t.Fatalf("Tx read back = % x, want [11 22]", got)
	}
}

func TestSlotBusTxRejectsEmptyWrite(t *testing.T) {
	fab := NewFabric()
	_ = fab.Attach(2, newFakeModule())
	sb := fab.SlotBus(2)
	if err := sb.Tx(0xA0, nil, make([]byte, 1)); err == nil {
		t.Fatal("Tx with empty w = nil, want ErrEmptyWrite")
	}
}
