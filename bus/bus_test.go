package bus

import (
	"testing"

	"github.com/applegs/w65c816/clock"
	"github.com/applegs/w65c816/memory"
)

type fakeMMIO struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newFakeMMIO() *fakeMMIO {
	return &fakeMMIO{writes: map[uint16]uint8{}}
}

func (f *fakeMMIO) MMIORead(bank uint8, addr uint16, flags AccessFlags) uint8 {
	f.reads = append(f.reads, addr)
	return 0x55
}

func (f *fakeMMIO) MMIOWrite(bank uint8, addr uint16, val uint8) {
	f.writes[addr] = val
}

// languageCardMMIO simulates the IIgs language-card soft switch at $C08B:
// a write there swaps bank 0x00's $D000-$FFFF pages from ROM to a private
// RAM bank by calling RefreshBankMap, the way a real aux/shadow soft-switch
// handler would.
type languageCardMMIO struct {
	bm  *BankMap
	ram memory.Bank
}

func (l *languageCardMMIO) MMIORead(bank uint8, addr uint16, flags AccessFlags) uint8 { return 0 }

func (l *languageCardMMIO) MMIOWrite(bank uint8, addr uint16, val uint8) {
	if addr == 0xC08B {
		l.bm.RefreshBankMap(0x00, 0xD0, 0x30, FastRAM, l.ram, 0, false)
	}
}

type fakeGate struct{ slow bool }

func (g fakeGate) Slow() bool { return g.slow }

func newTestController(t *testing.T, mmio MMIO, gate SpeedGate) (*Controller, memory.Bank) {
	t.Helper()
	ram, err := memory.NewRAM(1 << 16)
	if err != nil {
		t.Fatalf("NewRAM: %v", err)
	}
	clk, err := clock.New(1, 4)
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	bm := NewBankMap()
	bm.MapBank(0x00, FastRAM, ram, false)
	bm.MapBank(0xE0, SlowRAM, ram, false)
	bm.MapPage(0x00, 0xC0, IOGate, nil, 0, false)
	rom, err := memory.NewROM([]uint8{0xDE, 0xAD})
	if err != nil {
		t.Fatalf("NewROM: %v", err)
	}
	bm.MapBank(0xFF, ROM, rom, true)
	return NewController(clk, bm, mmio, gate), ram
}

func TestNewBankMapDefaultsEmpty(t *testing.T) {
	m := NewBankMap()
	e := m.resolve(0x42, 0x1234)
	if e.kind != Empty || !e.readOnly {
		t.Errorf("fresh BankMap entry = %+v, want Empty/readOnly", e)
	}
}

func TestReadWriteFastRAM(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	ctrl.Write(0x42, 0x00, 0x1000, Data)
	if got, want := ctrl.Read(0x00, 0x1000, Data), uint8(0x42); got != want {
		t.Errorf("Read(0,0x1000) = %#02x, want %#02x", got, want)
	}
	if got, want := ctrl.CyclesSpent(), uint64(2); got != want {
		t.Errorf("CyclesSpent() = %d, want %d", got, want)
	}
}

func TestSlowBankChargesSlowStep(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	ctrl.Read(0xE0, 0x0000, Data)
	if got, want := ctrl.clk.Timestamp(), uint64(4); got != want {
		t.Errorf("slow RAM read timestamp = %d, want %d (slowStep)", got, want)
	}
}

func TestFastBankChargesFastStep(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	ctrl.Read(0x00, 0x0000, Data)
	if got, want := ctrl.clk.Timestamp(), uint64(1); got != want {
		t.Errorf("fast RAM read timestamp = %d, want %d (fastStep)", got, want)
	}
}

func TestReadOnlyWriteDropped(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	before := ctrl.Read(0xFF, 0x0000, Data)
	ctrl.Write(0x00, 0xFF, 0x0000, Data)
	after := ctrl.Read(0xFF, 0x0000, Data)
	if before != after {
		t.Errorf("write to ROM changed its contents: %#02x -> %#02x", before, after)
	}
}

func TestUnmappedReadReturnsZero(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	if got, want := ctrl.Read(0x7F, 0x4000, Data), uint8(0); got != want {
		t.Errorf("unmapped Read = %#02x, want %#02x", got, want)
	}
}

func TestIOGateForwardsToMMIO(t *testing.T) {
	mmio := newFakeMMIO()
	ctrl, _ := newTestController(t, mmio, nil)
	got := ctrl.Read(0x00, 0xC012, Data)
	if got != 0x55 {
		t.Errorf("Read from I/O gate = %#02x, want %#02x", got, 0x55)
	}
	if len(mmio.reads) != 1 || mmio.reads[0] != 0xC012 {
		t.Errorf("mmio.reads = %v, want [0xC012]", mmio.reads)
	}
	ctrl.Write(0xAB, 0x00, 0xC013, Data)
	if mmio.writes[0xC013] != 0xAB {
		t.Errorf("mmio.writes[0xC013] = %#02x, want 0xAB", mmio.writes[0xC013])
	}
}

func TestIOGateChargesSlowStep(t *testing.T) {
	mmio := newFakeMMIO()
	ctrl, _ := newTestController(t, mmio, nil)
	ctrl.Read(0x00, 0xC012, Data)
	if got, want := ctrl.clk.Timestamp(), uint64(4); got != want {
		t.Errorf("I/O page read timestamp = %d, want %d (slowStep)", got, want)
	}
}

func TestSpeedGateForcesSlow(t *testing.T) {
	ctrl, _ := newTestController(t, nil, fakeGate{slow: true})
	ctrl.Read(0x00, 0x0000, Data)
	if got, want := ctrl.clk.Timestamp(), uint64(4); got != want {
		t.Errorf("gated fast RAM read timestamp = %d, want %d (slowStep)", got, want)
	}
	ctrl.InternalCycle()
	if got, want := ctrl.clk.Timestamp(), uint64(8); got != want {
		t.Errorf("gated InternalCycle timestamp = %d, want %d", got, want)
	}
}

func TestPeekPokeBypassClock(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	before := ctrl.CyclesSpent()
	ctrl.PokeBank(0x00, 0x2000, 0x77)
	if got, want := ctrl.PeekBank(0x00, 0x2000), uint8(0x77); got != want {
		t.Errorf("PeekBank = %#02x, want %#02x", got, want)
	}
	if ctrl.CyclesSpent() != before {
		t.Errorf("PeekBank/PokeBank charged %d cycles, want 0", ctrl.CyclesSpent()-before)
	}
}

func TestPeekIOGateReturnsZeroWithoutInvokingMMIO(t *testing.T) {
	mmio := newFakeMMIO()
	ctrl, _ := newTestController(t, mmio, nil)
	if got, want := ctrl.PeekBank(0x00, 0xC012), uint8(0); got != want {
		t.Errorf("PeekBank on I/O page = %#02x, want %#02x", got, want)
	}
	if len(mmio.reads) != 0 {
		t.Errorf("PeekBank invoked MMIORead %d times, want 0", len(mmio.reads))
	}
}

func TestDumpBankPage(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	for i := 0; i < 512; i++ {
		ctrl.PokeBank(0x00, uint16(0x3000+i), uint8(i))
	}
	out := make([]uint8, 512)
	ctrl.DumpBankPage(0x00, 0x30, 2, out)
	for i := 0; i < 512; i++ {
		if out[i] != uint8(i) {
			t.Fatalf("out[%d] = %#02x, want %#02x", i, out[i], uint8(i))
		}
	}
}

func TestRefreshBankMapSwapsLanguageCardRegion(t *testing.T) {
	bm := NewBankMap()
	rom, err := memory.NewROM(make([]uint8, 1<<16))
	if err != nil {
		t.Fatalf("NewROM: %v", err)
	}
	bm.MapBank(0x00, ROM, rom, true)
	bm.MapPage(0x00, 0xC0, IOGate, nil, 0, false)

	ram, err := memory.NewRAM(1 << 16)
	if err != nil {
		t.Fatalf("NewRAM: %v", err)
	}
	mmio := &languageCardMMIO{bm: bm, ram: ram}
	clk, err := clock.New(1, 2)
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	ctrl := NewController(clk, bm, mmio, nil)

	before := ctrl.Read(0x00, 0xD000, Data)
	if before != 0x00 {
		t.Fatalf("bank 0 $D000 before soft switch = %#02x, want 0x00 (ROM)", before)
	}
	ctrl.Write(0x42, 0x00, 0xC08B, Data) // trip the language-card soft switch

	ctrl.Write(0x99, 0x00, 0xD000, Data)
	if got, want := ctrl.Read(0x00, 0xD000, Data), uint8(0x99); got != want {
		t.Errorf("bank 0 $D000 after soft switch = %#02x, want %#02x (RAM)", got, want)
	}
	if got, want := ctrl.Read(0x00, 0xCFFF, Data), uint8(0x00); got != want {
		t.Errorf("bank 0 $CFFF after soft switch = %#02x, want %#02x (still ROM)", got, want)
	}
}

func TestDumpBankPageStopsAtShortBuffer(t *testing.T) {
	ctrl, _ := newTestController(t, nil, nil)
	out := make([]uint8, 100)
	// Must not panic despite out being shorter than one full page.
	ctrl.DumpBankPage(0x00, 0x30, 2, out)
}
