// Package machine assembles the bus, clock and cpu packages into the
// specific memory layout an Apple IIgs boots with: a ROM image mapped at
// the top of bank space, two dedicated slow-RAM banks at 0xE0/0xE1, and a
// caller-chosen number of fast-RAM banks starting at bank 0. This is the
// one place that knows what "the IIgs's bank map" looks like by default;
// bus itself only knows how to hold whatever mapping it's told to.
package machine

import (
	"fmt"

	"github.com/applegs/w65c816/bus"
	"github.com/applegs/w65c816/clock"
	"github.com/applegs/w65c816/cpu"
	"github.com/applegs/w65c816/irq"
	"github.com/applegs/w65c816/memory"
)

// minFastRAMBanks is the floor spec section 6 mandates: a IIgs with fewer
// than 4 fast-RAM banks (256 KiB) can't run the system ROM it ships with.
const minFastRAMBanks = 4

// maxFastRAMBanks is the size of the bank byte itself; bank 0 is always
// fast RAM and slow RAM claims 0xE0/0xE1, so Initialize rejects any count
// above maxFastRAMBanks-2. A count that still reaches 0xE0 or the ROM banks
// is accepted, and those bank numbers end up mapped to slow RAM or ROM,
// which Initialize maps after the fast-RAM banks.
const maxFastRAMBanks = 256

// slowRAMBankE0 and slowRAMBankE1 are the two fixed slow-RAM bank numbers
// on a real IIgs: the bank bytes the 65816 sees when the video firmware
// and auxiliary-memory soft switches select "bank E0/E1" rather than a
// number the host gets to choose.
const (
	slowRAMBankE0 = 0xE0
	slowRAMBankE1 = 0xE1
)

// ErrMissingROM reports that Initialize was given an empty ROM image.
type ErrMissingROM struct{}

func (ErrMissingROM) Error() string { return "machine: ROM image must not be empty" }

// ErrInsufficientRAM reports a fast-RAM bank count below the 4 bank floor.
type ErrInsufficientRAM struct{ Got int }

func (e ErrInsufficientRAM) Error() string {
	return fmt.Sprintf("machine: fast RAM bank count %d is below the minimum of %d", e.Got, minFastRAMBanks)
}

// ErrTooManyFastRAMBanks reports a fast-RAM bank count that would collide
// with the fixed slow-RAM banks at 0xE0/0xE1.
type ErrTooManyFastRAMBanks struct{ Got int }

func (e ErrTooManyFastRAMBanks) Error() string {
	return fmt.Sprintf("machine: fast RAM bank count %d collides with the fixed slow-RAM banks at 0xE0/0xE1", e.Got)
}

// Def supplies everything Initialize needs to build a machine.
type Def struct {
	// ROMImage is mapped read-only at the top of bank space, one 64 KiB
	// bank per 65536 image bytes (rounded up), so a ROM under 64 KiB still
	// occupies a whole bank the way the real firmware ROM does.
	ROMImage []uint8
	// FastRAMBankCount is the number of 64 KiB fast-RAM banks mapped
	// starting at bank 0x00. Must be between 4 and 256 minus the two
	// slow-RAM banks.
	FastRAMBankCount int
	// MMIO services any access landing on an I/O page. May be nil if the
	// caller never maps an IOGate page into the layout themselves.
	MMIO bus.MMIO
	// SpeedGate forces slow-bus timing independent of which bank is hit
	// (disk-motor-on, shadow register gating). May be nil.
	SpeedGate bus.SpeedGate
	// Irq is an optional external interrupt source polled alongside
	// Chip.SetIRQ.
	Irq irq.Sender
	// FastStep and SlowStep are the clock's two cycle sizes. Both default
	// to 1 and 2 respectively (i.e. slow RAM/I-O run at half the rate of
	// fast RAM) when left zero.
	FastStep, SlowStep uint64
}

// Machine is a fully wired IIgs-shaped core: a Chip ready to run, the
// Controller and BankMap underneath it, and the two slow-RAM banks handed
// back so a caller's MMIO implementation can alias into them (shadowed
// writes from fast RAM into slow RAM, the way the real video shadow
// registers work).
type Machine struct {
	Chip      *cpu.Chip
	Bus       *bus.Controller
	BankMap   *bus.BankMap
	Clock     *clock.Clock
	SlowRAME0 memory.Bank
	SlowRAME1 memory.Bank
	FastRAM   []memory.Bank
	// ROM holds one Bank per 64 KiB (or shorter, for a final partial) chunk
	// of Def.ROMImage, in image order; ROM[0] is mapped at the lowest ROM
	// bank number, ROM[len(ROM)-1] at bank 0xFF. A ROM image under 64 KiB
	// still yields a single-element slice.
	ROM []memory.Bank
}

// Initialize builds the default IIgs bank map and runs the chip's reset
// microcode to completion, mirroring spec section 6's
// initialize(rom_image, slow_ram_bank_e0, slow_ram_bank_e1,
// fast_ram_bank_count) entry point. It returns a typed error (ErrMissingROM
// / ErrInsufficientRAM / ErrTooManyFastRAMBanks) rather than a negative
// integer error code: the source's "magnitude identifies the error class"
// convention is exactly what Go's error types already give callers via a
// type switch or errors.As.
func Initialize(def Def) (*Machine, error) {
	if len(def.ROMImage) == 0 {
		return nil, ErrMissingROM{}
	}
	if def.FastRAMBankCount < minFastRAMBanks {
		return nil, ErrInsufficientRAM{def.FastRAMBankCount}
	}
	if def.FastRAMBankCount > maxFastRAMBanks-2 {
		return nil, ErrTooManyFastRAMBanks{def.FastRAMBankCount}
	}

	fastStep, slowStep := def.FastStep, def.SlowStep
	if fastStep == 0 {
		fastStep = 1
	}
	if slowStep == 0 {
		slowStep = 2
	}
	clk, err := clock.New(fastStep, slowStep)
	if err != nil {
		return nil, err
	}

	bm := bus.NewBankMap()

	fastRAM := make([]memory.Bank, def.FastRAMBankCount)
	for b := 0; b < def.FastRAMBankCount; b++ {
		ram, err := memory.NewRAM(1 << 16)
		if err != nil {
			return nil, err
		}
		ram.PowerOn()
		fastRAM[b] = ram
		bm.MapBank(uint8(b), bus.FastRAM, ram, false)
	}

	slowE0, err := memory.NewRAM(1 << 16)
	if err != nil {
		return nil, err
	}
	slowE1, err := memory.NewRAM(1 << 16)
	if err != nil {
		return nil, err
	}
	slowE0.PowerOn()
	slowE1.PowerOn()
	bm.MapBank(slowRAMBankE0, bus.SlowRAM, slowE0, false)
	bm.MapBank(slowRAMBankE1, bus.SlowRAM, slowE1, false)

	romBanks := (len(def.ROMImage) + 0xFFFF) / 0x10000
	startBank := 0x100 - romBanks
	rom := make([]memory.Bank, romBanks)
	for i := 0; i < romBanks; i++ {
		lo := i * 0x10000
		hi := lo + 0x10000
		if hi > len(def.ROMImage) {
			hi = len(def.ROMImage)
		}
		bank, err := memory.NewROM(def.ROMImage[lo:hi])
		if err != nil {
			return nil, err
		}
		rom[i] = bank
		bm.MapBank(uint8(startBank+i), bus.ROM, bank, true)
	}

	ctrl := bus.NewController(clk, bm, def.MMIO, def.SpeedGate)
	chip, err := cpu.Init(&cpu.ChipDef{Bus: ctrl, Irq: def.Irq})
	if err != nil {
		return nil, err
	}

	return &Machine{
		Chip:      chip,
		Bus:       ctrl,
		BankMap:   bm,
		Clock:     clk,
		SlowRAME0: slowE0,
		SlowRAME1: slowE1,
		FastRAM:   fastRAM,
		ROM:       rom,
	}, nil
}
