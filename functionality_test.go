// Package functionality end-to-end exercises the assembled machine: a ROM
// image, the bank map Initialize builds from it, and the cpu package
// actually executing instructions against that map, the way a host
// embedding this module would drive it.
package functionality

import (
	"testing"

	"github.com/applegs/w65c816/machine"
)

// romBank is the only bank a 64 KiB ROM image occupies: Initialize maps it
// at the top of bank space, 0x100 - 1 = 0xFF.
const romBank = 0xFF

// newTestMachine builds a minimal but complete IIgs-shaped machine (a blank
// 64 KiB ROM plus the 4 bank fast-RAM floor), pokes program into the ROM
// image at loadAddr, and leaves the chip sitting at PBR:PC = romBank:loadAddr
// ready to run it. Overriding PC/PBR directly after Initialize's own reset
// keeps each test independent of where the reset vector happens to point.
func newTestMachine(t *testing.T, loadAddr uint16, program []uint8) *machine.Machine {
	t.Helper()
	rom := make([]uint8, 1<<16)
	copy(rom[loadAddr:], program)
	m, err := machine.Initialize(machine.Def{ROMImage: rom, FastRAMBankCount: 4})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.Chip.PBR = romBank
	m.Chip.PC = loadAddr
	return m
}

// runToHalt steps the chip until STP clears Enabled, or fails the test if
// that takes more than max instructions (a runaway program).
func runToHalt(t *testing.T, m *machine.Machine, max int) {
	t.Helper()
	for i := 0; i < max; i++ {
		if !m.Chip.Enabled {
			return
		}
		if err := m.Chip.StepOneInstruction(); err != nil {
			t.Fatalf("StepOneInstruction: %v", err)
		}
	}
	t.Fatalf("program did not STP within %d instructions", max)
}

// TestMachineRunsArithmeticProgramToHalt sums 1..5 in 8 bit emulation mode,
// stores the result to direct page 0, and stops with STP — the first thing
// a host embedding this module would do to sanity check a freshly loaded
// ROM image.
func TestMachineRunsArithmeticProgramToHalt(t *testing.T) {
	m := newTestMachine(t, 0x8000, []uint8{
		0xA9, 0x01, // LDA #$01
		0x18,       // CLC
		0x69, 0x02, // ADC #$02
		0x69, 0x03, // ADC #$03
		0x69, 0x04, // ADC #$04
		0x69, 0x05, // ADC #$05
		0x85, 0x00, // STA $00
		0xDB, // STP
	})
	runToHalt(t, m, 100)

	if got, want := m.FastRAM[0].Read(0x0000), uint8(15); got != want {
		t.Errorf("direct page $00 = %#02x, want %#02x (1+2+3+4+5)", got, want)
	}
	if m.Chip.A != 0x000F {
		t.Errorf("A = %#04x, want 0x000F", m.Chip.A)
	}
}

// TestMachineCrossesBankViaLongAddressing checks that a JSL/RTL pair set up
// entirely in ROM, operating on a fast-RAM target in a different bank, moves
// a value across the bank boundary the way a real 65816 program linking a
// far subroutine would. Both routines are written into the ROM image up
// front rather than poked in afterward, since ROM is read-only once mapped.
func TestMachineCrossesBankViaLongAddressing(t *testing.T) {
	rom := make([]uint8, 1<<16)
	copy(rom[0x8000:], []uint8{
		0x22, 0x10, 0x80, 0xFF, // JSL $FF8010
		0xDB, // STP
	})
	copy(rom[0x8010:], []uint8{
		0xA9, 0x42, // LDA #$42
		0x8F, 0x00, 0x00, 0x01, // STA $010000 (fast-RAM bank 1, offset 0)
		0x6B, // RTL
	})
	m, err := machine.Initialize(machine.Def{ROMImage: rom, FastRAMBankCount: 4})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.Chip.PBR = romBank
	m.Chip.PC = 0x8000
	runToHalt(t, m, 100)

	if got, want := m.FastRAM[1].Read(0x0000), uint8(0x42); got != want {
		t.Errorf("fast RAM bank 1 offset 0 = %#02x, want %#02x", got, want)
	}
}

// TestMachineLoadsAndRunsIntelHexProgram mirrors the way a host loads a
// standalone test program without shipping it as part of the boot ROM:
// LoadIntelHex pokes it straight into a fast-RAM bank, and execution starts
// wherever the caller points PC.
func TestMachineLoadsAndRunsIntelHexProgram(t *testing.T) {
	rom := make([]uint8, 1<<16)
	m, err := machine.Initialize(machine.Def{ROMImage: rom, FastRAMBankCount: 4})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	program := []uint8{0xA9, 0x07, 0x85, 0x10, 0xDB}
	text := intelHexFor(0x1000, program)
	if err := m.Chip.LoadIntelHex(text, 0x00); err != nil {
		t.Fatalf("LoadIntelHex: %v", err)
	}

	m.Chip.PBR = 0x00
	m.Chip.PC = 0x1000
	runToHalt(t, m, 100)

	if got, want := m.FastRAM[0].Read(0x0010), uint8(0x07); got != want {
		t.Errorf("fast RAM bank 0 offset 0x10 = %#02x, want %#02x", got, want)
	}
}

// intelHexFor builds a minimal valid Intel-HEX data-record-plus-EOF text for
// program loaded at addr, so tests can exercise the real Parse/Load path
// instead of hand-deriving checksum bytes inline.
func intelHexFor(addr uint16, program []uint8) string {
	length := uint8(len(program))
	const recData = 0x00
	sum := length + uint8(addr>>8) + uint8(addr) + recData
	for _, b := range program {
		sum += b
	}
	checksum := uint8(-int8(sum))

	line := []uint8{length, uint8(addr >> 8), uint8(addr), recData}
	line = append(line, program...)
	line = append(line, checksum)

	out := ":"
	for _, b := range line {
		out += hexDigits(b)
	}
	return out + "\n:00000001FF"
}

func hexDigits(b uint8) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}

// TestMachineRejectsInsufficientRAMAtTopLevel re-confirms Initialize's
// validation from the caller's-eye view: a host handing it a def with too
// little fast RAM gets a typed error it can match against, not a panic deep
// inside bank setup.
func TestMachineRejectsInsufficientRAMAtTopLevel(t *testing.T) {
	_, err := machine.Initialize(machine.Def{ROMImage: []uint8{0x00}, FastRAMBankCount: 1})
	if _, ok := err.(machine.ErrInsufficientRAM); !ok {
		t.Errorf("Initialize error = %T, want machine.ErrInsufficientRAM", err)
	}
}
