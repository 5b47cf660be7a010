// Package cpu implements the WDC 65C816 register file, decoder, executor
// and interrupt microcode used by the Apple IIgs core: a Chip struct holding
// registers and pin state, an Init/ChipDef pair for construction, typed
// error values for invalid states, and a single dispatch function keyed on
// the fetched opcode. Every load/store/ALU/compare operation consults the M
// or X status flag at runtime instead of assuming a fixed 8 bit path, and
// the chip carries a second operating mode (native) with its own
// stack/vector/PBR behavior layered on top of 6502-compatible emulation
// mode.
package cpu

import (
	"fmt"

	"github.com/applegs/w65c816/bus"
	"github.com/applegs/w65c816/intelhex"
	"github.com/applegs/w65c816/irq"
)

// Status register bit masks. In emulation mode bit 0x10
// is read back as B (break) when pushed rather than being the X flag;
// Emulation forces both M and X to 1 regardless of what's stored here.
const (
	PNegative = uint8(0x80)
	POverflow = uint8(0x40)
	PAccum8   = uint8(0x20) // M: 1 = 8 bit accumulator/memory
	PIndex8   = uint8(0x10) // X: 1 = 8 bit index registers (emulation: this bit position is B on push)
	PBreak    = uint8(0x10)
	PDecimal  = uint8(0x08)
	PIRQDis   = uint8(0x04)
	PZero     = uint8(0x02)
	PCarry    = uint8(0x01)
)

// Vector addresses, bank 0.
const (
	vecNativeCOP = uint16(0xFFE4)
	vecNativeBRK = uint16(0xFFE6)
	vecNativeNMI = uint16(0xFFEA)
	vecNativeIRQ = uint16(0xFFEE)
	vecEmuCOP    = uint16(0xFFF4)
	vecEmuNMI    = uint16(0xFFFA)
	vecEmuReset  = uint16(0xFFFC)
	vecEmuIRQBRK = uint16(0xFFFE)
)

// State is the coarse variant selecting what happens before the next
// opcode fetch.
type State int

const (
	Execute State = iota
	Reset
	IRQState
	NMIState
)

// InvalidCPUState reports an internal precondition failure (decoder bug,
// bad bookkeeping). Every one of the 256 opcodes is implemented so this
// should never surface in practice: the decode table is total, so
// dispatch never reaches its "unimplemented" branch.
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Trace is one instruction's trace record: built during execute, consumed
// by an optional callback before the next fetch.
type Trace struct {
	PBR     uint8
	PC      uint16
	Opcode  uint8
	Operand uint32
	Cycles  int
}

// TraceFunc is invoked once per completed instruction if installed via
// Chip.SetTraceFunc. It must not retain the Chip pointer passed to it
// beyond the call.
type TraceFunc func(c *Chip, t Trace)

// Chip is one 65816 core. It owns no memory directly; all access goes
// through the bus.Controller supplied at Init time.
type Chip struct {
	A, X, Y uint16
	S       uint16
	D       uint16
	PBR     uint8
	DBR     uint8
	PC      uint16
	P       uint8

	Emulation bool
	ReadyOut  bool // false while halted by WAI
	Enabled   bool // false while halted by STP
	resbIn    bool
	irqbIn    bool
	nmiEdge   bool // latched by SetNMI(true), cleared once serviced

	resetCountdown int

	state State

	bus *bus.Controller
	irq irq.Sender // optional external IRQ source polled in addition to SetIRQ

	lastFetchPBR uint8
	lastFetchPC  uint16

	trace TraceFunc
}

// ChipDef supplies everything Init needs to bring up a core.
type ChipDef struct {
	Bus *bus.Controller
	Irq irq.Sender // optional; polled alongside the explicit SetIRQ(level) line
}

// Init constructs a Chip wired to the given bus and runs the reset
// microcode to completion so it's immediately ready to fetch its first
// opcode. Registers start at zero before reset runs, rather than the
// power-on noise real silicon (and some emulators) exhibit: the IIgs ROM
// does not depend on that noise, and deterministic startup makes reset
// idempotence trivial to check from a known state.
func Init(def *ChipDef) (*Chip, error) {
	if def.Bus == nil {
		return nil, InvalidCPUState{"ChipDef.Bus must not be nil"}
	}
	c := &Chip{
		bus:      def.Bus,
		irq:      def.Irq,
		ReadyOut: true,
		Enabled:  true,
	}
	c.Reset()
	for c.state == Reset {
		if err := c.StepOneInstruction(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Reset asserts resb_in with no auto-deassert countdown: the core enters
// the Reset state and the very next StepOneInstruction call runs the reset
// microcode. ResetFor holds the core in Reset for a number of calls first.
func (c *Chip) Reset() {
	c.ResetFor(0)
}

// ResetFor is Reset with an explicit auto-deassert countdown: the next
// `cycles` calls to StepOneInstruction merely decrement a counter (spec
// section 5: "a simple countdown, not a timer") before the reset
// microcode itself runs on the following call.
func (c *Chip) ResetFor(cycles int) {
	c.resbIn = true
	c.resetCountdown = cycles
	c.state = Reset
}

// DeassertReset releases resb_in immediately regardless of any pending
// countdown; the next StepOneInstruction call runs the reset microcode.
func (c *Chip) DeassertReset() {
	c.resetCountdown = 0
}

// SetIRQ sets or clears the level-triggered IRQ line.
func (c *Chip) SetIRQ(level bool) {
	c.irqbIn = level
}

// SetNMI raises the edge-triggered NMI line. The edge latches until
// serviced; calling this with false is a no-op — NMI has no "clear" input
// on real hardware, it's purely edge sensed.
func (c *Chip) SetNMI(pulse bool) {
	if pulse {
		c.nmiEdge = true
	}
}

// ProgramCounterOfLastFetch returns the PBR:PC from which the most
// recently completed instruction's opcode byte was fetched.
func (c *Chip) ProgramCounterOfLastFetch() (uint8, uint16) {
	return c.lastFetchPBR, c.lastFetchPC
}

// SetTraceFunc installs (or, with nil, removes) the per-instruction trace
// callback.
func (c *Chip) SetTraceFunc(f TraceFunc) {
	c.trace = f
}

// State returns the current coarse execution state.
func (c *Chip) State() State {
	return c.state
}

// Halted reports whether STP has stopped the core.
func (c *Chip) Halted() bool {
	return !c.Enabled
}

// Waiting reports whether WAI is holding the core until an interrupt.
func (c *Chip) Waiting() bool {
	return !c.ReadyOut
}

// hexWriter adapts bus.Controller.PokeBank to intelhex.Writer, binding it
// to one destination bank: intelhex stays free of a bus import so it can
// be reused by a standalone loader that never builds a Chip.
type hexWriter struct {
	bus  *bus.Controller
	bank uint8
}

func (w hexWriter) Write(addr uint16, val uint8) {
	w.bus.PokeBank(w.bank, addr, val)
}

// LoadIntelHex parses text as Intel-HEX records and pokes every data
// record's bytes into bank, for loading a test program or ROM image
// without shelling out to an external converter (spec section 6). Loading
// bypasses the clock: it isn't a bus cycle the emulated program issued.
func (c *Chip) LoadIntelHex(text string, bank uint8) error {
	return intelhex.Load(text, hexWriter{bus: c.bus, bank: bank})
}

// DumpBankPage copies pageCount consecutive 256 byte pages starting at
// bank:page into out, for a host-side debugger or test harness (spec
// section 6). It never charges cycles or reaches the MMIO gateway.
func (c *Chip) DumpBankPage(bank uint8, page uint8, pageCount int, out []uint8) {
	c.bus.DumpBankPage(bank, page, pageCount, out)
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
