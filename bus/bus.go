// Package bus implements the 65816's 24 bit segmented address space: a
// 256 entry bank map, the page-level remapping each bank can carry (for
// language-card banks, aux memory, and the I/O window), and the single
// read/write gateway the cpu package drives. This generalizes the
// teacher's memory.Bank chaining (memory/memory.go, atari2600/cart.go bank
// switching) from a single flat 64 KiB space to a full bank:page table
// whose entries are rewritten at runtime by soft-switch writes, the way
// atari2600's basicCart swaps ROM windows but now keyed by a dynamic
// machine-state callback instead of a fixed mask.
package bus

import (
	"fmt"

	"github.com/applegs/w65c816/clock"
	"github.com/applegs/w65c816/memory"
)

// AccessFlags qualifies a bus cycle so both the bank map and an MMIO
// collaborator can special-case it.
type AccessFlags int

const (
	Data        AccessFlags = iota // plain operand/data read or write
	OpcodeFetch                    // opcode byte fetch
	VectorPull                     // interrupt vector fetch
	Stack                          // push/pull
	NoOp                           // suppress read side effects (peek)
)

// Kind enumerates what a page in the bank map currently resolves to.
type Kind int

const (
	Empty Kind = iota
	FastRAM
	SlowRAM
	ROM
	IOGate
)

// pageEntry is one 256 byte page's current mapping. base is added to the
// low byte of the address before indexing into bank, which lets several
// pages alias into different offsets of the same underlying memory.Bank
// (language-card bank 1 vs bank 2 sharing one physical RAM array, aux
// memory mirroring main memory's layout, etc).
type pageEntry struct {
	kind     Kind
	bank     memory.Bank
	base     uint16
	readOnly bool
}

// MMIO is the collaborator the bus forwards I/O-page accesses to: an
// external peripheral-side interface the host wires in. The core never
// implements it itself.
type MMIO interface {
	// MMIORead services a read that landed on an I/O page.
	MMIORead(bank uint8, addr uint16, flags AccessFlags) uint8
	// MMIOWrite services a write that landed on an I/O page. Implementations
	// must not fail: an I/O write the host can't service should be a no-op,
	// never an error returned to the executing instruction.
	MMIOWrite(bank uint8, addr uint16, val uint8)
}

// SpeedGate reports whether the bus is currently forced to slow-speed
// regardless of which bank is being accessed (IIgs disk-motor-on and
// shadow-register gating). A nil gate behaves as "never forces slow".
type SpeedGate interface {
	Slow() bool
}

// BankMap is the flat 256 x 256 bank/page descriptor table.
type BankMap struct {
	pages [256][256]pageEntry
}

// NewBankMap returns a map with every page Empty.
func NewBankMap() *BankMap {
	m := &BankMap{}
	for b := range m.pages {
		for p := range m.pages[b] {
			m.pages[b][p] = pageEntry{kind: Empty, bank: memory.Empty, readOnly: true}
		}
	}
	return m
}

// MapPage installs a mapping for a single bank:page (addr>>8 within bank).
// base is added to the low byte offset before indexing into bk; pass 0 for
// a direct 1:1 mapping.
func (m *BankMap) MapPage(bank, page uint8, kind Kind, bk memory.Bank, base uint16, readOnly bool) {
	m.pages[bank][page] = pageEntry{kind: kind, bank: bk, base: base, readOnly: readOnly}
}

// MapBank installs the same mapping across every page of one bank; a
// convenience for the common case of a bank backed by one flat RAM/ROM
// image with no per-page remapping.
func (m *BankMap) MapBank(bank uint8, kind Kind, bk memory.Bank, readOnly bool) {
	for p := 0; p < 256; p++ {
		m.pages[bank][p] = pageEntry{kind: kind, bank: bk, readOnly: readOnly}
	}
}

func (m *BankMap) resolve(bank uint8, addr uint16) pageEntry {
	return m.pages[bank][addr>>8]
}

// Controller is the single read/write gateway the cpu package drives.
// Every bus access passes through here exactly once; no code holds raw
// pointers into RAM across an instruction.
type Controller struct {
	clk   *clock.Clock
	banks *BankMap
	mmio  MMIO
	gate  SpeedGate
}

// NewController wires a BankMap, Clock and MMIO collaborator together.
// gate may be nil.
func NewController(clk *clock.Clock, banks *BankMap, mmio MMIO, gate SpeedGate) *Controller {
	return &Controller{clk: clk, banks: banks, mmio: mmio, gate: gate}
}

// BankMap exposes the underlying map so a caller that already holds page
// entries it built up front (machine.Initialize's startup wiring), or an
// MMIO collaborator reacting to a soft-switch write, can install new
// mappings via RefreshBankMap/MapPage/MapBank.
func (c *Controller) BankMap() *BankMap { return c.banks }

// RefreshBankMap installs a new mapping for pageCount consecutive pages
// starting at bank:startPage, wrapping within the bank the way a real bank
// byte would. This is the hook an MMIO collaborator's MMIOWrite
// implementation calls into (via Controller.BankMap()) immediately after a
// write that moves language-card, aux-bank, or shadow mapping — e.g. the
// IIgs's $C080-$C08F language-card soft switches swapping bank 0x00's
// $D000-$FFFF pages between ROM and one of two RAM banks — so the very next
// bus access after the soft-switch write sees the new mapping instead of
// the stale one.
func (m *BankMap) RefreshBankMap(bank uint8, startPage uint8, pageCount int, kind Kind, bk memory.Bank, base uint16, readOnly bool) {
	for p := 0; p < pageCount; p++ {
		m.MapPage(bank, startPage+uint8(p), kind, bk, base, readOnly)
	}
}

// CyclesSpent returns the clock's running cycle total, for callers that want
// to measure how many cycles a span of bus activity consumed.
func (c *Controller) CyclesSpent() uint64 { return c.clk.CyclesSpent() }

func (c *Controller) slowAccess(e pageEntry) bool {
	if c.gate != nil && c.gate.Slow() {
		return true
	}
	return e.kind == SlowRAM || e.kind == IOGate
}

// Read resolves bank:addr through the bank map and returns the byte there,
// forwarding to the MMIO collaborator for I/O-page hits. Every call charges
// exactly one cycle on the clock at the speed appropriate for the page.
func (c *Controller) Read(bank uint8, addr uint16, flags AccessFlags) uint8 {
	e := c.banks.resolve(bank, addr)
	c.clk.Advance(c.slowAccess(e))
	if e.kind == IOGate {
		return c.mmio.MMIORead(bank, addr, flags)
	}
	return e.bank.Read(addr + e.base)
}

// Write resolves bank:addr and stores value there if the page is writable,
// forwarding to the MMIO collaborator for I/O-page hits. Writes to
// read-only or unmapped pages are silently dropped but still charge a
// cycle, the same as real hardware driving a bus cycle to a location that
// ignores it.
func (c *Controller) Write(value uint8, bank uint8, addr uint16, flags AccessFlags) {
	e := c.banks.resolve(bank, addr)
	c.clk.Advance(c.slowAccess(e))
	if e.kind == IOGate {
		c.mmio.MMIOWrite(bank, addr, value)
		return
	}
	if e.readOnly {
		return
	}
	e.bank.Write(addr+e.base, value)
}

// InternalCycle charges one non-bus cycle (opcode internal processing with
// no memory access) at fast speed unless the speed gate forces slow.
func (c *Controller) InternalCycle() {
	slow := c.gate != nil && c.gate.Slow()
	c.clk.Advance(slow)
}

// PokeBank writes a raw byte into bank:addr, bypassing the clock and the
// MMIO gateway. This is the primitive behind host-side program/ROM loading
// (spec's load_intel_hex): a loader isn't a bus cycle the running program
// issued, so it must not perturb CyclesSpent or trip an I/O side effect.
// Writes to a read-only or I/O page are dropped, same as Write.
func (c *Controller) PokeBank(bank uint8, addr uint16, val uint8) {
	e := c.banks.resolve(bank, addr)
	if e.kind == IOGate || e.readOnly {
		return
	}
	e.bank.Write(addr+e.base, val)
}

// PeekBank reads a raw byte from bank:addr, bypassing the clock and the
// MMIO gateway. I/O pages read back as 0 rather than invoking the MMIO
// collaborator, since a debugger peek must never trigger a read-sensitive
// device side effect.
func (c *Controller) PeekBank(bank uint8, addr uint16) uint8 {
	e := c.banks.resolve(bank, addr)
	if e.kind == IOGate {
		return 0
	}
	return e.bank.Read(addr + e.base)
}

// DumpBankPage copies pageCount consecutive 256 byte pages starting at
// bank:page into out (bank:page+pageCount-1 wraps within the bank, as the
// hardware's own bank byte would). out must be at least pageCount*256
// bytes; DumpBankPage stops early if it is not. Like PeekBank, this never
// charges cycles or reaches the MMIO gateway.
func (c *Controller) DumpBankPage(bank uint8, page uint8, pageCount int, out []uint8) {
	for p := 0; p < pageCount; p++ {
		base := p * 256
		if base >= len(out) {
			return
		}
		for o := 0; o < 256; o++ {
			idx := base + o
			if idx >= len(out) {
				return
			}
			out[idx] = c.PeekBank(bank, uint16(page+uint8(p))<<8|uint16(o))
		}
	}
}

func (e pageEntry) String() string {
	return fmt.Sprintf("{kind:%d readOnly:%v base:%#x}", e.kind, e.readOnly, e.base)
}
