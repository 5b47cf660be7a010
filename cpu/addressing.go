package cpu

import "github.com/applegs/w65c816/bus"

// Addressing-mode helpers. Each one issues exactly the bus reads real
// hardware would for that mode (pointer low byte, then high byte, then
// bank byte for long forms),
// so cycle counts fall out of how many bus.Controller.Read/Write/
// InternalCycle calls actually happen rather than being looked up from a
// separate timing table. Each mode defines how many operand bytes to
// fetch, how many internal cycles to charge, and whether the formed
// address is in bank 0, DBR, an operand-supplied bank, or PBR.

// fetchPCByte reads one byte at PBR:PC and advances PC. PC wraps within
// the bank: the code bank does not auto-increment on PC overflow.
func (c *Chip) fetchPCByte(flags bus.AccessFlags) uint8 {
	v := c.bus.Read(c.PBR, c.PC, flags)
	c.PC++
	return v
}

func (c *Chip) fetchOperandByte() uint8 { return c.fetchPCByte(bus.Data) }

// fetchOperandWord reads a little-endian 16 bit operand following the
// opcode byte.
func (c *Chip) fetchOperandWord() uint16 {
	lo := c.fetchOperandByte()
	hi := c.fetchOperandByte()
	return uint16(lo) | uint16(hi)<<8
}

// readWidth reads an 8 or 16 bit value at bank:addr, charging one extra
// bus cycle for the high byte when 16 bit. The high byte is read from
// addr+1 in the same bank (16 bit wrap within the bank, matching how the
// 816 forms multi-byte operands).
func (c *Chip) readWidth(bank uint8, addr uint16, width8 bool, flags bus.AccessFlags) uint16 {
	lo := c.bus.Read(bank, addr, flags)
	if width8 {
		return uint16(lo)
	}
	hi := c.bus.Read(bank, addr+1, flags)
	return uint16(lo) | uint16(hi)<<8
}

// writeWidth writes an 8 or 16 bit value at bank:addr, low byte first.
func (c *Chip) writeWidth(bank uint8, addr uint16, val uint16, width8 bool, flags bus.AccessFlags) {
	c.bus.Write(uint8(val), bank, addr, flags)
	if !width8 {
		c.bus.Write(uint8(val>>8), bank, addr+1, flags)
	}
}

// dpOffset returns D plus a direct-page offset, applying the zero-page-style
// wraparound 65816 hardware exhibits only when D's low byte is zero (spec
// section 4.2): in that case index addition wraps within the page instead
// of carrying into D's high byte.
func (c *Chip) dpOffset(off uint8, index uint16) uint16 {
	if c.D&0x00FF == 0 {
		return c.D + uint16(off+uint8(index))
	}
	return c.D + uint16(off) + index
}

// chargeDPPenalty applies the documented +1 cycle whenever D's low byte is
// non-zero.
func (c *Chip) chargeDPPenalty() {
	if c.D&0x00FF != 0 {
		c.bus.InternalCycle()
	}
}

// addrResult names the (bank, address) an addressing mode resolved to, and
// whether a page boundary was crossed while forming it (used to charge
// the read-only page-crossing penalty).
type addrResult struct {
	bank     uint8
	addr     uint16
	crossed  bool
}

func (c *Chip) addrDirectPage() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	return addrResult{bank: 0, addr: c.dpOffset(off, 0)}
}

func (c *Chip) addrDirectPageX() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	c.bus.InternalCycle() // index addition cycle
	return addrResult{bank: 0, addr: c.dpOffset(off, c.X)}
}

func (c *Chip) addrDirectPageY() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	c.bus.InternalCycle()
	return addrResult{bank: 0, addr: c.dpOffset(off, c.Y)}
}

func (c *Chip) addrAbsolute() addrResult {
	a := c.fetchOperandWord()
	return addrResult{bank: c.DBR, addr: a}
}

func (c *Chip) addrAbsoluteLong() addrResult {
	a := c.fetchOperandWord()
	bank := c.fetchOperandByte()
	return addrResult{bank: bank, addr: a}
}

func (c *Chip) addrAbsoluteX() addrResult {
	a := c.fetchOperandWord()
	sum := uint32(a) + uint32(c.X)
	return addrResult{bank: c.DBR, addr: uint16(sum), crossed: sum>>8 != uint32(a)>>8}
}

func (c *Chip) addrAbsoluteY() addrResult {
	a := c.fetchOperandWord()
	sum := uint32(a) + uint32(c.Y)
	return addrResult{bank: c.DBR, addr: uint16(sum), crossed: sum>>8 != uint32(a)>>8}
}

func (c *Chip) addrAbsoluteLongX() addrResult {
	a := c.fetchOperandWord()
	bank := c.fetchOperandByte()
	sum := uint32(a) + uint32(c.X)
	bank += uint8(sum >> 16)
	return addrResult{bank: bank, addr: uint16(sum)}
}

// addrDPIndirect reads a two byte pointer out of the direct page and forms
// an address in DBR: (dp).
func (c *Chip) addrDPIndirect() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	ptr := c.dpOffset(off, 0)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	return addrResult{bank: c.DBR, addr: uint16(lo) | uint16(hi)<<8}
}

// addrDPIndirectLong reads a three byte pointer (bank included): [dp].
func (c *Chip) addrDPIndirectLong() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	ptr := c.dpOffset(off, 0)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	bank := c.bus.Read(0, ptr+2, bus.Data)
	return addrResult{bank: bank, addr: uint16(lo) | uint16(hi)<<8}
}

// addrDPIndirectX forms (dp,X): the index is applied to the pointer
// address before it's read, and the result lives in DBR.
func (c *Chip) addrDPIndirectX() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	c.bus.InternalCycle()
	ptr := c.dpOffset(off, c.X)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	return addrResult{bank: c.DBR, addr: uint16(lo) | uint16(hi)<<8}
}

// addrDPIndirectY forms (dp),Y: the pointer is read first, then Y is
// added to the resulting DBR:addr, possibly crossing a bank boundary.
func (c *Chip) addrDPIndirectY() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	ptr := c.dpOffset(off, 0)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	base := uint16(lo) | uint16(hi)<<8
	sum := uint32(base) + uint32(c.Y)
	return addrResult{bank: c.DBR + uint8(sum>>16), addr: uint16(sum), crossed: sum>>8 != uint32(base)>>8}
}

// addrDPIndirectLongY forms [dp],Y: a long (bank-included) pointer plus Y,
// with Y allowed to carry into the bank byte.
func (c *Chip) addrDPIndirectLongY() addrResult {
	off := c.fetchOperandByte()
	c.chargeDPPenalty()
	ptr := c.dpOffset(off, 0)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	bank := c.bus.Read(0, ptr+2, bus.Data)
	base := uint16(lo) | uint16(hi)<<8
	sum := uint32(base) + uint32(c.Y)
	bank += uint8(sum >> 16)
	return addrResult{bank: bank, addr: uint16(sum)}
}

// addrStackRelative forms d,s: an unsigned byte offset from S, always in
// bank 0.
func (c *Chip) addrStackRelative() addrResult {
	off := c.fetchOperandByte()
	c.bus.InternalCycle()
	return addrResult{bank: 0, addr: c.S + uint16(off)}
}

// addrStackRelativeIndirectY forms (d,s),y: read a pointer out of the
// stack-relative address, then add Y with the result living in DBR.
func (c *Chip) addrStackRelativeIndirectY() addrResult {
	off := c.fetchOperandByte()
	c.bus.InternalCycle()
	ptr := c.S + uint16(off)
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	c.bus.InternalCycle()
	base := uint16(lo) | uint16(hi)<<8
	sum := uint32(base) + uint32(c.Y)
	return addrResult{bank: c.DBR, addr: uint16(sum), crossed: sum > 0xFFFF}
}

// addrAbsoluteIndirect forms JMP (a): the pointer lives in bank 0
// regardless of DBR/PBR.
func (c *Chip) addrAbsoluteIndirect() addrResult {
	ptr := c.fetchOperandWord()
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	return addrResult{bank: 0, addr: uint16(lo) | uint16(hi)<<8}
}

// addrAbsoluteIndirectLong forms JMP [a]: a three byte pointer in bank 0,
// target bank included.
func (c *Chip) addrAbsoluteIndirectLong() addrResult {
	ptr := c.fetchOperandWord()
	lo := c.bus.Read(0, ptr, bus.Data)
	hi := c.bus.Read(0, ptr+1, bus.Data)
	bank := c.bus.Read(0, ptr+2, bus.Data)
	return addrResult{bank: bank, addr: uint16(lo) | uint16(hi)<<8}
}

// addrAbsoluteIndirectX forms JMP (a,X) / JSR (a,X): the pointer is
// indexed and read from the current program bank, since this mode exists
// for in-bank jump tables.
func (c *Chip) addrAbsoluteIndirectX() addrResult {
	base := c.fetchOperandWord()
	c.bus.InternalCycle()
	ptr := base + c.X
	lo := c.bus.Read(c.PBR, ptr, bus.Data)
	hi := c.bus.Read(c.PBR, ptr+1, bus.Data)
	return addrResult{bank: c.PBR, addr: uint16(lo) | uint16(hi)<<8}
}
