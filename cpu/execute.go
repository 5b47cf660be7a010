package cpu

import (
	"fmt"

	"github.com/applegs/w65c816/bus"
)

// dispatch carries out the instruction whose opcode byte has already been
// fetched (PC points at its first operand byte). It is the executor side of
// the decode table in decode.go: rather than a 256 case switch keyed on the
// raw opcode byte, cases are keyed on mnemonic, with addrDirectPage and its
// siblings in addressing.go supplying the operand address for every mode
// that needs one. Most mnemonics reduce to one of a handful of generic
// shapes (load, store, read-modify-write, compare, accumulator ALU); the
// rest — control transfer, stack shuffling, block move, mode switching — get
// their own small function.
func (c *Chip) dispatch(op uint8) error {
	desc := Opcodes[op]
	mWidth := c.AccumWidth8()
	xWidth := c.IndexWidth8()

	switch desc.Mnemonic {
	case "ORA":
		return c.execAccumALU(desc.Mode, c.ora, false)
	case "AND":
		return c.execAccumALU(desc.Mode, c.and, false)
	case "EOR":
		return c.execAccumALU(desc.Mode, c.eor, false)
	case "ADC":
		return c.execAccumALU(desc.Mode, c.adc, true)
	case "SBC":
		return c.execAccumALU(desc.Mode, c.sbc, true)
	case "CMP":
		return c.execCompare(&c.A, desc.Mode, mWidth)
	case "CPX":
		return c.execCompare(&c.X, desc.Mode, xWidth)
	case "CPY":
		return c.execCompare(&c.Y, desc.Mode, xWidth)
	case "BIT":
		return c.execBIT(desc.Mode)

	case "LDA":
		return c.execLoad(&c.A, desc.Mode, mWidth)
	case "LDX":
		return c.execLoad(&c.X, desc.Mode, xWidth)
	case "LDY":
		return c.execLoad(&c.Y, desc.Mode, xWidth)
	case "STA":
		return c.execStore(desc.Mode, c.A, mWidth)
	case "STX":
		return c.execStore(desc.Mode, c.X, xWidth)
	case "STY":
		return c.execStore(desc.Mode, c.Y, xWidth)
	case "STZ":
		return c.execStore(desc.Mode, 0, mWidth)

	case "ASL":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 { return c.asl(v, mWidth) })
	case "LSR":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 { return c.lsr(v, mWidth) })
	case "ROL":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 { return c.rol(v, mWidth) })
	case "ROR":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 { return c.ror(v, mWidth) })
	case "INC":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 {
			r := incDec(v, mWidth, 1)
			c.setNZ(r, mWidth)
			return r
		})
	case "DEC":
		return c.execRMW(desc.Mode, mWidth, func(v uint16) uint16 {
			r := incDec(v, mWidth, -1)
			c.setNZ(r, mWidth)
			return r
		})
	case "TSB":
		return c.execTSB(desc.Mode, mWidth, true)
	case "TRB":
		return c.execTSB(desc.Mode, mWidth, false)

	case "INX":
		c.X = incDec(c.X, xWidth, 1)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "INY":
		c.Y = incDec(c.Y, xWidth, 1)
		c.setNZ(c.Y, xWidth)
		c.bus.InternalCycle()
		return nil
	case "DEX":
		c.X = incDec(c.X, xWidth, -1)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "DEY":
		c.Y = incDec(c.Y, xWidth, -1)
		c.setNZ(c.Y, xWidth)
		c.bus.InternalCycle()
		return nil

	case "TAX":
		c.X = mergeWidth(c.X, c.A, xWidth)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "TAY":
		c.Y = mergeWidth(c.Y, c.A, xWidth)
		c.setNZ(c.Y, xWidth)
		c.bus.InternalCycle()
		return nil
	case "TXA":
		c.A = mergeWidth(c.A, c.X, mWidth)
		c.setNZ(c.A, mWidth)
		c.bus.InternalCycle()
		return nil
	case "TYA":
		c.A = mergeWidth(c.A, c.Y, mWidth)
		c.setNZ(c.A, mWidth)
		c.bus.InternalCycle()
		return nil
	case "TSX":
		c.X = mergeWidth(c.X, c.S, xWidth)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "TXS":
		c.S = c.X
		c.fixStackHigh()
		c.bus.InternalCycle()
		return nil
	case "TXY":
		c.Y = mergeWidth(c.Y, c.X, xWidth)
		c.setNZ(c.Y, xWidth)
		c.bus.InternalCycle()
		return nil
	case "TYX":
		c.X = mergeWidth(c.X, c.Y, xWidth)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "TCD":
		c.D = c.A
		c.setNZ(c.D, false)
		c.bus.InternalCycle()
		return nil
	case "TDC":
		c.A = c.D
		c.setNZ(c.A, false)
		c.bus.InternalCycle()
		return nil
	case "TCS":
		c.S = c.A
		c.fixStackHigh()
		c.bus.InternalCycle()
		return nil
	case "TSC":
		c.A = c.S
		c.setNZ(c.A, false)
		c.bus.InternalCycle()
		return nil
	case "XBA":
		return c.iXBA()
	case "XCE":
		return c.iXCE()

	case "CLC":
		c.SetCarry(false)
		c.bus.InternalCycle()
		return nil
	case "SEC":
		c.SetCarry(true)
		c.bus.InternalCycle()
		return nil
	case "CLI":
		c.SetIRQDisable(false)
		c.bus.InternalCycle()
		return nil
	case "SEI":
		c.SetIRQDisable(true)
		c.bus.InternalCycle()
		return nil
	case "CLD":
		c.SetDecimal(false)
		c.bus.InternalCycle()
		return nil
	case "SED":
		c.SetDecimal(true)
		c.bus.InternalCycle()
		return nil
	case "CLV":
		c.SetOverflow(false)
		c.bus.InternalCycle()
		return nil
	case "REP":
		return c.iREP()
	case "SEP":
		return c.iSEP()

	case "PHA":
		c.push(c.A, mWidth)
		return nil
	case "PLA":
		c.A = mergeWidth(c.A, c.pull(mWidth), mWidth)
		c.setNZ(c.A, mWidth)
		c.bus.InternalCycle()
		return nil
	case "PHX":
		c.push(c.X, xWidth)
		return nil
	case "PLX":
		c.X = mergeWidth(c.X, c.pull(xWidth), xWidth)
		c.setNZ(c.X, xWidth)
		c.bus.InternalCycle()
		return nil
	case "PHY":
		c.push(c.Y, xWidth)
		return nil
	case "PLY":
		c.Y = mergeWidth(c.Y, c.pull(xWidth), xWidth)
		c.setNZ(c.Y, xWidth)
		c.bus.InternalCycle()
		return nil
	case "PHP":
		c.pushByte(c.P)
		c.bus.InternalCycle()
		return nil
	case "PLP":
		c.P = c.pullByte()
		if c.IndexWidth8() {
			c.X &= 0x00FF
			c.Y &= 0x00FF
		}
		c.bus.InternalCycle()
		return nil
	case "PHB":
		c.pushByte(c.DBR)
		c.bus.InternalCycle()
		return nil
	case "PLB":
		c.DBR = c.pullByte()
		c.setNZ(uint16(c.DBR), true)
		c.bus.InternalCycle()
		return nil
	case "PHK":
		c.pushByte(c.PBR)
		c.bus.InternalCycle()
		return nil
	case "PHD":
		c.pushWordStraddle(c.D)
		c.bus.InternalCycle()
		return nil
	case "PLD":
		c.D = c.pullWordStraddle()
		c.setNZ(c.D, false)
		c.bus.InternalCycle()
		return nil
	case "PEA":
		c.pushWordStraddle(c.fetchOperandWord())
		return nil
	case "PEI":
		ar := c.addrDPIndirect()
		c.pushWordStraddle(ar.addr)
		return nil
	case "PER":
		return c.iPER()

	case "BPL":
		return c.branch(!c.Negative())
	case "BMI":
		return c.branch(c.Negative())
	case "BVC":
		return c.branch(!c.Overflow())
	case "BVS":
		return c.branch(c.Overflow())
	case "BCC":
		return c.branch(!c.Carry())
	case "BCS":
		return c.branch(c.Carry())
	case "BNE":
		return c.branch(!c.Zero())
	case "BEQ":
		return c.branch(c.Zero())
	case "BRA":
		return c.branch(true)
	case "BRL":
		return c.brl()

	case "JMP":
		return c.jmp(desc.Mode)
	case "JSR":
		return c.jsr(desc.Mode)
	case "JSL":
		return c.jsl()
	case "RTS":
		return c.iRTS()
	case "RTL":
		return c.iRTL()
	case "RTI":
		return c.iRTI()
	case "BRK":
		return c.iBRK()
	case "COP":
		return c.iCOP()

	case "MVN":
		return c.move(1)
	case "MVP":
		return c.move(-1)

	case "WAI":
		c.ReadyOut = false
		c.bus.InternalCycle()
		return nil
	case "STP":
		c.Enabled = false
		c.bus.InternalCycle()
		c.bus.InternalCycle()
		return nil
	case "NOP":
		c.bus.InternalCycle()
		return nil
	case "WDM":
		c.fetchOperandByte()
		return nil
	}

	return InvalidCPUState{Reason: fmt.Sprintf("unimplemented opcode %#02x (%s)", op, desc.Mnemonic)}
}

// isIndexedAbsMode reports whether mode is one of the three modes whose
// effective address is formed by adding an index register to a base address
// fetched from memory, the family that both takes a page/bank-crossing
// penalty on reads and always takes the penalty on writes and read-modify-
// write.
func isIndexedAbsMode(mode Mode) bool {
	return mode == AbsoluteX || mode == AbsoluteY || mode == DPIndirectY
}

// resolveAddr dispatches to the addressing-mode function matching mode. It
// is only ever called with a mode that names a memory operand — Implied,
// Accumulator and the two immediate modes are handled by their callers
// before reaching here.
func (c *Chip) resolveAddr(mode Mode) addrResult {
	switch mode {
	case DirectPage:
		return c.addrDirectPage()
	case DPX:
		return c.addrDirectPageX()
	case DPY:
		return c.addrDirectPageY()
	case Absolute:
		return c.addrAbsolute()
	case AbsoluteLong:
		return c.addrAbsoluteLong()
	case AbsoluteX:
		return c.addrAbsoluteX()
	case AbsoluteY:
		return c.addrAbsoluteY()
	case AbsoluteLongX:
		return c.addrAbsoluteLongX()
	case DPIndirect:
		return c.addrDPIndirect()
	case DPIndirectLong:
		return c.addrDPIndirectLong()
	case DPIndirectX:
		return c.addrDPIndirectX()
	case DPIndirectY:
		return c.addrDPIndirectY()
	case DPIndirectLongY:
		return c.addrDPIndirectLongY()
	case StackRelative:
		return c.addrStackRelative()
	case StackRelativeIndirectY:
		return c.addrStackRelativeIndirectY()
	}
	panic(fmt.Sprintf("resolveAddr: mode %d has no memory operand", mode))
}

// mergeWidth folds a freshly loaded/transferred value into an existing
// register value: at 8 bit width the untouched high byte is preserved,
// matching how the 816 never clears a register's upper half just because an
// 8 bit operation wrote its lower half.
func mergeWidth(old, val uint16, width8 bool) uint16 {
	if width8 {
		return (old &^ 0x00FF) | (val & 0x00FF)
	}
	return val
}

func (c *Chip) execLoad(dst *uint16, mode Mode, width8 bool) error {
	var val uint16
	switch mode {
	case ImmediateM, ImmediateX:
		if width8 {
			val = uint16(c.fetchOperandByte())
		} else {
			val = c.fetchOperandWord()
		}
	default:
		ar := c.resolveAddr(mode)
		if isIndexedAbsMode(mode) && ar.crossed {
			c.bus.InternalCycle()
		}
		val = c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	}
	*dst = mergeWidth(*dst, val, width8)
	c.setNZ(*dst, width8)
	return nil
}

func (c *Chip) execStore(mode Mode, val uint16, width8 bool) error {
	ar := c.resolveAddr(mode)
	if isIndexedAbsMode(mode) {
		// Stores always take the indexed-address penalty cycle, crossed or
		// not: the high byte of the sum is computed either way before the
		// write can go out.
		c.bus.InternalCycle()
	}
	c.writeWidth(ar.bank, ar.addr, val, width8, bus.Data)
	return nil
}

func (c *Chip) execRMW(mode Mode, width8 bool, op func(uint16) uint16) error {
	if mode == Accumulator {
		c.A = mergeWidth(c.A, op(c.A), width8)
		c.bus.InternalCycle()
		return nil
	}
	ar := c.resolveAddr(mode)
	if isIndexedAbsMode(mode) {
		c.bus.InternalCycle()
	}
	val := c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	res := op(val)
	c.bus.InternalCycle() // write-back cycle
	c.writeWidth(ar.bank, ar.addr, res, width8, bus.Data)
	return nil
}

func (c *Chip) execTSB(mode Mode, width8 bool, setBits bool) error {
	ar := c.resolveAddr(mode)
	val := c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	mask := maskWidth(width8)
	c.SetZero(c.A&mask&val == 0)
	var res uint16
	if setBits {
		res = val | (c.A & mask)
	} else {
		res = val &^ (c.A & mask)
	}
	c.bus.InternalCycle()
	c.writeWidth(ar.bank, ar.addr, res, width8, bus.Data)
	return nil
}

func (c *Chip) execAccumALU(mode Mode, fn func(a, operand uint16, width8 bool) uint16, decimalPenalty bool) error {
	width8 := c.AccumWidth8()
	var operand uint16
	if mode == ImmediateM {
		if width8 {
			operand = uint16(c.fetchOperandByte())
		} else {
			operand = c.fetchOperandWord()
		}
	} else {
		ar := c.resolveAddr(mode)
		if isIndexedAbsMode(mode) && ar.crossed {
			c.bus.InternalCycle()
		}
		operand = c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	}
	if decimalPenalty && c.Decimal() {
		c.bus.InternalCycle()
	}
	res := fn(c.A, operand, width8)
	c.A = mergeWidth(c.A, res, width8)
	return nil
}

func (c *Chip) execCompare(reg *uint16, mode Mode, width8 bool) error {
	var operand uint16
	switch mode {
	case ImmediateM, ImmediateX:
		if width8 {
			operand = uint16(c.fetchOperandByte())
		} else {
			operand = c.fetchOperandWord()
		}
	default:
		ar := c.resolveAddr(mode)
		if isIndexedAbsMode(mode) && ar.crossed {
			c.bus.InternalCycle()
		}
		operand = c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	}
	c.compare(*reg, operand, width8)
	return nil
}

func (c *Chip) execBIT(mode Mode) error {
	width8 := c.AccumWidth8()
	if mode == ImmediateM {
		var operand uint16
		if width8 {
			operand = uint16(c.fetchOperandByte())
		} else {
			operand = c.fetchOperandWord()
		}
		c.SetZero(c.A&maskWidth(width8)&operand == 0)
		return nil
	}
	ar := c.resolveAddr(mode)
	if isIndexedAbsMode(mode) && ar.crossed {
		c.bus.InternalCycle()
	}
	operand := c.readWidth(ar.bank, ar.addr, width8, bus.Data)
	c.bit(c.A, operand, width8)
	return nil
}

// push and pull move a register on/off the stack at a caller-chosen width;
// PHP/PLP/PHB/PLB/PHK/PHD/PLD bypass these since their width never follows
// M or X.
func (c *Chip) push(val uint16, width8 bool) {
	if width8 {
		c.pushByte(uint8(val))
		return
	}
	c.pushWord(val)
}

func (c *Chip) pull(width8 bool) uint16 {
	if width8 {
		return uint16(c.pullByte())
	}
	return c.pullWord()
}

// branch implements every relative conditional branch plus BRA (cond always
// true): the signed 8 bit displacement is always fetched, the taken penalty
// and an emulation-mode page-cross penalty are charged only when the branch
// is actually taken.
func (c *Chip) branch(cond bool) error {
	disp := int8(c.fetchOperandByte())
	if !cond {
		return nil
	}
	c.bus.InternalCycle()
	oldPC := c.PC
	newPC := uint16(int32(c.PC) + int32(disp))
	if c.Emulation && (oldPC&0xFF00) != (newPC&0xFF00) {
		c.bus.InternalCycle()
	}
	c.PC = newPC
	return nil
}

// brl is the 16 bit-displacement unconditional long branch: always taken,
// never takes an emulation page-cross penalty since the displacement can
// already reach anywhere in the bank.
func (c *Chip) brl() error {
	disp := int16(c.fetchOperandWord())
	c.bus.InternalCycle()
	c.PC = uint16(int32(c.PC) + int32(disp))
	return nil
}

// iPER computes PC-relative effective address and pushes it without
// altering control flow, for a later PLA/PLX-style retrieval by the running
// program.
func (c *Chip) iPER() error {
	disp := int16(c.fetchOperandWord())
	addr := uint16(int32(c.PC) + int32(disp))
	c.bus.InternalCycle()
	c.pushWordStraddle(addr)
	return nil
}

// jmp implements every JMP form. Absolute and its indirect variants stay
// within the current program bank unless the mode is one of the long forms,
// which also load PBR from the operand/pointer's bank byte.
func (c *Chip) jmp(mode Mode) error {
	switch mode {
	case Absolute:
		c.PC = c.fetchOperandWord()
	case AbsoluteLong:
		addr := c.fetchOperandWord()
		bank := c.fetchOperandByte()
		c.PC = addr
		c.PBR = bank
	case AbsoluteIndirect:
		ar := c.addrAbsoluteIndirect()
		c.PC = ar.addr
	case AbsoluteIndirectX:
		ar := c.addrAbsoluteIndirectX()
		c.PC = ar.addr
	case AbsoluteIndirectLong:
		ar := c.addrAbsoluteIndirectLong()
		c.PC = ar.addr
		c.PBR = ar.bank
	}
	return nil
}

// jsr implements both plain JSR (absolute) and JSR (a,x): the return address
// pushed is always PC-1, the address of the last operand byte, so RTS's
// PC+1 lands on the instruction following the call.
func (c *Chip) jsr(mode Mode) error {
	if mode == AbsoluteIndirectX {
		base := c.fetchOperandWord()
		ret := c.PC - 1
		c.pushWordStraddle(ret)
		c.bus.InternalCycle()
		ptr := base + c.X
		lo := c.bus.Read(c.PBR, ptr, bus.Data)
		hi := c.bus.Read(c.PBR, ptr+1, bus.Data)
		c.PC = uint16(lo) | uint16(hi)<<8
		return nil
	}
	addr := c.fetchOperandWord()
	ret := c.PC - 1
	c.bus.InternalCycle()
	c.pushWordStraddle(ret)
	c.PC = addr
	return nil
}

// jsl pushes PBR then the PC-1 return address, then jumps to the long
// operand address, entering the target bank. Both pushes run as a single
// straddling 3 byte decrement in emulation mode: S is only forced back to
// page 0x01 by whatever plain 8 bit stack access happens next.
func (c *Chip) jsl() error {
	addr := c.fetchOperandWord()
	bank := c.fetchOperandByte()
	ret := c.PC - 1
	c.pushByteStraddle(c.PBR)
	c.bus.InternalCycle()
	c.pushWordStraddle(ret)
	c.PBR = bank
	c.PC = addr
	return nil
}

func (c *Chip) iRTS() error {
	ret := c.pullWordStraddle()
	c.bus.InternalCycle()
	c.PC = ret + 1
	return nil
}

func (c *Chip) iRTL() error {
	ret := c.pullWordStraddle()
	bank := c.pullByteStraddle()
	c.bus.InternalCycle()
	c.PC = ret + 1
	c.PBR = bank
	return nil
}

// move implements MVN (dir > 0) and MVP (dir < 0): each step copies one byte
// from srcBank:X to destBank:Y, advances X/Y by dir, decrements the 16 bit
// counter in A, and leaves DBR set to the destination bank. While A hasn't
// wrapped past 0x0000 to 0xFFFF the opcode rewinds PC by 3 so the next
// StepOneInstruction call re-executes the same MVN/MVP and moves the next
// byte — the same instruction can span an unbounded number of calls.
func (c *Chip) move(dir int) error {
	destBank := c.fetchOperandByte()
	srcBank := c.fetchOperandByte()
	c.DBR = destBank

	val := c.bus.Read(srcBank, c.X, bus.Data)
	c.bus.Write(val, destBank, c.Y, bus.Data)

	if dir > 0 {
		c.X++
		c.Y++
	} else {
		c.X--
		c.Y--
	}
	if c.IndexWidth8() {
		c.X &= 0x00FF
		c.Y &= 0x00FF
	}
	c.A--

	c.bus.InternalCycle()
	c.bus.InternalCycle()

	if c.A != 0xFFFF {
		c.PC -= 3
	}
	return nil
}

func (c *Chip) iXBA() error {
	lo := uint8(c.A)
	hi := uint8(c.A >> 8)
	c.A = uint16(lo)<<8 | uint16(hi)
	c.setNZ(uint16(hi), true)
	c.bus.InternalCycle()
	return nil
}

// iXCE swaps the Carry flag and the emulation-mode bit. Entering emulation
// this way forces 8 bit M/X and re-latches S's high byte, same as a hard
// reset's mode-entry side effects; leaving emulation changes nothing else on
// its own.
func (c *Chip) iXCE() error {
	oldEmulation := c.Emulation
	oldCarry := c.Carry()
	c.Emulation = oldCarry
	c.SetCarry(oldEmulation)
	if c.Emulation && !oldEmulation {
		c.enterEmulation()
	}
	c.bus.InternalCycle()
	return nil
}

func (c *Chip) iREP() error {
	mask := c.fetchOperandByte()
	c.P &^= mask
	c.bus.InternalCycle()
	return nil
}

func (c *Chip) iSEP() error {
	mask := c.fetchOperandByte()
	c.P |= mask
	if c.IndexWidth8() {
		c.X &= 0x00FF
		c.Y &= 0x00FF
	}
	c.bus.InternalCycle()
	return nil
}
