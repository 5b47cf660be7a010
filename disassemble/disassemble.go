// Package disassemble formats one 65816 instruction as text, the same job
// the teacher's disassemble.Step did for the 6502: it shares the decoder's
// opcode table (cpu.Opcodes) instead of carrying its own copy, so dispatch
// and disassembly can never disagree about what an opcode byte means
// (spec.md section 3's "Decoder: ... used for both dispatch and
// disassembly"). Unlike the 6502, several addressing modes here are a
// variable 1 or 2 bytes depending on the M/X status flags at the time the
// instruction runs, so Step takes those as explicit parameters rather than
// assuming a fixed width.
package disassemble

import (
	"fmt"

	"github.com/applegs/w65c816/cpu"
	"github.com/applegs/w65c816/memory"
)

// Step disassembles the instruction at bank:pc, reading operand bytes
// through r. mWidth8/xWidth8 resolve the two variable-length immediate
// modes (ImmediateM/ImmediateX) to the width they'd actually fetch at that
// moment. It returns the formatted line and how many bytes, opcode
// included, the instruction occupies.
func Step(bank uint8, pc uint16, r memory.Bank, mWidth8, xWidth8 bool) (string, int) {
	op := r.Read(pc)
	desc := cpu.Opcodes[op]
	b1 := r.Read(pc + 1)
	b2 := r.Read(pc + 2)
	b3 := r.Read(pc + 3)

	count := 1
	operand := ""

	switch desc.Mode {
	case cpu.Implied, cpu.Accumulator, cpu.StackImplied:
		// No operand bytes.
	case cpu.ImmediateM:
		if mWidth8 {
			operand = fmt.Sprintf("#$%02X", b1)
			count += 1
		} else {
			operand = fmt.Sprintf("#$%02X%02X", b2, b1)
			count += 2
		}
	case cpu.ImmediateX:
		if xWidth8 {
			operand = fmt.Sprintf("#$%02X", b1)
			count += 1
		} else {
			operand = fmt.Sprintf("#$%02X%02X", b2, b1)
			count += 2
		}
	case cpu.Immediate8:
		operand = fmt.Sprintf("#$%02X", b1)
		count += 1
	case cpu.DirectPage:
		operand = fmt.Sprintf("$%02X", b1)
		count += 1
	case cpu.DPX:
		operand = fmt.Sprintf("$%02X,X", b1)
		count += 1
	case cpu.DPY:
		operand = fmt.Sprintf("$%02X,Y", b1)
		count += 1
	case cpu.DPIndirect:
		operand = fmt.Sprintf("($%02X)", b1)
		count += 1
	case cpu.DPIndirectLong:
		operand = fmt.Sprintf("[$%02X]", b1)
		count += 1
	case cpu.DPIndirectX:
		operand = fmt.Sprintf("($%02X,X)", b1)
		count += 1
	case cpu.DPIndirectY:
		operand = fmt.Sprintf("($%02X),Y", b1)
		count += 1
	case cpu.DPIndirectLongY:
		operand = fmt.Sprintf("[$%02X],Y", b1)
		count += 1
	case cpu.Absolute:
		operand = fmt.Sprintf("$%02X%02X", b2, b1)
		count += 2
	case cpu.AbsoluteX:
		operand = fmt.Sprintf("$%02X%02X,X", b2, b1)
		count += 2
	case cpu.AbsoluteY:
		operand = fmt.Sprintf("$%02X%02X,Y", b2, b1)
		count += 2
	case cpu.AbsoluteLong:
		operand = fmt.Sprintf("$%02X%02X%02X", b3, b2, b1)
		count += 3
	case cpu.AbsoluteLongX:
		operand = fmt.Sprintf("$%02X%02X%02X,X", b3, b2, b1)
		count += 3
	case cpu.AbsoluteIndirect:
		operand = fmt.Sprintf("($%02X%02X)", b2, b1)
		count += 2
	case cpu.AbsoluteIndirectX:
		operand = fmt.Sprintf("($%02X%02X,X)", b2, b1)
		count += 2
	case cpu.AbsoluteIndirectLong:
		operand = fmt.Sprintf("[$%02X%02X]", b2, b1)
		count += 2
	case cpu.StackRelative:
		operand = fmt.Sprintf("$%02X,S", b1)
		count += 1
	case cpu.StackRelativeIndirectY:
		operand = fmt.Sprintf("($%02X,S),Y", b1)
		count += 1
	case cpu.Relative8:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		operand = fmt.Sprintf("$%02X ($%04X)", b1, target)
		count += 1
	case cpu.Relative16:
		disp := int16(uint16(b1) | uint16(b2)<<8)
		target := uint16(int32(pc) + 3 + int32(disp))
		operand = fmt.Sprintf("$%02X%02X ($%04X)", b2, b1, target)
		count += 2
	case cpu.MoveBlock:
		// MVN/MVP's operand bytes are dest bank, src bank, in that order.
		operand = fmt.Sprintf("$%02X,$%02X", b1, b2)
		count += 2
	default:
		operand = fmt.Sprintf("<unknown mode %d>", desc.Mode)
	}

	raw := make([]byte, count)
	for i := 0; i < count; i++ {
		raw[i] = r.Read(pc + uint16(i))
	}
	return fmt.Sprintf("%02X:%04X %-9s %-3s %s", bank, pc, hexBytes(raw), desc.Mnemonic, operand), count
}

func hexBytes(raw []byte) string {
	s := ""
	for i, b := range raw {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X", b)
	}
	return s
}
