package cpu

import "github.com/applegs/w65c816/bus"

// Interrupt and reset microcode: RESET, IRQ/NMI entry, and the BRK/COP/RTI
// instructions that share the same push/vector machinery, generalized for
// the 816's native-mode PBR push/pop and split native/emulation vector
// table.

// pushByte writes one byte to the stack and decrements S, wrapping within
// page 0x0100-0x01FF in emulation mode and across the full 16 bits in
// native mode.
func (c *Chip) pushByte(v uint8) {
	c.bus.Write(v, 0, c.S, bus.Stack)
	if c.Emulation {
		c.S = 0x0100 | uint16(uint8(c.S)-1)
	} else {
		c.S--
	}
}

// pullByte increments S and reads the byte now on top of the stack.
func (c *Chip) pullByte() uint8 {
	if c.Emulation {
		c.S = 0x0100 | uint16(uint8(c.S)+1)
	} else {
		c.S++
	}
	return c.bus.Read(0, c.S, bus.Stack)
}

// pushWord pushes a 16 bit value high byte first, so the low byte ends up
// on top (matching 6502/816 interrupt push order, so RTI/PLx pull
// low-then-high).
func (c *Chip) pushWord(v uint16) {
	c.pushByte(uint8(v >> 8))
	c.pushByte(uint8(v))
}

func (c *Chip) pullWord() uint16 {
	lo := c.pullByte()
	hi := c.pullByte()
	return uint16(lo) | uint16(hi)<<8
}

// pushByteStraddle writes one byte to the stack and decrements S as a
// plain 16 bit counter, with no emulation-mode page-0x01 re-latch. PEA,
// PEI, PER, PHD, PLD, JSR, JSL and RTL/RTS are documented to run their
// stack arithmetic this way: in emulation mode S can straddle down into
// page 0x00 for the duration of the instruction, only getting corrected
// back to 0x01xx by the next plain 8 bit stack access (PHA, PLA, an
// interrupt entry, ...) going through pushByte/pullByte instead.
func (c *Chip) pushByteStraddle(v uint8) {
	c.bus.Write(v, 0, c.S, bus.Stack)
	c.S--
}

// pullByteStraddle is pushByteStraddle's counterpart.
func (c *Chip) pullByteStraddle() uint8 {
	c.S++
	return c.bus.Read(0, c.S, bus.Stack)
}

// pushWordStraddle is pushWord without the per-byte high-byte re-latch.
func (c *Chip) pushWordStraddle(v uint16) {
	c.pushByteStraddle(uint8(v >> 8))
	c.pushByteStraddle(uint8(v))
}

// pullWordStraddle is pullWord without the per-byte high-byte re-latch.
func (c *Chip) pullWordStraddle() uint16 {
	lo := c.pullByteStraddle()
	hi := c.pullByteStraddle()
	return uint16(lo) | uint16(hi)<<8
}

// runReset executes the 7 cycle reset microcode once resb_in has been
// released: forces emulation mode, M=X=I=1, clears D/PBR/DBR, latches
// S.high to 0x01, then loads PC from the reset vector.
func (c *Chip) runReset() error {
	c.bus.InternalCycle()
	c.bus.InternalCycle()
	c.Emulation = true
	c.SetDecimal(false)
	c.SetIRQDisable(true)
	c.SetIndex8(true)
	c.SetAccum8(true)
	c.D = 0
	c.PBR = 0
	c.DBR = 0
	for i := 0; i < 3; i++ {
		c.bus.InternalCycle()
	}
	c.S = 0x0100 | (c.S & 0x00FF)
	lo := c.bus.Read(0, vecEmuReset, bus.VectorPull)
	hi := c.bus.Read(0, vecEmuReset+1, bus.VectorPull)
	c.PC = uint16(lo) | uint16(hi)<<8
	c.resbIn = false
	c.ReadyOut = true
	c.Enabled = true
	c.state = Execute
	return nil
}

// deliverHardwareInterrupt runs the IRQ or NMI entry sequence: push PBR
// (native only), PCH, PCL, and P with B forced to 0 in emulation mode
// , then load PC from the matching vector.
func (c *Chip) deliverHardwareInterrupt(nmi bool) error {
	if !c.Emulation {
		c.pushByte(c.PBR)
	}
	c.pushWord(c.PC)
	status := c.P
	if c.Emulation {
		status &^= PBreak
	}
	c.pushByte(status)
	c.SetIRQDisable(true)
	c.SetDecimal(false)

	var vec uint16
	switch {
	case nmi && c.Emulation:
		vec = vecEmuNMI
	case nmi && !c.Emulation:
		vec = vecNativeNMI
	case !nmi && c.Emulation:
		vec = vecEmuIRQBRK
	default:
		vec = vecNativeIRQ
	}
	lo := c.bus.Read(0, vec, bus.VectorPull)
	hi := c.bus.Read(0, vec+1, bus.VectorPull)
	c.PBR = 0
	c.PC = uint16(lo) | uint16(hi)<<8
	c.fixStackHigh()
	return nil
}

// iBRK implements BRK: skip the signature byte, push PBR (native only)/
// PC/P with B=1 in emulation, clear D, set I, and vector through BRK
// (shared with IRQ in emulation mode, its own vector natively).
func (c *Chip) iBRK() error {
	c.fetchOperandByte() // signature byte, discarded
	if !c.Emulation {
		c.pushByte(c.PBR)
	}
	c.pushWord(c.PC)
	status := c.P
	if c.Emulation {
		status |= PBreak
	}
	c.pushByte(status)
	c.SetIRQDisable(true)
	c.SetDecimal(false)
	vec := vecNativeBRK
	if c.Emulation {
		vec = vecEmuIRQBRK
	}
	lo := c.bus.Read(0, vec, bus.VectorPull)
	hi := c.bus.Read(0, vec+1, bus.VectorPull)
	c.PBR = 0
	c.PC = uint16(lo) | uint16(hi)<<8
	c.fixStackHigh()
	return nil
}

// iCOP implements COP identically to BRK except for its own vector pair
// and no B-flag semantics (COP is never reported as a break in the pushed
// status, in either mode).
func (c *Chip) iCOP() error {
	c.fetchOperandByte()
	if !c.Emulation {
		c.pushByte(c.PBR)
	}
	c.pushWord(c.PC)
	c.pushByte(c.P)
	c.SetIRQDisable(true)
	c.SetDecimal(false)
	vec := vecNativeCOP
	if c.Emulation {
		vec = vecEmuCOP
	}
	lo := c.bus.Read(0, vec, bus.VectorPull)
	hi := c.bus.Read(0, vec+1, bus.VectorPull)
	c.PBR = 0
	c.PC = uint16(lo) | uint16(hi)<<8
	c.fixStackHigh()
	return nil
}

// iRTI pops status, PC, and in native mode PBR. In emulation mode the
// restored status still leaves M/X forced to 1 by AccumWidth8/IndexWidth8
// regardless of what bit pattern was pulled.
func (c *Chip) iRTI() error {
	c.P = c.pullByte()
	c.PC = c.pullWord()
	if !c.Emulation {
		c.PBR = c.pullByte()
	}
	if c.IndexWidth8() {
		c.X &= 0x00FF
		c.Y &= 0x00FF
	}
	c.fixStackHigh()
	return nil
}
