package cpu

// Typed flag accessors: the packed P byte stays the source of truth for
// push/pull correctness, but every read/write goes through a named
// getter/setter to keep M, X and D from getting mixed up at call sites.
// These are exposed as named get/set pairs rather than one-shot
// "compute flag from result" helpers, since the executor also needs to
// simply read the current flag (e.g. to pick an 8 vs 16 bit ALU path).

func (c *Chip) setFlag(mask uint8, v bool) {
	if v {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

// Carry returns the C flag.
func (c *Chip) Carry() bool { return c.P&PCarry != 0 }

// SetCarry sets or clears C.
func (c *Chip) SetCarry(v bool) { c.setFlag(PCarry, v) }

// Zero returns the Z flag.
func (c *Chip) Zero() bool { return c.P&PZero != 0 }

// SetZero sets or clears Z.
func (c *Chip) SetZero(v bool) { c.setFlag(PZero, v) }

// IRQDisable returns the I flag.
func (c *Chip) IRQDisable() bool { return c.P&PIRQDis != 0 }

// SetIRQDisable sets or clears I.
func (c *Chip) SetIRQDisable(v bool) { c.setFlag(PIRQDis, v) }

// Decimal returns the D flag.
func (c *Chip) Decimal() bool { return c.P&PDecimal != 0 }

// SetDecimal sets or clears D.
func (c *Chip) SetDecimal(v bool) { c.setFlag(PDecimal, v) }

// Overflow returns the V flag.
func (c *Chip) Overflow() bool { return c.P&POverflow != 0 }

// SetOverflow sets or clears V.
func (c *Chip) SetOverflow(v bool) { c.setFlag(POverflow, v) }

// Negative returns the N flag.
func (c *Chip) Negative() bool { return c.P&PNegative != 0 }

// SetNegative sets or clears N.
func (c *Chip) SetNegative(v bool) { c.setFlag(PNegative, v) }

// AccumWidth8 returns the effective M flag: true means 8 bit
// accumulator/memory width. Emulation mode forces this true regardless of
// the stored bit.
func (c *Chip) AccumWidth8() bool {
	return c.Emulation || c.P&PAccum8 != 0
}

// SetAccum8 sets the stored M bit. Has no visible effect in emulation mode
// since AccumWidth8 always reports true there, but the bit is still
// tracked so XCE back to native mode exposes whatever was last written.
func (c *Chip) SetAccum8(v bool) { c.setFlag(PAccum8, v) }

// IndexWidth8 returns the effective X flag: true means 8 bit X/Y. As with
// M, emulation mode forces this true.
func (c *Chip) IndexWidth8() bool {
	return c.Emulation || c.P&PIndex8 != 0
}

// SetIndex8 sets the stored X bit. Transitioning into 8 bit index width
// immediately zeros the visible high bytes of X and Y — real hardware
// doesn't retain them to restore later.
func (c *Chip) SetIndex8(v bool) {
	c.setFlag(PIndex8, v)
	if c.IndexWidth8() {
		c.X &= 0x00FF
		c.Y &= 0x00FF
	}
}

// enterEmulation implements the XCE transition into emulation mode: forces
// M=X=1 (zeroing X/Y high bytes) and latches S's high byte to 0x01 (spec
// section 4.4).
func (c *Chip) enterEmulation() {
	c.Emulation = true
	c.SetAccum8(true)
	c.SetIndex8(true)
	c.S = 0x0100 | (c.S & 0x00FF)
}

// fixStackHigh re-latches S.high to 0x01 after any instruction that could
// have changed S while in emulation mode (PLS-equivalent ops, TXS, etc).
// Native mode leaves S untouched.
func (c *Chip) fixStackHigh() {
	if c.Emulation {
		c.S = 0x0100 | (c.S & 0x00FF)
	}
}
