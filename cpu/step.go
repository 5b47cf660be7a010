package cpu

import "github.com/applegs/w65c816/bus"

// StepOneInstruction is the core's single entry point: it advances the chip
// by exactly one reset-microcode step, one interrupt-entry sequence, or one
// fetched instruction, whichever applies given the current pin state. A
// caller driving the system clock calls this in a loop; how many bus cycles
// it consumed can be read back from the bus.Controller's CyclesSpent delta
// or from the installed TraceFunc.
func (c *Chip) StepOneInstruction() error {
	if c.state == Reset {
		if c.resetCountdown > 0 {
			c.resetCountdown--
			c.bus.InternalCycle()
			return nil
		}
		return c.runReset()
	}

	if !c.Enabled {
		// Stopped by STP; only a new reset can bring the core back.
		c.bus.InternalCycle()
		return nil
	}

	if !c.ReadyOut {
		if c.nmiEdge || c.pendingIRQ() {
			c.ReadyOut = true
		} else {
			c.bus.InternalCycle()
			return nil
		}
	}

	if c.nmiEdge {
		c.nmiEdge = false
		c.state = NMIState
		err := c.deliverHardwareInterrupt(true)
		c.state = Execute
		return err
	}
	if c.pendingIRQ() && !c.IRQDisable() {
		c.state = IRQState
		err := c.deliverHardwareInterrupt(false)
		c.state = Execute
		return err
	}

	c.state = Execute
	return c.fetchAndExecute()
}

// pendingIRQ reports whether the level-triggered IRQ line is asserted,
// either directly via SetIRQ or through the optional external irq.Sender.
func (c *Chip) pendingIRQ() bool {
	if c.irqbIn {
		return true
	}
	return c.irq != nil && c.irq.Raised()
}

// fetchAndExecute fetches the opcode at PBR:PC, advances PC past it, and
// dispatches on it. lastFetchPBR/lastFetchPC record where the instruction
// started so ProgramCounterOfLastFetch and the trace callback can report it
// after PC has already moved on to the next instruction.
func (c *Chip) fetchAndExecute() error {
	c.lastFetchPBR = c.PBR
	c.lastFetchPC = c.PC
	start := c.bus.CyclesSpent()

	op := c.fetchPCByte(bus.OpcodeFetch)
	if err := c.dispatch(op); err != nil {
		return err
	}

	if c.trace != nil {
		c.trace(c, Trace{
			PBR:    c.lastFetchPBR,
			PC:     c.lastFetchPC,
			Opcode: op,
			Cycles: int(c.bus.CyclesSpent() - start),
		})
	}
	return nil
}
