// Package clock implements the monotonic timestamp the 816 core advances on
// every bus or internal cycle. It's a standalone counter the bus package
// charges directly instead of sleeping real wall time, since the IIgs core
// has two distinct bus speeds (fast RAM vs. slow RAM/I-O) rather than one
// constant per-instruction delay.
package clock

// Clock is a monotonic sub-cycle timestamp with two step sizes. Every bus
// access or internal-only cycle advances ts by fastStep or slowStep
// depending on which clock domain it falls in.
type Clock struct {
	ts          uint64
	fastStep    uint64
	slowStep    uint64
	cyclesSpent uint64
}

// New builds a Clock. Both steps must be non-zero and slowStep >= fastStep.
func New(fastStep, slowStep uint64) (*Clock, error) {
	if fastStep == 0 || slowStep == 0 {
		return nil, errBadStep{fastStep, slowStep}
	}
	if slowStep < fastStep {
		return nil, errBadStep{fastStep, slowStep}
	}
	return &Clock{fastStep: fastStep, slowStep: slowStep}, nil
}

// Advance charges one cycle, using the slow step if slow is true.
func (c *Clock) Advance(slow bool) {
	if slow {
		c.ts += c.slowStep
	} else {
		c.ts += c.fastStep
	}
	c.cyclesSpent++
}

// Timestamp returns the current accumulated timestamp.
func (c *Clock) Timestamp() uint64 { return c.ts }

// CyclesSpent returns the total number of cycles charged since creation (or
// the last ResetCycleCounter call).
func (c *Clock) CyclesSpent() uint64 { return c.cyclesSpent }

// ResetCycleCounter zeroes CyclesSpent without touching the timestamp; a
// caller stepping one instruction at a time can use this to isolate that
// instruction's cycle count instead of reading a running total.
func (c *Clock) ResetCycleCounter() { c.cyclesSpent = 0 }

type errBadStep struct{ fast, slow uint64 }

func (e errBadStep) Error() string {
	return "clock: fastStep and slowStep must be non-zero and slowStep >= fastStep"
}
