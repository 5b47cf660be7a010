package clock

import "testing"

func TestNewRejectsBadSteps(t *testing.T) {
	tests := []struct {
		name               string
		fastStep, slowStep uint64
	}{
		{"zero fast step", 0, 2},
		{"zero slow step", 1, 0},
		{"slow less than fast", 4, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.fastStep, test.slowStep); err == nil {
				t.Errorf("New(%d, %d) = nil error, want one", test.fastStep, test.slowStep)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	c, err := New(1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Advance(false)
	c.Advance(false)
	c.Advance(true)
	if got, want := c.Timestamp(), uint64(1+1+4); got != want {
		t.Errorf("Timestamp() = %d, want %d", got, want)
	}
	if got, want := c.CyclesSpent(), uint64(3); got != want {
		t.Errorf("CyclesSpent() = %d, want %d", got, want)
	}
}

func TestResetCycleCounter(t *testing.T) {
	c, err := New(1, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Advance(false)
	c.Advance(true)
	c.ResetCycleCounter()
	if got, want := c.CyclesSpent(), uint64(0); got != want {
		t.Errorf("CyclesSpent() after reset = %d, want %d", got, want)
	}
	// The timestamp itself is untouched by ResetCycleCounter: only the
	// per-instruction cycle tally is isolated, not the monotonic clock.
	if got, want := c.Timestamp(), uint64(1+2); got != want {
		t.Errorf("Timestamp() after ResetCycleCounter = %d, want %d", got, want)
	}
}
