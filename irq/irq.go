// Package irq defines the basic interfaces for working with a 65816
// interrupt line. A source of interrupts (IRQ/NMI/RDY) implements this
// interface so the CPU that polls the line doesn't need to know anything
// about the component raising it.
// NOTE: the 816 treats IRQ as level and NMI as edge but the interface here
// doesn't distinguish; callers account for that in how/when they raise it.
package irq

// Sender defines the interface for an IRQ source.
type Sender interface {
	// Raised indicates whether the interrupt is currently held high.
	Raised() bool
}
