package cpu

// Mode enumerates the 65816's addressing modes, plus Implied and
// Accumulator for the two trivial zero-operand shapes and StackImplied so
// the decode table can name precisely which stack shape each opcode uses.
// Opcodes below is a pure table used for both dispatch (execute.go) and
// disassembly.
type Mode int

const (
	Implied Mode = iota
	Accumulator
	ImmediateM // width follows the M flag
	ImmediateX // width follows the X flag
	Immediate8 // always one byte (REP/SEP/BRK/COP/WDM signature)
	Absolute
	AbsoluteLong
	DirectPage
	DPIndirect
	DPIndirectLong
	AbsoluteX
	AbsoluteLongX
	AbsoluteY
	DPX
	DPY
	DPIndirectX
	DPIndirectY
	DPIndirectLongY
	Relative8
	Relative16
	AbsoluteIndirect       // JMP (a)
	AbsoluteIndirectX      // JMP (a,x) / JSR (a,x)
	AbsoluteIndirectLong   // JMP [a]
	StackRelative          // d,s
	StackRelativeIndirectY // (d,s),y
	MoveBlock              // MVN/MVP's two bank-byte operand
	StackImplied           // PHA/PLA/PHP/PLP/PHX.../RTS/RTI/RTL etc, width or count implied by opcode
)

// Descriptor is one opcode's static decode information.
type Descriptor struct {
	Mnemonic string
	Mode     Mode
}

// Opcodes is the 256 entry decode table, indexed by opcode byte. It is the
// single source of truth consulted by both the executor's dispatch switch
// and by the disassemble package, so the two can never disagree about what
// an opcode byte means.
var Opcodes = [256]Descriptor{
	0x00: {"BRK", Immediate8}, 0x01: {"ORA", DPIndirectX}, 0x02: {"COP", Immediate8}, 0x03: {"ORA", StackRelative},
	0x04: {"TSB", DirectPage}, 0x05: {"ORA", DirectPage}, 0x06: {"ASL", DirectPage}, 0x07: {"ORA", DPIndirectLong},
	0x08: {"PHP", StackImplied}, 0x09: {"ORA", ImmediateM}, 0x0A: {"ASL", Accumulator}, 0x0B: {"PHD", StackImplied},
	0x0C: {"TSB", Absolute}, 0x0D: {"ORA", Absolute}, 0x0E: {"ASL", Absolute}, 0x0F: {"ORA", AbsoluteLong},

	0x10: {"BPL", Relative8}, 0x11: {"ORA", DPIndirectY}, 0x12: {"ORA", DPIndirect}, 0x13: {"ORA", StackRelativeIndirectY},
	0x14: {"TRB", DirectPage}, 0x15: {"ORA", DPX}, 0x16: {"ASL", DPX}, 0x17: {"ORA", DPIndirectLongY},
	0x18: {"CLC", Implied}, 0x19: {"ORA", AbsoluteY}, 0x1A: {"INC", Accumulator}, 0x1B: {"TCS", Implied},
	0x1C: {"TRB", Absolute}, 0x1D: {"ORA", AbsoluteX}, 0x1E: {"ASL", AbsoluteX}, 0x1F: {"ORA", AbsoluteLongX},

	0x20: {"JSR", Absolute}, 0x21: {"AND", DPIndirectX}, 0x22: {"JSL", AbsoluteLong}, 0x23: {"AND", StackRelative},
	0x24: {"BIT", DirectPage}, 0x25: {"AND", DirectPage}, 0x26: {"ROL", DirectPage}, 0x27: {"AND", DPIndirectLong},
	0x28: {"PLP", StackImplied}, 0x29: {"AND", ImmediateM}, 0x2A: {"ROL", Accumulator}, 0x2B: {"PLD", StackImplied},
	0x2C: {"BIT", Absolute}, 0x2D: {"AND", Absolute}, 0x2E: {"ROL", Absolute}, 0x2F: {"AND", AbsoluteLong},

	0x30: {"BMI", Relative8}, 0x31: {"AND", DPIndirectY}, 0x32: {"AND", DPIndirect}, 0x33: {"AND", StackRelativeIndirectY},
	0x34: {"BIT", DPX}, 0x35: {"AND", DPX}, 0x36: {"ROL", DPX}, 0x37: {"AND", DPIndirectLongY},
	0x38: {"SEC", Implied}, 0x39: {"AND", AbsoluteY}, 0x3A: {"DEC", Accumulator}, 0x3B: {"TSC", Implied},
	0x3C: {"BIT", AbsoluteX}, 0x3D: {"AND", AbsoluteX}, 0x3E: {"ROL", AbsoluteX}, 0x3F: {"AND", AbsoluteLongX},

	0x40: {"RTI", StackImplied}, 0x41: {"EOR", DPIndirectX}, 0x42: {"WDM", Immediate8}, 0x43: {"EOR", StackRelative},
	0x44: {"MVP", MoveBlock}, 0x45: {"EOR", DirectPage}, 0x46: {"LSR", DirectPage}, 0x47: {"EOR", DPIndirectLong},
	0x48: {"PHA", StackImplied}, 0x49: {"EOR", ImmediateM}, 0x4A: {"LSR", Accumulator}, 0x4B: {"PHK", StackImplied},
	0x4C: {"JMP", Absolute}, 0x4D: {"EOR", Absolute}, 0x4E: {"LSR", Absolute}, 0x4F: {"EOR", AbsoluteLong},

	0x50: {"BVC", Relative8}, 0x51: {"EOR", DPIndirectY}, 0x52: {"EOR", DPIndirect}, 0x53: {"EOR", StackRelativeIndirectY},
	0x54: {"MVN", MoveBlock}, 0x55: {"EOR", DPX}, 0x56: {"LSR", DPX}, 0x57: {"EOR", DPIndirectLongY},
	0x58: {"CLI", Implied}, 0x59: {"EOR", AbsoluteY}, 0x5A: {"PHY", StackImplied}, 0x5B: {"TCD", Implied},
	0x5C: {"JMP", AbsoluteLong}, 0x5D: {"EOR", AbsoluteX}, 0x5E: {"LSR", AbsoluteX}, 0x5F: {"EOR", AbsoluteLongX},

	0x60: {"RTS", StackImplied}, 0x61: {"ADC", DPIndirectX}, 0x62: {"PER", Relative16}, 0x63: {"ADC", StackRelative},
	0x64: {"STZ", DirectPage}, 0x65: {"ADC", DirectPage}, 0x66: {"ROR", DirectPage}, 0x67: {"ADC", DPIndirectLong},
	0x68: {"PLA", StackImplied}, 0x69: {"ADC", ImmediateM}, 0x6A: {"ROR", Accumulator}, 0x6B: {"RTL", StackImplied},
	0x6C: {"JMP", AbsoluteIndirect}, 0x6D: {"ADC", Absolute}, 0x6E: {"ROR", Absolute}, 0x6F: {"ADC", AbsoluteLong},

	0x70: {"BVS", Relative8}, 0x71: {"ADC", DPIndirectY}, 0x72: {"ADC", DPIndirect}, 0x73: {"ADC", StackRelativeIndirectY},
	0x74: {"STZ", DPX}, 0x75: {"ADC", DPX}, 0x76: {"ROR", DPX}, 0x77: {"ADC", DPIndirectLongY},
	0x78: {"SEI", Implied}, 0x79: {"ADC", AbsoluteY}, 0x7A: {"PLY", StackImplied}, 0x7B: {"TDC", Implied},
	0x7C: {"JMP", AbsoluteIndirectX}, 0x7D: {"ADC", AbsoluteX}, 0x7E: {"ROR", AbsoluteX}, 0x7F: {"ADC", AbsoluteLongX},

	0x80: {"BRA", Relative8}, 0x81: {"STA", DPIndirectX}, 0x82: {"BRL", Relative16}, 0x83: {"STA", StackRelative},
	0x84: {"STY", DirectPage}, 0x85: {"STA", DirectPage}, 0x86: {"STX", DirectPage}, 0x87: {"STA", DPIndirectLong},
	0x88: {"DEY", Implied}, 0x89: {"BIT", ImmediateM}, 0x8A: {"TXA", Implied}, 0x8B: {"PHB", StackImplied},
	0x8C: {"STY", Absolute}, 0x8D: {"STA", Absolute}, 0x8E: {"STX", Absolute}, 0x8F: {"STA", AbsoluteLong},

	0x90: {"BCC", Relative8}, 0x91: {"STA", DPIndirectY}, 0x92: {"STA", DPIndirect}, 0x93: {"STA", StackRelativeIndirectY},
	0x94: {"STY", DPX}, 0x95: {"STA", DPX}, 0x96: {"STX", DPY}, 0x97: {"STA", DPIndirectLongY},
	0x98: {"TYA", Implied}, 0x99: {"STA", AbsoluteY}, 0x9A: {"TXS", Implied}, 0x9B: {"TXY", Implied},
	0x9C: {"STZ", Absolute}, 0x9D: {"STA", AbsoluteX}, 0x9E: {"STZ", AbsoluteX}, 0x9F: {"STA", AbsoluteLongX},

	0xA0: {"LDY", ImmediateX}, 0xA1: {"LDA", DPIndirectX}, 0xA2: {"LDX", ImmediateX}, 0xA3: {"LDA", StackRelative},
	0xA4: {"LDY", DirectPage}, 0xA5: {"LDA", DirectPage}, 0xA6: {"LDX", DirectPage}, 0xA7: {"LDA", DPIndirectLong},
	0xA8: {"TAY", Implied}, 0xA9: {"LDA", ImmediateM}, 0xAA: {"TAX", Implied}, 0xAB: {"PLB", StackImplied},
	0xAC: {"LDY", Absolute}, 0xAD: {"LDA", Absolute}, 0xAE: {"LDX", Absolute}, 0xAF: {"LDA", AbsoluteLong},

	0xB0: {"BCS", Relative8}, 0xB1: {"LDA", DPIndirectY}, 0xB2: {"LDA", DPIndirect}, 0xB3: {"LDA", StackRelativeIndirectY},
	0xB4: {"LDY", DPX}, 0xB5: {"LDA", DPX}, 0xB6: {"LDX", DPY}, 0xB7: {"LDA", DPIndirectLongY},
	0xB8: {"CLV", Implied}, 0xB9: {"LDA", AbsoluteY}, 0xBA: {"TSX", Implied}, 0xBB: {"TYX", Implied},
	0xBC: {"LDY", AbsoluteX}, 0xBD: {"LDA", AbsoluteX}, 0xBE: {"LDX", AbsoluteY}, 0xBF: {"LDA", AbsoluteLongX},

	0xC0: {"CPY", ImmediateX}, 0xC1: {"CMP", DPIndirectX}, 0xC2: {"REP", Immediate8}, 0xC3: {"CMP", StackRelative},
	0xC4: {"CPY", DirectPage}, 0xC5: {"CMP", DirectPage}, 0xC6: {"DEC", DirectPage}, 0xC7: {"CMP", DPIndirectLong},
	0xC8: {"INY", Implied}, 0xC9: {"CMP", ImmediateM}, 0xCA: {"DEX", Implied}, 0xCB: {"WAI", Implied},
	0xCC: {"CPY", Absolute}, 0xCD: {"CMP", Absolute}, 0xCE: {"DEC", Absolute}, 0xCF: {"CMP", AbsoluteLong},

	0xD0: {"BNE", Relative8}, 0xD1: {"CMP", DPIndirectY}, 0xD2: {"CMP", DPIndirect}, 0xD3: {"CMP", StackRelativeIndirectY},
	0xD4: {"PEI", DPIndirect}, 0xD5: {"CMP", DPX}, 0xD6: {"DEC", DPX}, 0xD7: {"CMP", DPIndirectLongY},
	0xD8: {"CLD", Implied}, 0xD9: {"CMP", AbsoluteY}, 0xDA: {"PHX", StackImplied}, 0xDB: {"STP", Implied},
	0xDC: {"JMP", AbsoluteIndirectLong}, 0xDD: {"CMP", AbsoluteX}, 0xDE: {"DEC", AbsoluteX}, 0xDF: {"CMP", AbsoluteLongX},

	0xE0: {"CPX", ImmediateX}, 0xE1: {"SBC", DPIndirectX}, 0xE2: {"SEP", Immediate8}, 0xE3: {"SBC", StackRelative},
	0xE4: {"CPX", DirectPage}, 0xE5: {"SBC", DirectPage}, 0xE6: {"INC", DirectPage}, 0xE7: {"SBC", DPIndirectLong},
	0xE8: {"INX", Implied}, 0xE9: {"SBC", ImmediateM}, 0xEA: {"NOP", Implied}, 0xEB: {"XBA", Implied},
	0xEC: {"CPX", Absolute}, 0xED: {"SBC", Absolute}, 0xEE: {"INC", Absolute}, 0xEF: {"SBC", AbsoluteLong},

	0xF0: {"BEQ", Relative8}, 0xF1: {"SBC", DPIndirectY}, 0xF2: {"SBC", DPIndirect}, 0xF3: {"SBC", StackRelativeIndirectY},
	0xF4: {"PEA", Absolute}, 0xF5: {"SBC", DPX}, 0xF6: {"INC", DPX}, 0xF7: {"SBC", DPIndirectLongY},
	0xF8: {"SED", Implied}, 0xF9: {"SBC", AbsoluteY}, 0xFA: {"PLX", StackImplied}, 0xFB: {"XCE", Implied},
	0xFC: {"JSR", AbsoluteIndirectX}, 0xFD: {"SBC", AbsoluteX}, 0xFE: {"INC", AbsoluteX}, 0xFF: {"SBC", AbsoluteLongX},
}
