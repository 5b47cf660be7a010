// gsmon is a thin test/dev harness for the 65816 core: it loads an
// Intel-HEX program into a freshly initialized machine, single-steps the
// machine for a caller-chosen number of instructions while printing a
// disassembly trace, and dumps a bank page afterward. Stepping starts at
// the PC the machine's reset left (read from the bank 0 reset vector
// before the image is loaded); PC is not pointed at the loaded image.
// It is test tooling, not the debugger UI or command-line front end spec.md section 1 places out of
// scope, in the same spirit as the teacher's standalone disassemble/
// hand_asm/convertprg commands.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/applegs/w65c816/bus"
	"github.com/applegs/w65c816/cpu"
	"github.com/applegs/w65c816/disassemble"
	"github.com/applegs/w65c816/machine"
)

// bankReader adapts bus.Controller's peek primitives to memory.Bank so the
// trace callback can disassemble out of whichever bank the fetch actually
// came from, not just a fixed one.
type bankReader struct {
	bus  *bus.Controller
	bank uint8
}

func (r bankReader) Read(addr uint16) uint8       { return r.bus.PeekBank(r.bank, addr) }
func (r bankReader) Write(addr uint16, val uint8) { r.bus.PokeBank(r.bank, addr, val) }
func (r bankReader) PowerOn()                     {}
func (r bankReader) ReadOnly() bool               { return false }

var (
	hexFile   = flag.String("hex", "", "Intel-HEX file to load before stepping (required)")
	loadBank  = flag.Int("bank", 0, "bank the Intel-HEX image is loaded into")
	romSize   = flag.Int("rom_size", 1<<16, "size in bytes of the blank ROM image backing the top bank")
	fastRAM   = flag.Int("fast_ram_banks", 4, "number of fast RAM banks to map starting at bank 0")
	steps     = flag.Int("steps", 20, "number of instructions to single-step")
	dumpPage  = flag.Int("dump_page", 0x08, "page (addr>>8) to dump after stepping")
	dumpPages = flag.Int("dump_pages", 1, "number of consecutive pages to dump")
	trace     = flag.Bool("trace", true, "print a disassembly trace while stepping")
)

func main() {
	flag.Parse()
	if *hexFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -hex <file> [-bank N] [-steps N] [-dump_page N] [-dump_pages N]\n", os.Args[0])
		os.Exit(2)
	}

	m, err := machine.Initialize(machine.Def{
		ROMImage:         make([]uint8, *romSize),
		FastRAMBankCount: *fastRAM,
	})
	if err != nil {
		log.Fatalf("machine.Initialize: %v", err)
	}

	if *trace {
		m.Chip.SetTraceFunc(func(c *cpu.Chip, t cpu.Trace) {
			line, _ := disassemble.Step(t.PBR, t.PC, bankReader{bus: m.Bus, bank: t.PBR}, c.AccumWidth8(), c.IndexWidth8())
			fmt.Printf("%s  (%d cycles)\n", line, t.Cycles)
		})
	}

	text, err := ioutil.ReadFile(*hexFile)
	if err != nil {
		log.Fatalf("reading %s: %v", *hexFile, err)
	}
	if err := m.Chip.LoadIntelHex(string(text), uint8(*loadBank)); err != nil {
		log.Fatalf("loading %s: %v", *hexFile, err)
	}

	for i := 0; i < *steps; i++ {
		if err := m.Chip.StepOneInstruction(); err != nil {
			log.Fatalf("step %d: %v", i, err)
		}
	}

	out := make([]uint8, *dumpPages*256)
	m.Chip.DumpBankPage(uint8(*loadBank), uint8(*dumpPage), *dumpPages, out)
	fmt.Printf("dump bank %#02x page %#02x (%d pages):\n", *loadBank, *dumpPage, *dumpPages)
	for i := 0; i < len(out); i += 16 {
		end := i + 16
		if end > len(out) {
			end = len(out)
		}
		fmt.Printf("%04X: % 02X\n", uint16(*dumpPage)<<8+uint16(i), out[i:end])
	}
}
