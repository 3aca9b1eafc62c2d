package chip8

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
)

const (
	MEMORY_SIZE   = 4096  // Memory size, 4k.
	REGISTER_SIZE = 16    // V0 through VF.
	PROGRAM_START = 0x200 // Load offset for program images; the lower 512 bytes are reserved for interpreter use.
)

var _chip8_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%v", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"SCREEN_WIDTH":  fmt.Sprintf("%v", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", SCREEN_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%v", STACK_LIMIT),
	"KEYPAD_SIZE":   fmt.Sprintf("%v", KEYPAD_SIZE),
	"GLYPH_HEIGHT":  fmt.Sprintf("%v", GLYPH_HEIGHT),
}

// Chip8 is the machine state for the interpreter.
type Chip8 struct {
	Verbose bool // Set to enable verbose logging.

	Memory [MEMORY_SIZE]byte    // Memory image. 0x000-0x04F holds the glyph table.
	V      [REGISTER_SIZE]uint8 // General registers. VF doubles as the carry/borrow/collision flag.
	Index  uint16               // Index register, memory pointer for sprite/BCD/bulk transfers.
	PC     uint16               // Program counter.

	Stack Stack // Call stack for subroutine return addresses.

	Delay uint8 // Delay timer, counts down to zero.
	Sound uint8 // Sound timer, counts down to zero; beeps on the 1 -> 0 transition.

	Display Display // Monochrome framebuffer.
	Keypad  Keypad  // 16-key input matrix, written by the input translator.

	Rand func() uint8 // Random byte source for the rnd opcode.
}

// NewChip8 creates a machine in its power-on state.
func NewChip8() (c *Chip8) {
	c = &Chip8{
		Rand: func() uint8 { return uint8(rand.Intn(256)) },
	}
	c.Reset()

	return
}

// Defines for the machine.
func (c *Chip8) Defines() iter.Seq2[string, string] {
	return maps.All(_chip8_defines)
}

// Reset restores the power-on state.
// - Zeros memory, registers, timers, stack, framebuffer, and keypad.
// - Copies the glyph table to memory 0x000-0x04F.
// - Sets the program counter to PROGRAM_START.
func (c *Chip8) Reset() {
	if c.Verbose {
		log.Printf("chip8: reset")
	}

	clear(c.Memory[:])
	clear(c.V[:])
	c.Index = 0
	c.PC = PROGRAM_START
	c.Stack.Reset()
	c.Delay = 0
	c.Sound = 0
	c.Display.Clear()
	c.Keypad.Reset()

	copy(c.Memory[:len(fontset)], fontset[:])
}

// Load copies a program image verbatim into memory starting at
// PROGRAM_START. An image that would overrun the end of memory is
// rejected and memory is left untouched.
func (c *Chip8) Load(rom []byte) (err error) {
	if len(rom) > MEMORY_SIZE-PROGRAM_START {
		err = ErrProgramTooLarge
		return
	}

	copy(c.Memory[PROGRAM_START:], rom)

	return
}

// fetch reads the two instruction bytes at the program counter,
// big-endian, and advances past them.
func (c *Chip8) fetch() (op Opcode, err error) {
	if int(c.PC)+1 >= MEMORY_SIZE {
		err = errors.Join(ErrMemoryBounds, ErrAccess(c.PC))
		return
	}

	word := uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1])
	op = DecodeOpcode(word)
	c.PC += 2

	return
}

// Step runs a single cycle: fetch, decode, execute, timer update.
// beep reports the sound timer transitioning from 1 to 0 this cycle.
// Execution errors halt the cycle and carry the faulting address and
// opcode; the machine state is not advanced further.
func (c *Chip8) Step() (beep bool, err error) {
	addr := c.PC

	op, err := c.fetch()
	if err != nil {
		return
	}

	err = c.Execute(op)
	if err != nil {
		err = errors.Join(ErrOpcode{Addr: addr, Op: op}, err)
		return
	}

	beep = c.updateTimers()

	return
}

// updateTimers decrements both countdown timers, clamping at zero.
func (c *Chip8) updateTimers() (beep bool) {
	if c.Delay > 0 {
		c.Delay--
	}
	if c.Sound > 0 {
		if c.Sound == 1 {
			beep = true
		}
		c.Sound--
	}

	return
}
