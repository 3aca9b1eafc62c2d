// Package emulator wraps the machine core with the driver-facing
// surface: key event translation, the beep hook, and frame pacing.
package emulator

import (
	"iter"
	"maps"

	"github.com/zzhaolei/chip8/chip8"
	"github.com/zzhaolei/chip8/input"
	"github.com/zzhaolei/chip8/internal"
)

const (
	TIMER_HZ = 60 // Nominal timer decrement rate when cycles are paced externally.
)

var _emulator_defines = map[string]string{
	"TIMER_HZ": "60",
}

// Emulator state. Machine core + program listing + beep hook.
type Emulator struct {
	Verbose      bool           // If set, enables verbose logging.
	*chip8.Chip8                // Reference to the machine simulation.
	Program      *chip8.Program // Assembled listing, when one is loaded. May be nil.

	// Beeper is called on the sound timer's 1 -> 0 transition. The
	// audio back end decides how to render it. May be nil.
	Beeper func()
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Chip8: chip8.NewChip8(),
	}

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Chip8.Defines(),
	)
}

// Reset restores the power-on state and reloads the current program
// listing, when one is attached.
func (emu *Emulator) Reset() (err error) {
	emu.Chip8.Verbose = emu.Verbose
	emu.Chip8.Reset()

	if emu.Program != nil {
		err = emu.Chip8.Load(emu.Program.Binary())
	}

	return
}

// KeyEvent routes a host key symbol through the input translator onto
// the machine keypad. Safe to call from the event goroutine.
func (emu *Emulator) KeyEvent(symbol rune, pressed bool) {
	input.Apply(&emu.Chip8.Keypad, symbol, pressed)
}

// LineNo returns the source line for the current program counter, or 0
// when no listing is attached or the counter is outside it.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	return emu.Program.LineNo(emu.Chip8.PC)
}

// Tick performs a single cycle of the emulator, routing the beep event
// to the audio hook. Execution errors carry the faulting address.
func (emu *Emulator) Tick() (err error) {
	emu.Chip8.Verbose = emu.Verbose

	addr := emu.Chip8.PC
	lineno := emu.LineNo()

	beep, err := emu.Chip8.Step()
	if err != nil {
		err = &ErrRuntime{Addr: addr, LineNo: lineno, Err: err}
		return
	}

	if beep && emu.Beeper != nil {
		emu.Beeper()
	}

	return
}

// RunFrame executes a budget of cycles, for frame-paced drivers. Pacing
// the budget against a real-time clock is the driver's concern.
func (emu *Emulator) RunFrame(cycles int) (err error) {
	for range cycles {
		err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
