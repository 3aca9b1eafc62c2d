package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zzhaolei/chip8/chip8"
)

func assemble(t *testing.T, source string) *chip8.Program {
	t.Helper()

	asm := &chip8.Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatal(err)
	}

	return prog
}

func TestEmulator_Reset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, "ld v0 0x2a\nhalt: jp halt\n")

	assert.NoError(emu.Reset())
	assert.Equal(uint16(chip8.PROGRAM_START), emu.Chip8.PC)

	assert.NoError(emu.Tick())
	assert.Equal(uint8(0x2a), emu.Chip8.V[0])

	// Reset reloads the attached listing.
	emu.Chip8.Memory[chip8.PROGRAM_START] = 0x00
	assert.NoError(emu.Reset())
	assert.Equal(byte(0x60), emu.Chip8.Memory[chip8.PROGRAM_START])
	assert.Equal(uint8(0), emu.Chip8.V[0])
}

func TestEmulator_Beeper(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, strings.Join([]string{
		"ld v0 1",
		"ld st v0",
		"halt: jp halt",
	}, "\n"))

	beeps := 0
	emu.Beeper = func() { beeps++ }

	assert.NoError(emu.Reset())
	assert.NoError(emu.RunFrame(5))
	assert.Equal(1, beeps)
}

func TestEmulator_Beeper_Nil(t *testing.T) {
	assert := assert.New(t)

	// A beep with no hook attached is dropped.
	emu := NewEmulator()
	emu.Program = assemble(t, "ld v0 1\nld st v0\nhalt: jp halt\n")

	assert.NoError(emu.Reset())
	assert.NoError(emu.RunFrame(5))
}

func TestEmulator_KeyEvent(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NoError(emu.Reset())

	emu.KeyEvent('w', true)
	pressed, err := emu.Chip8.Keypad.Pressed(0x5)
	assert.NoError(err)
	assert.True(pressed)

	emu.KeyEvent('w', false)
	pressed, err = emu.Chip8.Keypad.Pressed(0x5)
	assert.NoError(err)
	assert.False(pressed)
}

func TestEmulator_Runtime(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, "ret\n")

	assert.NoError(emu.Reset())
	err := emu.Tick()
	assert.ErrorIs(err, chip8.ErrStackEmpty)

	var re *ErrRuntime
	assert.True(errors.As(err, &re))
	assert.Equal(uint16(chip8.PROGRAM_START), re.Addr)
	assert.Equal(1, re.LineNo)
	assert.Contains(re.Error(), "line 1")
}

func TestEmulator_Runtime_NoListing(t *testing.T) {
	assert := assert.New(t)

	// A raw image has no source lines to report.
	emu := NewEmulator()
	assert.NoError(emu.Reset())
	assert.NoError(emu.Load([]byte{0x00, 0xee}))

	err := emu.Tick()
	assert.ErrorIs(err, chip8.ErrStackEmpty)

	var re *ErrRuntime
	assert.True(errors.As(err, &re))
	assert.Equal(0, re.LineNo)
}

func TestEmulator_RunFrame_Halts(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, "ld v0 0\nret\nld v0 1\n")

	assert.NoError(emu.Reset())
	err := emu.RunFrame(10)
	assert.ErrorIs(err, chip8.ErrStackEmpty)

	// The frame stops at the fault, later cycles never run.
	assert.Equal(uint8(0), emu.Chip8.V[0])

	var re *ErrRuntime
	assert.True(errors.As(err, &re))
	assert.Equal(2, re.LineNo)
}

func TestEmulator_LineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.Equal(0, emu.LineNo())

	emu.Program = assemble(t, "cls\nhalt: jp halt\n")
	assert.NoError(emu.Reset())
	assert.Equal(1, emu.LineNo())

	assert.NoError(emu.Tick())
	assert.Equal(2, emu.LineNo())
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("60", defines["TIMER_HZ"])
	assert.Equal("4096", defines["MEMORY_SIZE"])
	assert.Equal("0x200", defines["PROGRAM_START"])
}
