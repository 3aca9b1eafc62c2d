package chip8

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("4096", asm.Equate["MEMORY_SIZE"])
	assert.Equal("0x200", asm.Equate["PROGRAM_START"])
	assert.Equal("64", asm.Equate["SCREEN_WIDTH"])
	assert.Equal("32", asm.Equate["SCREEN_HEIGHT"])
}

func TestAssemblerEncodings(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		word uint16
	}){
		{"cls", 0x00e0},
		{"ret", 0x00ee},
		{"sys 0x123", 0x0123},
		{"jp 0x234", 0x1234},
		{"jp v0 0x234", 0xb234},
		{"call 0x345", 0x2345},
		{"se v3 0x2a", 0x332a},
		{"se v3 v4", 0x5340},
		{"sne v3 0x2a", 0x432a},
		{"sne v3 v4", 0x9340},
		{"ld v3 0x2a", 0x632a},
		{"ld v3 v4", 0x8340},
		{"add v3 0x2a", 0x732a},
		{"add v3 v4", 0x8344},
		{"or v3 v4", 0x8341},
		{"and v3 v4", 0x8342},
		{"xor v3 v4", 0x8343},
		{"sub v3 v4", 0x8345},
		{"subn v3 v4", 0x8347},
		{"shr v3", 0x8306},
		{"shr v3 v4", 0x8346},
		{"shl v3", 0x830e},
		{"shl v3 v4", 0x834e},
		{"ld i 0x123", 0xa123},
		{"rnd v3 0x7f", 0xc37f},
		{"drw v3 v4 5", 0xd345},
		{"skp v3", 0xe39e},
		{"sknp v3", 0xe3a1},
		{"ld v3 dt", 0xf307},
		{"ld v3 k", 0xf30a},
		{"ld dt v3", 0xf315},
		{"ld st v3", 0xf318},
		{"add i v3", 0xf31e},
		{"ld f v3", 0xf329},
		{"ld b v3", 0xf333},
		{"ld [i] v3", 0xf355},
		{"ld v3 [i]", 0xf365},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		assert.NoError(err, entry.line)
		if err != nil {
			continue
		}
		assert.Equal(emit(entry.word), prog.Binary(), entry.line)
	}
}

func TestAssemblerDisassembly(t *testing.T) {
	assert := assert.New(t)

	// Every canonically disassembled instruction reassembles to the
	// original word.
	words := []uint16{
		0x00e0, 0x00ee, 0x0123,
		0x1234, 0xb234, 0x2345,
		0x332a, 0x5340, 0x432a, 0x9340,
		0x632a, 0x8340, 0x732a, 0x8344,
		0x8341, 0x8342, 0x8343, 0x8345, 0x8347,
		0x8306, 0x830e,
		0xa123, 0xc37f, 0xd345, 0xe39e, 0xe3a1,
		0xf307, 0xf30a, 0xf315, 0xf318, 0xf31e, 0xf329, 0xf333, 0xf355, 0xf365,
	}

	for _, word := range words {
		op := DecodeOpcode(word)

		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(op.String()))
		assert.NoError(err, op.String())
		if err != nil {
			continue
		}
		assert.Equal(emit(word), prog.Binary(), op.String())
	}
}

func TestAssemblerProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ DIGIT 0x07",
		"start:",
		"    ld v0, DIGIT       ; glyph to draw",
		"    ld f, v0",
		"    ld v1, $(DIGIT * 2)",
		"    ld v2, 0x05",
		"    drw v1, v2, 5",
		"loop:",
		"    jp loop",
		"data:",
		"    .byte 0xde 0xad",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(0x200, asm.Label["start"])
	assert.Equal(0x20a, asm.Label["loop"])
	assert.Equal(0x20c, asm.Label["data"])

	expected := []byte{
		0x60, 0x07, // ld v0 0x07
		0xf0, 0x29, // ld f v0
		0x61, 0x0e, // ld v1 0x0e
		0x62, 0x05, // ld v2 0x05
		0xd1, 0x25, // drw v1 v2 5
		0x12, 0x0a, // jp 0x20a
		0xde, 0xad, // .byte
	}
	assert.Equal(expected, prog.Binary())
}

func TestAssemblerForwardLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"jp main",
		".byte 0xff",
		"main:",
		"cls",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	// The label lands on an odd address and links after the listing.
	assert.Equal(0x203, asm.Label["main"])
	assert.Equal([]byte{0x12, 0x03, 0xff, 0x00, 0xe0}, prog.Binary())
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ TEN 0x10",
		"ld v0 TEN",
		"ld v1 $(TEN + TEN)",
		".equ THIRTY $(2 * TEN + TEN)",
		"ld v2 THIRTY",
		"ld v3 $(LINENO)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(errors.Unwrap(err))
	}

	expected := []byte{
		0x60, 0x10,
		0x61, 0x20,
		0x62, 0x30,
		0x63, 0x06, // LINENO of the last line
	}
	assert.Equal(expected, prog.Binary())
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SPEED", "0x08")

	program := []string{
		"ld v0 SPEED",
		"jp PROGRAM_START",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal([]byte{0x60, 0x08, 0x12, 0x00}, prog.Binary())
}

func TestAssemblerStatements(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"; setup",
		"cls",
		"ld v0 0x2a",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	stmt := prog.Debug(0x202)
	assert.NotNil(stmt)
	assert.Equal(3, stmt.LineNo)
	assert.Equal([]string{"ld", "v0", "0x2a"}, stmt.Words)

	assert.Equal(2, prog.LineNo(0x200))
	assert.Equal(0, prog.LineNo(0x300))

	codes := map[uint16]Opcode{}
	for addr, op := range prog.Codes() {
		codes[addr] = op
	}
	assert.Equal(DecodeOpcode(0x00e0), codes[0x200])
	assert.Equal(DecodeOpcode(0x602a), codes[0x202])
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"ld v0 nothing", 1},
		{"ld v0 $(\"aaa\")", 1},
		{"ld v0 $(more(\"aaa\"))", 1},
		{"ld v0 $(0x10000000000000000)", 1},
		{".equ", 1},
		{".equ A", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{"cls extra", 1},
		{"ret extra", 1},
		{"sys", 1},
		{"jp", 1},
		{"jp v1 0x200", 1},
		{"jp 0x1000", 1},
		{"jp nowhere", 1},
		{"call", 1},
		{"se v0", 1},
		{"se x0 1", 1},
		{"sne v0 0x100", 1},
		{"add i 0x10", 1},
		{"add v0 0x100", 1},
		{"or v0 1", 1},
		{"shr", 1},
		{"shr v0 v1 v2", 1},
		{"rnd v0", 1},
		{"drw v0 v1", 1},
		{"drw v0 v1 16", 1},
		{"skp", 1},
		{"sknp 5", 1},
		{"ld v0", 1},
		{"ld q v0", 1},
		{"ld i 0x1000", 1},
		{".byte", 1},
		{".byte 0x100", 1},
		{"frobnicate", 1},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}
}
