package chip8

import (
	"iter"
)

// Statement is one assembled source line.
type Statement struct {
	LineNo    int      // Source line number.
	Addr      uint16   // Address of the first emitted byte.
	Words     []string // Parsed source words.
	Bytes     []byte   // Emitted bytes, two per instruction, free-form for .byte rows.
	LinkLabel string   // Label to resolve into the instruction's NNN field.
}

// Program is an assembled listing: statements in address order starting
// at PROGRAM_START, with their source locations retained for diagnostics.
type Program struct {
	Statements []Statement
}

// Debug finds the statement covering an address.
func (prog *Program) Debug(addr uint16) (stmt *Statement) {
	for n, st := range prog.Statements {
		if addr >= st.Addr && addr < st.Addr+uint16(len(st.Bytes)) {
			stmt = &prog.Statements[n]
			break
		}
	}

	return
}

// LineNo returns the source line for an address, or 0 when the address
// is outside the listing.
func (prog *Program) LineNo(addr uint16) int {
	stmt := prog.Debug(addr)
	if stmt == nil {
		return 0
	}

	return stmt.LineNo
}

// Binary flattens the listing into a loadable image, offset from
// PROGRAM_START.
func (prog *Program) Binary() (image []byte) {
	for _, st := range prog.Statements {
		image = append(image, st.Bytes...)
	}

	return
}

// Codes iterates the listing as address/opcode pairs. Odd trailing bytes
// from .byte rows are padded with zero for decode.
func (prog *Program) Codes() iter.Seq2[uint16, Opcode] {
	return func(yield func(addr uint16, op Opcode) bool) {
		for _, st := range prog.Statements {
			for n := 0; n < len(st.Bytes); n += 2 {
				word := uint16(st.Bytes[n]) << 8
				if n+1 < len(st.Bytes) {
					word |= uint16(st.Bytes[n+1])
				}
				if !yield(st.Addr+uint16(n), DecodeOpcode(word)) {
					return
				}
			}
		}
	}
}
