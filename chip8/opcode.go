package chip8

import (
	"fmt"
)

// Opcode is one fetched 2-byte instruction, split into four 4-bit fields.
// The split form is what the dispatch in Execute matches on; Merged
// recombines it into the full 16-bit value.
type Opcode struct {
	First  uint8 // Instruction class nibble.
	Second uint8 // x field, selects Vx.
	Third  uint8 // y field, selects Vy.
	Fourth uint8 // n field.
}

// DecodeOpcode splits a 16-bit instruction word into its four nibbles.
func DecodeOpcode(word uint16) Opcode {
	return Opcode{
		First:  uint8((word & 0xF000) >> 12),
		Second: uint8((word & 0x0F00) >> 8),
		Third:  uint8((word & 0x00F0) >> 4),
		Fourth: uint8(word & 0x000F),
	}
}

// Merged recombines the four nibble fields into the 16-bit instruction word.
func (op Opcode) Merged() uint16 {
	return uint16(op.First)<<12 |
		uint16(op.Second)<<8 |
		uint16(op.Third)<<4 |
		uint16(op.Fourth)
}

// X is the register index in the second nibble.
func (op Opcode) X() uint8 {
	return op.Second
}

// Y is the register index in the third nibble.
func (op Opcode) Y() uint8 {
	return op.Third
}

// N is the low nibble.
func (op Opcode) N() uint8 {
	return op.Fourth
}

// NN is the low byte.
func (op Opcode) NN() uint8 {
	return uint8(op.Merged() & 0x00FF)
}

// NNN is the low 12 bits, an address.
func (op Opcode) NNN() uint16 {
	return op.Merged() & 0x0FFF
}

// String disassembles the opcode into its assembly mnemonic. Unmatched
// encodings render as raw .word data.
func (op Opcode) String() (text string) {
	x := op.Second
	y := op.Third

	switch op.First {
	case 0x0:
		switch op.Merged() {
		case 0x00E0:
			text = "cls"
		case 0x00EE:
			text = "ret"
		default:
			text = fmt.Sprintf("sys 0x%03x", op.NNN())
		}
	case 0x1:
		text = fmt.Sprintf("jp 0x%03x", op.NNN())
	case 0x2:
		text = fmt.Sprintf("call 0x%03x", op.NNN())
	case 0x3:
		text = fmt.Sprintf("se v%x 0x%02x", x, op.NN())
	case 0x4:
		text = fmt.Sprintf("sne v%x 0x%02x", x, op.NN())
	case 0x5:
		if op.Fourth == 0 {
			text = fmt.Sprintf("se v%x v%x", x, y)
		}
	case 0x6:
		text = fmt.Sprintf("ld v%x 0x%02x", x, op.NN())
	case 0x7:
		text = fmt.Sprintf("add v%x 0x%02x", x, op.NN())
	case 0x8:
		switch op.Fourth {
		case 0x0:
			text = fmt.Sprintf("ld v%x v%x", x, y)
		case 0x1:
			text = fmt.Sprintf("or v%x v%x", x, y)
		case 0x2:
			text = fmt.Sprintf("and v%x v%x", x, y)
		case 0x3:
			text = fmt.Sprintf("xor v%x v%x", x, y)
		case 0x4:
			text = fmt.Sprintf("add v%x v%x", x, y)
		case 0x5:
			text = fmt.Sprintf("sub v%x v%x", x, y)
		case 0x6:
			text = fmt.Sprintf("shr v%x", x)
		case 0x7:
			text = fmt.Sprintf("subn v%x v%x", x, y)
		case 0xE:
			text = fmt.Sprintf("shl v%x", x)
		}
	case 0x9:
		if op.Fourth == 0 {
			text = fmt.Sprintf("sne v%x v%x", x, y)
		}
	case 0xA:
		text = fmt.Sprintf("ld i 0x%03x", op.NNN())
	case 0xB:
		text = fmt.Sprintf("jp v0 0x%03x", op.NNN())
	case 0xC:
		text = fmt.Sprintf("rnd v%x 0x%02x", x, op.NN())
	case 0xD:
		text = fmt.Sprintf("drw v%x v%x %d", x, y, op.Fourth)
	case 0xE:
		switch op.NN() {
		case 0x9E:
			text = fmt.Sprintf("skp v%x", x)
		case 0xA1:
			text = fmt.Sprintf("sknp v%x", x)
		}
	case 0xF:
		switch op.NN() {
		case 0x07:
			text = fmt.Sprintf("ld v%x dt", x)
		case 0x0A:
			text = fmt.Sprintf("ld v%x k", x)
		case 0x15:
			text = fmt.Sprintf("ld dt v%x", x)
		case 0x18:
			text = fmt.Sprintf("ld st v%x", x)
		case 0x1E:
			text = fmt.Sprintf("add i v%x", x)
		case 0x29:
			text = fmt.Sprintf("ld f v%x", x)
		case 0x33:
			text = fmt.Sprintf("ld b v%x", x)
		case 0x55:
			text = fmt.Sprintf("ld [i] v%x", x)
		case 0x65:
			text = fmt.Sprintf("ld v%x [i]", x)
		}
	}

	if text == "" {
		text = fmt.Sprintf(".word 0x%04x", op.Merged())
	}

	return
}
