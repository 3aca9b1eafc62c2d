package chip8

import (
	"errors"
	"log"
)

// flag converts a carry/borrow/collision condition to its VF encoding.
func flag(set bool) uint8 {
	if set {
		return 1
	}
	return 0
}

// skip advances past the next instruction.
func (c *Chip8) skip() {
	c.PC += 2
}

// Execute applies a single decoded instruction. The program counter
// already points past the instruction when Execute runs, so jump and
// call targets are computed relative to the next instruction. Unmatched
// encodings are a documented no-op; bounds violations are fatal.
func (c *Chip8) Execute(op Opcode) (err error) {
	if c.Verbose {
		log.Printf("%03x: %v", c.PC-2, op)
	}

	x := op.Second
	y := op.Third

	switch op.First {
	case 0x0:
		switch op.Merged() {
		case 0x00E0:
			// cls
			c.Display.Clear()
		case 0x00EE:
			// ret. The call pushed its own address, so the return
			// target is one instruction past it.
			ret, ok := c.Stack.Pop()
			if !ok {
				return ErrStackEmpty
			}
			c.PC = ret + 2
		default:
			// sys NNN, legacy routine call, unsupported
		}
	case 0x1:
		// jp NNN
		c.PC = op.NNN()
	case 0x2:
		// call NNN. PC has advanced past the call, back it out so the
		// stacked address is the call's own.
		if c.Stack.Full() {
			return ErrStackFull
		}
		c.Stack.Push(c.PC - 2)
		c.PC = op.NNN()
	case 0x3:
		// se vx nn
		if c.V[x] == op.NN() {
			c.skip()
		}
	case 0x4:
		// sne vx nn
		if c.V[x] != op.NN() {
			c.skip()
		}
	case 0x5:
		// se vx vy
		if op.Fourth == 0 && c.V[x] == c.V[y] {
			c.skip()
		}
	case 0x6:
		// ld vx nn
		c.V[x] = op.NN()
	case 0x7:
		// add vx nn, wrapping, no flag
		c.V[x] += op.NN()
	case 0x8:
		err = c.executeMath(op, x, y)
	case 0x9:
		// sne vx vy
		if op.Fourth == 0 && c.V[x] != c.V[y] {
			c.skip()
		}
	case 0xA:
		// ld i nnn
		c.Index = op.NNN()
	case 0xB:
		// jp v0 nnn
		c.PC = uint16(c.V[0]) + op.NNN()
	case 0xC:
		// rnd vx nn
		c.V[x] = c.Rand() & op.NN()
	case 0xD:
		// drw vx vy n
		end := uint32(c.Index) + uint32(op.Fourth)
		if end > MEMORY_SIZE {
			return errors.Join(ErrMemoryBounds, ErrAccess(end-1))
		}
		sprite := c.Memory[c.Index:end]
		c.V[0xF] = flag(c.Display.Sprite(c.V[x], c.V[y], sprite))
	case 0xE:
		switch op.NN() {
		case 0x9E:
			// skp vx
			var pressed bool
			pressed, err = c.Keypad.Pressed(c.V[x])
			if err != nil {
				return
			}
			if pressed {
				c.skip()
			}
		case 0xA1:
			// sknp vx
			var pressed bool
			pressed, err = c.Keypad.Pressed(c.V[x])
			if err != nil {
				return
			}
			if !pressed {
				c.skip()
			}
		}
	case 0xF:
		err = c.executeMisc(op, x)
	}

	return
}

// executeMath handles the 8XYn register arithmetic group. VF is written
// before the result, so an instruction naming VF as its destination
// keeps the result.
func (c *Chip8) executeMath(op Opcode, x, y uint8) (err error) {
	switch op.Fourth {
	case 0x0:
		// ld vx vy
		c.V[x] = c.V[y]
	case 0x1:
		// or vx vy
		c.V[x] |= c.V[y]
	case 0x2:
		// and vx vy
		c.V[x] &= c.V[y]
	case 0x3:
		// xor vx vy
		c.V[x] ^= c.V[y]
	case 0x4:
		// add vx vy, VF = carry
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[0xF] = flag(sum > 0xFF)
		c.V[x] = uint8(sum)
	case 0x5:
		// sub vx vy, VF = 0 on borrow
		result := c.V[x] - c.V[y]
		c.V[0xF] = flag(c.V[x] >= c.V[y])
		c.V[x] = result
	case 0x6:
		// shr vx, VF = shifted-out bit
		c.V[0xF] = c.V[x] & 0x1
		c.V[x] >>= 1
	case 0x7:
		// subn vx vy, VF = 0 on borrow
		result := c.V[y] - c.V[x]
		c.V[0xF] = flag(c.V[y] >= c.V[x])
		c.V[x] = result
	case 0xE:
		// shl vx, VF = shifted-out bit, normalized to 0/1
		c.V[0xF] = (c.V[x] >> 7) & 0x1
		c.V[x] <<= 1
	}

	return
}

// executeMisc handles the FXnn group.
func (c *Chip8) executeMisc(op Opcode, x uint8) (err error) {
	switch op.NN() {
	case 0x07:
		// ld vx dt
		c.V[x] = c.Delay
	case 0x0A:
		// ld vx k: cooperative busy-wait. Re-execute this instruction
		// each cycle until the key is pressed.
		var pressed bool
		pressed, err = c.Keypad.Pressed(c.V[x])
		if err != nil {
			return
		}
		if !pressed {
			c.PC -= 2
		}
	case 0x15:
		// ld dt vx
		c.Delay = c.V[x]
	case 0x18:
		// ld st vx
		c.Sound = c.V[x]
	case 0x1E:
		// add i vx, no flag
		c.Index += uint16(c.V[x])
	case 0x29:
		// ld f vx, glyph table offset
		c.Index = uint16(c.V[x]) * GLYPH_HEIGHT
	case 0x33:
		// ld b vx, decimal digits at i, i+1, i+2
		if int(c.Index)+2 >= MEMORY_SIZE {
			return errors.Join(ErrMemoryBounds, ErrAccess(uint32(c.Index)+2))
		}
		vx := c.V[x]
		c.Memory[c.Index] = vx / 100
		c.Memory[c.Index+1] = (vx / 10) % 10
		c.Memory[c.Index+2] = vx % 10
	case 0x55:
		// ld [i] vx, dump v0..vx
		end := uint32(c.Index) + uint32(x)
		if end >= MEMORY_SIZE {
			return errors.Join(ErrMemoryBounds, ErrAccess(end))
		}
		for i := uint8(0); i <= x; i++ {
			c.Memory[c.Index+uint16(i)] = c.V[i]
		}
	case 0x65:
		// ld vx [i], load v0..vx
		end := uint32(c.Index) + uint32(x)
		if end >= MEMORY_SIZE {
			return errors.Join(ErrMemoryBounds, ErrAccess(end))
		}
		for i := uint8(0); i <= x; i++ {
			c.V[i] = c.Memory[c.Index+uint16(i)]
		}
	}

	return
}
