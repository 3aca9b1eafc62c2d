// Package input translates host key symbols into the 16-key matrix
// consumed by the machine's key-query opcodes.
package input

import (
	"github.com/zzhaolei/chip8/chip8"
)

// keymap is the fixed 16-symbol layout: the left-hand block of a QWERTY
// keyboard mapped onto the machine's hexadecimal 4x4 keypad.
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var keymap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Index looks up the keypad index for a host key symbol.
func Index(symbol rune) (index uint8, ok bool) {
	index, ok = keymap[symbol]
	return
}

// Apply records a key press or release on the keypad. Unrecognized
// symbols are ignored.
func Apply(keypad *chip8.Keypad, symbol rune, pressed bool) {
	index, ok := keymap[symbol]
	if !ok {
		return
	}

	// The index is always in range, Set cannot fail here.
	_ = keypad.Set(index, pressed)
}
