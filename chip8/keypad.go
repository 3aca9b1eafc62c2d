package chip8

import (
	"sync"
)

const (
	KEYPAD_SIZE = 16 // Keys 0x0 through 0xF
)

// Keypad is the 16-key input matrix. The input translator writes key
// state, possibly from a different goroutine than the one driving Step,
// so access is serialized.
type Keypad struct {
	mu   sync.Mutex
	keys [KEYPAD_SIZE]bool
}

// Set records a key press or release.
func (k *Keypad) Set(index uint8, pressed bool) (err error) {
	if int(index) >= KEYPAD_SIZE {
		return ErrKeypadIndex
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[index] = pressed
	return
}

// Pressed reports whether a key is currently held.
func (k *Keypad) Pressed(index uint8) (pressed bool, err error) {
	if int(index) >= KEYPAD_SIZE {
		err = ErrKeypadIndex
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	pressed = k.keys[index]
	return
}

// Snapshot returns a copy of the full key state.
func (k *Keypad) Snapshot() (keys [KEYPAD_SIZE]bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	keys = k.keys
	return
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys = [KEYPAD_SIZE]bool{}
}
