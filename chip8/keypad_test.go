package chip8

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypad_Set(t *testing.T) {
	assert := assert.New(t)

	k := &Keypad{}
	for i := range uint8(KEYPAD_SIZE) {
		pressed, err := k.Pressed(i)
		assert.NoError(err)
		assert.False(pressed)
	}

	assert.NoError(k.Set(0xc, true))
	pressed, err := k.Pressed(0xc)
	assert.NoError(err)
	assert.True(pressed)

	assert.NoError(k.Set(0xc, false))
	pressed, err = k.Pressed(0xc)
	assert.NoError(err)
	assert.False(pressed)
}

func TestKeypad_Bounds(t *testing.T) {
	assert := assert.New(t)

	k := &Keypad{}
	assert.ErrorIs(k.Set(KEYPAD_SIZE, true), ErrKeypadIndex)

	_, err := k.Pressed(0xFF)
	assert.ErrorIs(err, ErrKeypadIndex)
}

func TestKeypad_Reset(t *testing.T) {
	assert := assert.New(t)

	k := &Keypad{}
	assert.NoError(k.Set(0x1, true))
	assert.NoError(k.Set(0xf, true))

	k.Reset()
	keys := k.Snapshot()
	for i, pressed := range keys {
		assert.False(pressed, i)
	}
}
