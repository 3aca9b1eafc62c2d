package chip8

import (
	"sync"
)

const (
	SCREEN_WIDTH  = 64 // Native framebuffer width in pixels
	SCREEN_HEIGHT = 32 // Native framebuffer height in pixels

	// SCREEN_SCALE is the integer upscale the display front end applies
	// when presenting the native grid (640x320 on the desktop).
	SCREEN_SCALE = 10
)

// Display is the monochrome framebuffer. Only the clear-screen and
// draw-sprite opcodes mutate it; a display front end reads it through
// Snapshot. Writes happen on the goroutine driving Step while reads may
// come from a render goroutine, so access is serialized.
type Display struct {
	mu  sync.Mutex
	gfx [SCREEN_HEIGHT][SCREEN_WIDTH]uint8
}

// Clear zeroes every pixel.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gfx = [SCREEN_HEIGHT][SCREEN_WIDTH]uint8{}
}

// Sprite XORs an 8-pixel-wide sprite onto the framebuffer at (x, y),
// one byte per row, most significant bit leftmost, wrapping around both
// axes. Returns true when any lit pixel was erased by the XOR.
func (d *Display) Sprite(x, y uint8, sprite []byte) (collision bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for j, row := range sprite {
		for i := range 8 {
			if row&(0x80>>i) == 0 {
				continue
			}
			py := (int(y) + j) % SCREEN_HEIGHT
			px := (int(x) + i) % SCREEN_WIDTH
			if d.gfx[py][px] == 0x01 {
				collision = true
			}
			d.gfx[py][px] ^= 0x01
		}
	}

	return
}

// Snapshot returns a tear-free copy of the framebuffer.
func (d *Display) Snapshot() (gfx [SCREEN_HEIGHT][SCREEN_WIDTH]uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gfx = d.gfx
	return
}

// Pixel reports whether the pixel at (x, y) is lit.
func (d *Display) Pixel(x, y int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.gfx[y%SCREEN_HEIGHT][x%SCREEN_WIDTH] != 0
}
