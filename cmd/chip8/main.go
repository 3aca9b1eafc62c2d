// Command chip8 runs CHIP-8 program images in a desktop window.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/retroenv/retrogolib/log"

	"github.com/zzhaolei/chip8/chip8"
	"github.com/zzhaolei/chip8/emulator"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 440
	beepMillis     = 80
)

// keyBindings maps the 16-symbol keypad layout onto host keys. The
// symbols are the ones the input translator understands.
var keyBindings = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

type game struct {
	emu    *emulator.Emulator
	cycles int

	canvas *ebiten.Image // reused 64x32 bitmap canvas
	pixels []byte
}

func (g *game) Update() error {
	for symbol, key := range keyBindings {
		g.emu.KeyEvent(symbol, ebiten.IsKeyPressed(key))
	}

	return g.emu.RunFrame(g.cycles)
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(chip8.SCREEN_WIDTH, chip8.SCREEN_HEIGHT)
		g.pixels = make([]byte, chip8.SCREEN_WIDTH*chip8.SCREEN_HEIGHT*4)
	}

	gfx := g.emu.Chip8.Display.Snapshot()
	for y := range gfx {
		for x, px := range gfx[y] {
			var v byte
			if px != 0 {
				v = 0xFF
			}
			n := (y*chip8.SCREEN_WIDTH + x) * 4
			g.pixels[n+0] = v
			g.pixels[n+1] = v
			g.pixels[n+2] = v
			g.pixels[n+3] = 0xFF
		}
	}
	g.canvas.WritePixels(g.pixels)

	// Scale the native grid up to the 640x320 window.
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(chip8.SCREEN_SCALE, chip8.SCREEN_SCALE)
	screen.DrawImage(g.canvas, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.SCREEN_WIDTH * chip8.SCREEN_SCALE, chip8.SCREEN_HEIGHT * chip8.SCREEN_SCALE
}

// beepWave generates a short square wave as 16-bit stereo PCM.
func beepWave() []byte {
	samples := beepSampleRate * beepMillis / 1000
	period := beepSampleRate / beepFrequency
	buf := make([]byte, samples*4)
	for i := range samples {
		v := int16(6000)
		if (i/(period/2))%2 == 1 {
			v = -6000
		}
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(v))
	}

	return buf
}

// createLogger creates a logger with appropriate settings.
func createLogger(verbose, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if verbose {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	var compile string
	var cycles int
	var verbose bool
	var quiet bool

	flag.StringVar(&compile, "c", "", "assembly source file to assemble and run")
	flag.IntVar(&cycles, "cycles", 10, "machine cycles per frame")
	flag.BoolVar(&verbose, "v", false, "verbose mode")
	flag.BoolVar(&quiet, "q", false, "perform operations quietly")
	flag.Parse()

	wantArgs := 1
	if compile != "" {
		wantArgs = 0
	}
	if flag.NArg() != wantArgs {
		fmt.Printf("usage: chip8 [options] <rom>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := createLogger(verbose, quiet)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	// Assemble a new program image.
	if compile != "" {
		inf, err := os.Open(compile)
		if err != nil {
			logger.Fatal("opening source failed", log.Err(err))
		}
		defer inf.Close()

		asm := &chip8.Assembler{}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			logger.Fatal("assembling failed", log.String("file", compile), log.Err(err))
		}
		emu.Program = prog

		logger.Info("assembled program",
			log.String("file", compile),
			log.Int("bytes", len(prog.Binary())),
		)
	}

	if err := emu.Reset(); err != nil {
		logger.Fatal("reset failed", log.Err(err))
	}

	if flag.NArg() == 1 {
		name := flag.Arg(0)
		rom, err := os.ReadFile(name)
		if err != nil {
			logger.Fatal("reading rom failed", log.Err(err))
		}
		if err := emu.Load(rom); err != nil {
			logger.Fatal("loading rom failed", log.String("file", name), log.Err(err))
		}

		logger.Info("loaded rom", log.String("file", name), log.Int("bytes", len(rom)))
	}

	audioContext := audio.NewContext(beepSampleRate)
	wave := beepWave()
	emu.Beeper = func() {
		audioContext.NewPlayerFromBytes(wave).Play()
	}

	ebiten.SetWindowSize(chip8.SCREEN_WIDTH*chip8.SCREEN_SCALE, chip8.SCREEN_HEIGHT*chip8.SCREEN_SCALE)
	ebiten.SetWindowTitle("chip8")

	g := &game{emu: emu, cycles: cycles}
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("emulation failed", log.Err(err))
	}
}
