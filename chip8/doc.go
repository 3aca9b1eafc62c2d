// Package chip8 implements the CHIP-8 virtual machine and its assembler.
//
// The machine consists of 4096 bytes of memory, sixteen 8-bit general
// registers (VF doubling as the carry/borrow/collision flag), a 16-bit
// index register, a 16-level call stack, two 8-bit countdown timers, a
// monochrome 64x32 framebuffer, and a 16-key input matrix. Step runs one
// fetch/decode/execute/timer cycle; pacing is the driver's concern.
//
// The assembler provides the common CHIP-8 assembly mnemonics, with
// labels, equates, raw data rows, and compile-time expression evaluation.
package chip8
