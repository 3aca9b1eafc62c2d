package chip8

import (
	"errors"

	"github.com/zzhaolei/chip8/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrProgramTooLarge = errors.New(f("program too large"))
	ErrStackEmpty      = errors.New(f("stack empty"))
	ErrStackFull       = errors.New(f("stack full"))
	ErrMemoryBounds    = errors.New(f("memory access out of bounds"))
	ErrKeypadIndex     = errors.New(f("keypad index out of range"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrByteSyntax         = errors.New(f(".byte syntax"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrOpcode reports the faulting instruction and the address it was
// fetched from.
type ErrOpcode struct {
	Addr uint16
	Op   Opcode
}

func (eo ErrOpcode) Error() string {
	return f("0x%03x: bad opcode 0x%04x %v", eo.Addr, eo.Op.Merged(), eo.Op)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAccess is a computed address that fell outside its structure's bound.
type ErrAccess uint32

func (ea ErrAccess) Error() string {
	return f("address 0x%03x out of bounds", uint32(ea))
}

func (ea ErrAccess) Is(err error) (ok bool) {
	_, ok = err.(ErrAccess)
	return
}

// ErrLabelMissing is an unresolved jump or call label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrParseNumber is a word that could not be parsed as a number.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression is a $(...) expression that failed to evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
