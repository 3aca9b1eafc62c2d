package chip8

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

func init() {
	maps.Copy(sysEquate, _chip8_defines)
}

// Assembler is a single pass assembler for the CHIP-8 instruction set.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple numeric word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	v64, perr := strconv.ParseUint(word, 0, 16)
	if perr != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)

	return
}

// register parses a vX register name.
func (asm *Assembler) register(word string) (index uint8, err error) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		err = ErrRegisterInvalid
		return
	}

	nib, perr := strconv.ParseUint(word[1:], 16, 8)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}

	index = uint8(nib)

	return
}

// isRegister reports whether a word names a register.
func (asm *Assembler) isRegister(word string) bool {
	_, err := asm.register(word)
	return err == nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// addrOf resolves an address operand to a 12-bit value, or records it
// as a label to link after the full listing is parsed.
func (asm *Assembler) addrOf(word string) (value uint16, label string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		if value > 0x0FFF {
			err = ErrValueRange
		}
		return
	}

	if identRe.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	if st_int64 < 0 || st_int64 > 0xFFFF {
		err = ErrValueRange
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine expands a single source line into opcode words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	// Operand commas are decorative.
	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = int(asm.currentAddr())
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the address the next statement will assemble to.
func (asm *Assembler) currentAddr() uint16 {
	if len(asm.Statements) == 0 {
		return PROGRAM_START
	}

	last := asm.Statements[len(asm.Statements)-1]

	return last.Addr + uint16(len(last.Bytes))
}

// Parse parses an input stream into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statements = asm.Statements[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	// Final linking of jump labels.
	for n := range asm.Statements {
		st := &asm.Statements[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		addr, ok := asm.Label[st.LinkLabel]
		if !ok {
			err = ErrLabelMissing(st.LinkLabel)
			return
		}
		st.Bytes[0] = st.Bytes[0]&0xF0 | uint8(addr>>8)&0x0F
		st.Bytes[1] = uint8(addr)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statements),
	}

	return
}

// emit encodes one 16-bit instruction word big-endian.
func emit(word uint16) []byte {
	return []byte{uint8(word >> 8), uint8(word)}
}

// operandN parses a 4-bit operand.
func (asm *Assembler) operandN(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v > 0xF {
		err = ErrValueRange
		return
	}
	value = uint8(v)
	return
}

// operandNN parses an 8-bit operand.
func (asm *Assembler) operandNN(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v > 0xFF {
		err = ErrValueRange
		return
	}
	value = uint8(v)
	return
}

// parseWords assembles the words of a source line into a statement.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(bytes) == 0 {
			return
		}
		stmt := Statement{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: bytes, LinkLabel: label}
		asm.Statements = append(asm.Statements, stmt)
	}()

	var x, y, nn uint8
	var nnn uint16

	switch words[0] {
	case "cls":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		bytes = emit(0x00E0)
	case "ret":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		bytes = emit(0x00EE)
	case "sys":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		nnn, label, err = asm.addrOf(words[1])
		if err != nil {
			return
		}
		bytes = emit(0x0000 | nnn)
	case "jp":
		switch len(words) {
		case 2:
			// jp NNN
			nnn, label, err = asm.addrOf(words[1])
			if err != nil {
				return
			}
			bytes = emit(0x1000 | nnn)
		case 3:
			// jp v0 NNN
			if words[1] != "v0" {
				err = ErrOpcodeInvalid
				return
			}
			nnn, label, err = asm.addrOf(words[2])
			if err != nil {
				return
			}
			bytes = emit(0xB000 | nnn)
		default:
			err = ErrOpcodeValueMissing
		}
	case "call":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		nnn, label, err = asm.addrOf(words[1])
		if err != nil {
			return
		}
		bytes = emit(0x2000 | nnn)
	case "se", "sne":
		if len(words) != 3 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		if asm.isRegister(words[2]) {
			y, _ = asm.register(words[2])
			if words[0] == "se" {
				bytes = emit(0x5000 | uint16(x)<<8 | uint16(y)<<4)
			} else {
				bytes = emit(0x9000 | uint16(x)<<8 | uint16(y)<<4)
			}
			return
		}
		nn, err = asm.operandNN(words[2])
		if err != nil {
			return
		}
		if words[0] == "se" {
			bytes = emit(0x3000 | uint16(x)<<8 | uint16(nn))
		} else {
			bytes = emit(0x4000 | uint16(x)<<8 | uint16(nn))
		}
	case "ld":
		bytes, label, err = asm.parseLoad(words)
	case "add":
		if len(words) != 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if words[1] == "i" {
			x, err = asm.register(words[2])
			if err != nil {
				return
			}
			bytes = emit(0xF01E | uint16(x)<<8)
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		if asm.isRegister(words[2]) {
			y, _ = asm.register(words[2])
			bytes = emit(0x8004 | uint16(x)<<8 | uint16(y)<<4)
			return
		}
		nn, err = asm.operandNN(words[2])
		if err != nil {
			return
		}
		bytes = emit(0x7000 | uint16(x)<<8 | uint16(nn))
	case "or", "and", "xor", "sub", "subn":
		if len(words) != 3 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		y, err = asm.register(words[2])
		if err != nil {
			return
		}
		ops := map[string]uint16{
			"or":   0x8001,
			"and":  0x8002,
			"xor":  0x8003,
			"sub":  0x8005,
			"subn": 0x8007,
		}
		bytes = emit(ops[words[0]] | uint16(x)<<8 | uint16(y)<<4)
	case "shr", "shl":
		if len(words) < 2 || len(words) > 3 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		if len(words) == 3 {
			y, err = asm.register(words[2])
			if err != nil {
				return
			}
		}
		if words[0] == "shr" {
			bytes = emit(0x8006 | uint16(x)<<8 | uint16(y)<<4)
		} else {
			bytes = emit(0x800E | uint16(x)<<8 | uint16(y)<<4)
		}
	case "rnd":
		if len(words) != 3 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		nn, err = asm.operandNN(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xC000 | uint16(x)<<8 | uint16(nn))
	case "drw":
		if len(words) != 4 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		y, err = asm.register(words[2])
		if err != nil {
			return
		}
		var n uint8
		n, err = asm.operandN(words[3])
		if err != nil {
			return
		}
		bytes = emit(0xD000 | uint16(x)<<8 | uint16(y)<<4 | uint16(n))
	case "skp", "sknp":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		if words[0] == "skp" {
			bytes = emit(0xE09E | uint16(x)<<8)
		} else {
			bytes = emit(0xE0A1 | uint16(x)<<8)
		}
	case ".byte":
		if len(words) < 2 {
			err = ErrByteSyntax
			return
		}
		for _, word := range words[1:] {
			var b uint8
			b, err = asm.operandNN(word)
			if err != nil {
				return
			}
			bytes = append(bytes, b)
		}
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// parseLoad assembles the many forms of the ld mnemonic.
func (asm *Assembler) parseLoad(words []string) (bytes []byte, label string, err error) {
	if len(words) != 3 {
		err = ErrOpcodeValueMissing
		return
	}

	var x uint8
	var nn uint8
	var nnn uint16

	switch {
	case words[1] == "i":
		// ld i NNN
		nnn, label, err = asm.addrOf(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xA000 | nnn)
	case words[1] == "dt":
		// ld dt vX
		x, err = asm.register(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xF015 | uint16(x)<<8)
	case words[1] == "st":
		// ld st vX
		x, err = asm.register(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xF018 | uint16(x)<<8)
	case words[1] == "f":
		// ld f vX
		x, err = asm.register(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xF029 | uint16(x)<<8)
	case words[1] == "b":
		// ld b vX
		x, err = asm.register(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xF033 | uint16(x)<<8)
	case words[1] == "[i]":
		// ld [i] vX
		x, err = asm.register(words[2])
		if err != nil {
			return
		}
		bytes = emit(0xF055 | uint16(x)<<8)
	case asm.isRegister(words[1]):
		x, _ = asm.register(words[1])
		switch {
		case words[2] == "dt":
			// ld vX dt
			bytes = emit(0xF007 | uint16(x)<<8)
		case words[2] == "k":
			// ld vX k
			bytes = emit(0xF00A | uint16(x)<<8)
		case words[2] == "[i]":
			// ld vX [i]
			bytes = emit(0xF065 | uint16(x)<<8)
		case asm.isRegister(words[2]):
			// ld vX vY
			var y uint8
			y, _ = asm.register(words[2])
			bytes = emit(0x8000 | uint16(x)<<8 | uint16(y)<<4)
		default:
			// ld vX NN
			nn, err = asm.operandNN(words[2])
			if err != nil {
				return
			}
			bytes = emit(0x6000 | uint16(x)<<8 | uint16(nn))
		}
	default:
		err = ErrOpcodeInvalid
	}

	return
}
