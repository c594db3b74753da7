package instr

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Disassembler renders decoded instructions to text. CallName, when set, is
// consulted by the call mnemonic's immediate-argument form to print the
// installed procedure name alongside its call number. jc and jmp need no
// equivalent hook: their argument is already an absolute target word offset,
// never a relative displacement, so specialArg prints it as-is.
type Disassembler struct {
	CallName func(callNum int32) string
}

// typeLetter names each register class by the upper-case one-letter code the
// disassembler puts in a register reference, e.g. "grI3" for global register
// 3 of the int class.
func typeLetter(c interface{ String() string }) string {
	s := c.String()
	if s == "" {
		return "?"
	}
	return strings.ToUpper(s[:1])
}

func (dis *Disassembler) formatArg(d Descriptor, a Arg) string {
	letter := typeLetter(d.Class)
	switch a.Mode {
	case AddrGlobal:
		return fmt.Sprintf("gr%s%d", letter, a.Value)
	case AddrLocal:
		return fmt.Sprintf("r%s%d", letter, a.Value)
	case AddrPointer:
		if a.Value == 0 {
			return fmt.Sprintf("%s[ro0]", letter)
		}
		return fmt.Sprintf("%s[ro0+%d]", letter, a.Value)
	case AddrImmediate:
		return fmt.Sprintf("%d", a.Value)
	default:
		return fmt.Sprintf("?%d", a.Value)
	}
}

// One renders a single decoded instruction, e.g. "add rI1, rI2" or
// "call 7 ; draw_line".
func (dis *Disassembler) One(in Instruction) string {
	d := Describe(in.Op)
	var parts []string
	for i, a := range in.Args {
		special := dis.specialArg(in, i, a)
		if special != "" {
			parts = append(parts, special)
			continue
		}
		parts = append(parts, dis.formatArg(d, a))
	}
	line := d.Name
	if len(parts) > 0 {
		line += " " + strings.Join(parts, ", ")
	}
	if len(in.Data) > 0 {
		line += fmt.Sprintf("  ; data: %s", humanize.Bytes(uint64(len(in.Data))))
	}
	return line
}

// specialArg implements the two mnemonic-specific argument printers spec.md
// calls out: a call with an immediate argument prints the installed
// procedure's name next to its call number, and a conditional jump with an
// immediate argument prints the absolute target word offset it already
// carries (jc's argument is stored as an absolute position, never a
// relative displacement, so there's nothing further to resolve here beyond
// labeling it).
func (dis *Disassembler) specialArg(in Instruction, idx int, a Arg) string {
	if a.Mode != AddrImmediate {
		return ""
	}
	switch in.Op {
	case OpCall:
		if dis.CallName == nil {
			return ""
		}
		name := dis.CallName(a.Value)
		if name == "" {
			return ""
		}
		return fmt.Sprintf("%d ; %s", a.Value, name)
	case OpJc, OpJmp:
		return fmt.Sprintf("-> %d", a.Value)
	default:
		_ = idx
		return ""
	}
}

// Disassemble decodes and renders every instruction in words, starting at
// offset 0, stopping at the first decode error. It returns the rendered
// lines and, if decoding stopped early, the error that stopped it.
func (dis *Disassembler) Disassemble(words []uint32) ([]string, error) {
	var lines []string
	off := 0
	for off < len(words) {
		in, next, err := Decode(words, off)
		if err != nil {
			lines = append(lines, fmt.Sprintf("<error at word %d: %v>", off, err))
			return lines, err
		}
		lines = append(lines, fmt.Sprintf("%4d: %s", off, dis.One(in)))
		off = next
	}
	return lines, nil
}
