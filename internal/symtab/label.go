package symtab

import (
	"encoding/binary"

	"box/internal/instr"
)

// labelDef is the definition payload of a conditional-jump symbol: the
// procedure and word position the label has been defined at. Position -1
// means undefined. Grounded on vmsymstuff.c's VMSymLabel.
type labelDef struct {
	procNum  int32
	position int32
}

func encodeLabelDef(d labelDef) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(d.procNum))
	binary.LittleEndian.PutUint32(b[4:8], uint32(d.position))
	return b
}

func decodeLabelDef(b []byte) labelDef {
	if len(b) < 8 {
		return labelDef{position: -1}
	}
	return labelDef{
		procNum:  int32(binary.LittleEndian.Uint32(b[0:4])),
		position: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// assembleCondJmp is the CodeGen for a conditional-jump reference: it emits
// `jc <position>`, where position is the label's absolute word offset (0,
// a provisional placeholder, if the label isn't defined yet). ForceLong
// keeps that placeholder emission the same width as the resolved one, since
// a label defined later in a long procedure can easily cross the short
// form's 16-bit argument boundary. Grounded on vmsymstuff.c's
// Assemble_Cond_Jmp — jc's argument is always an absolute target, never a
// relative displacement, so there is nothing to adjust when the instruction
// is later spliced somewhere else in the code.
func assembleCondJmp(pt *ProcTable, symNum int, kind Kind, defined bool, def []byte) error {
	var position int32
	if defined {
		position = decodeLabelDef(def).position
	}
	return pt.Emit(instr.Instruction{
		Op:        instr.OpJc,
		Args:      []instr.Arg{{Mode: instr.AddrImmediate, Value: position}},
		ForceLong: true,
	})
}

// Label is a jump target: a position in some procedure's code that may not
// be known yet when the first jump to it is assembled. Every Jump call
// before Define records a reference that Define patches once the position
// is known.
type Label struct {
	symNum int
}

// NewLabel creates an undefined label.
func NewLabel(l *Linker) *Label {
	return &Label{symNum: l.Syms.SymNew(KindCondJmp)}
}

// Jump emits a conditional jump to the label at the current assembly
// position. If the label is already defined this emits the final absolute
// jump directly; otherwise it emits a placeholder and records a reference
// that Define will patch in place.
func (lb *Label) Jump(l *Linker) error {
	return l.SymCodeRef(lb.symNum, assembleCondJmp)
}

// Define fixes the label's position to procNum/position and rewrites every
// jump already assembled against it — and any future Jump call sees the
// definition immediately and emits the final form directly.
func (lb *Label) Define(l *Linker, procNum, position int) error {
	if err := l.Syms.SymDef(lb.symNum, encodeLabelDef(labelDef{procNum: int32(procNum), position: int32(position)})); err != nil {
		return err
	}
	return l.Syms.SymResolve(lb.symNum)
}
