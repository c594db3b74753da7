package symtab

import (
	"encoding/binary"

	"box/internal/instr"
)

// encodeUint32/decodeUint32 give symbol definitions a stable byte encoding
// without reaching for unsafe pointer casts the way the original's raw
// memcpy'd C structs did.
func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func decodeUint32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// NewCallSymbol creates a symbol standing for a not-yet-known call number —
// used for a procedure referenced before it's installed (e.g. a forward
// call, or a name that will be resolved against an external library).
func NewCallSymbol(t *Table) int {
	return t.SymNew(KindCall)
}

// DefCallSymbol gives symNum its call number once the procedure it stands
// for has been installed.
func DefCallSymbol(t *Table, symNum int, callNum int) error {
	return t.SymDef(symNum, encodeUint32(uint32(callNum)))
}

// assembleCall is the CodeGen for a call reference: it emits `call <n>`,
// using whatever call number is currently on file — 0 if the symbol isn't
// defined yet, the real one once it is. ForceLong keeps the provisional and
// resolved emissions the same width regardless of how large the real call
// number turns out to be. Grounded on vmsymstuff.c's Assemble_Call.
func assembleCall(pt *ProcTable, symNum int, kind Kind, defined bool, def []byte) error {
	var callNum int32
	if defined {
		callNum = int32(decodeUint32(def))
	}
	return pt.Emit(instr.Instruction{
		Op:        instr.OpCall,
		Args:      []instr.Arg{{Mode: instr.AddrImmediate, Value: callNum}},
		ForceLong: true,
	})
}

// RefCall assembles a call to symNum at the current assembly position,
// leaving a reference that will rewrite the call number in place once the
// symbol is defined.
func RefCall(l *Linker, symNum int) error {
	return l.SymCodeRef(symNum, assembleCall)
}
