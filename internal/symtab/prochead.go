package symtab

import (
	"box/internal/instr"
	"box/internal/regalloc"
)

// procHeadOps is the opcode each register class's frame-allocation pseudo-
// instruction uses, indexed by regalloc.Class — mirroring Assemble_Proc_Head's
// asm_code[NUM_TYPES] table.
var procHeadOps = [...]instr.Opcode{
	regalloc.Char:  instr.OpNewC,
	regalloc.Int:   instr.OpNewI,
	regalloc.Real:  instr.OpNewR,
	regalloc.Point: instr.OpNewP,
	regalloc.Obj:   instr.OpNewO,
}

// encodeCounts/decodeCounts give a procedure header symbol's definition a
// byte encoding: ten little-endian uint32s, variable count then register
// count for each of the five classes in regalloc.Class order.
func encodeCounts(c regalloc.Counts) []byte {
	b := make([]byte, 0, 40)
	for cl := range procHeadOps {
		b = append(b, encodeUint32(uint32(c.Variables[cl]))...)
		b = append(b, encodeUint32(uint32(c.Registers[cl]))...)
	}
	return b
}

func decodeCounts(b []byte) regalloc.Counts {
	var c regalloc.Counts
	for cl := range procHeadOps {
		if len(b) < (cl+1)*8 {
			break
		}
		c.Variables[cl] = int(decodeUint32(b[cl*8 : cl*8+4]))
		c.Registers[cl] = int(decodeUint32(b[cl*8+4 : cl*8+8]))
	}
	return c
}

// assembleProcHead is the CodeGen for a procedure-header reference: it emits
// one frame-allocation pseudo-instruction per register class, each carrying
// that class's variable count and register count as immediate arguments.
// ForceLong keeps the provisional (all-zero) and resolved (real counts)
// emissions the same width — a procedure with a large body can easily need
// more registers or variables of some class than the short form's 8-bit
// argument fields hold. Grounded on vmsymstuff.c's Assemble_Proc_Head.
func assembleProcHead(pt *ProcTable, symNum int, kind Kind, defined bool, def []byte) error {
	var counts regalloc.Counts
	if defined {
		counts = decodeCounts(def)
	}
	for cl, op := range procHeadOps {
		if err := pt.Emit(instr.Instruction{
			Op: op,
			Args: []instr.Arg{
				{Mode: instr.AddrImmediate, Value: int32(counts.Variables[cl])},
				{Mode: instr.AddrImmediate, Value: int32(counts.Registers[cl])},
			},
			ForceLong: true,
		}); err != nil {
			return err
		}
	}
	return nil
}

// NewProcHead creates a procedure-header symbol and immediately assembles
// its reference at the current position — the header always goes first in
// a procedure, and its final register/variable counts are rarely known
// until the whole body has been compiled.
func NewProcHead(l *Linker) (int, error) {
	symNum := l.Syms.SymNew(KindProcHead)
	if err := l.SymCodeRef(symNum, assembleProcHead); err != nil {
		return 0, err
	}
	return symNum, nil
}

// DefProcHead supplies the register/variable counts a procedure header
// reserves, rewriting the placeholder frame-allocation instructions in
// place.
func DefProcHead(l *Linker, symNum int, counts regalloc.Counts) error {
	if err := l.Syms.SymDef(symNum, encodeCounts(counts)); err != nil {
		return err
	}
	return l.Syms.SymResolve(symNum)
}
