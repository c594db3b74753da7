// Package instr implements the VM instruction codec: encoding and decoding
// of one instruction to and from its short or long 32-bit-word form, and a
// disassembler that renders a code region to text.
//
// Grounded on box/src/vmexec.c's vm_instr_desc_table (the catalogue of
// mnemonics, argument counts and type classes) and on the bit-packing idiom
// of sentra/internal/vmregister/bytecode.go's CreateABC/GetA/GetB-style
// field extraction, generalized here to the two-word-header long form.
package instr

import "box/internal/regalloc"

// Opcode identifies a VM instruction. The catalogue is dense, ordered by
// category (line and call, frame setup, data movement, bitwise,
// increment/decrement, arithmetic and point algebra, comparison, logic,
// conversion, return, memory, addressing, stack, control flow) —
// the same grouping vm_instr_desc_table uses, flattened into one Go enum
// instead of a separate table row per (mnemonic, operand-type) pair, with
// Class on Descriptor carrying what used to be the table-row duplication.
type Opcode int

const (
	OpInvalid Opcode = iota

	OpLine // line imm_i: sets the current source line for diagnostics
	OpCall // call reg_i|imm_i: invoke a procedure by call-number

	OpNewC // newc imm_i, imm_i: allocate the Char register/variable frame
	OpNewI
	OpNewR
	OpNewP
	OpNewO

	OpMovC
	OpMovI
	OpMovR
	OpMovP
	OpMovO

	OpBNot
	OpBAnd
	OpBXor
	OpBOr
	OpShl
	OpShr

	OpIncI
	OpIncR
	OpDecI
	OpDecR

	OpPowI
	OpPowR
	OpAddI
	OpAddR
	OpAddP
	OpSubI
	OpSubR
	OpSubP
	OpMulI
	OpMulR
	OpDivI
	OpDivR
	OpRemI
	OpNegI
	OpNegR
	OpNegP
	OpPMulR
	OpPDivR

	OpEqI
	OpEqR
	OpEqP
	OpNeI
	OpNeR
	OpNeP
	OpLtI
	OpLtR
	OpLeI
	OpLeR
	OpGtI
	OpGtR
	OpGeI
	OpGeR

	OpLNot
	OpLAnd
	OpLOr

	OpRealC
	OpRealI
	OpIntgR
	OpPointI
	OpPointR
	OpProjX
	OpProjY
	OpPPtrX
	OpPPtrY

	OpRet

	OpMalloc
	OpMFree
	OpMCopy

	OpLea
	OpLeaO

	OpPush
	OpPop

	// Control flow, built on the label mechanism (spec.md's
	// "jmp"/"jc" of §4.5) rather than appearing in vmexec.c's table —
	// the original's unconditional/conditional jumps are generated by a
	// different compiler layer than the one vmexec.c's table catalogues.
	OpJmp
	OpJc

	numOpcodes
)

// Descriptor is the static metadata the codec and disassembler need for one
// opcode: its mnemonic, how many arguments it takes, and which register
// class (if any) its arguments address.
type Descriptor struct {
	Name    string
	NumArgs int
	Class   regalloc.Class
	// HasData marks an opcode whose long form carries a trailing immediate
	// data payload beyond its fixed arguments (none of the catalogue below
	// needs one yet; reserved for data-carrying extensions).
	HasData bool
}

var descriptors = [numOpcodes]Descriptor{
	OpInvalid: {Name: "<invalid>"},

	OpLine: {Name: "line", NumArgs: 1, Class: regalloc.Int},
	OpCall: {Name: "call", NumArgs: 1, Class: regalloc.Int},

	OpNewC: {Name: "newc", NumArgs: 2, Class: regalloc.Char},
	OpNewI: {Name: "newi", NumArgs: 2, Class: regalloc.Int},
	OpNewR: {Name: "newr", NumArgs: 2, Class: regalloc.Real},
	OpNewP: {Name: "newp", NumArgs: 2, Class: regalloc.Point},
	OpNewO: {Name: "newo", NumArgs: 2, Class: regalloc.Obj},

	OpMovC: {Name: "mov", NumArgs: 2, Class: regalloc.Char},
	OpMovI: {Name: "mov", NumArgs: 2, Class: regalloc.Int},
	OpMovR: {Name: "mov", NumArgs: 2, Class: regalloc.Real},
	OpMovP: {Name: "mov", NumArgs: 2, Class: regalloc.Point},
	OpMovO: {Name: "mov", NumArgs: 2, Class: regalloc.Obj},

	OpBNot: {Name: "bnot", NumArgs: 1, Class: regalloc.Int},
	OpBAnd: {Name: "band", NumArgs: 2, Class: regalloc.Int},
	OpBXor: {Name: "bxor", NumArgs: 2, Class: regalloc.Int},
	OpBOr:  {Name: "bor", NumArgs: 2, Class: regalloc.Int},
	OpShl:  {Name: "shl", NumArgs: 2, Class: regalloc.Int},
	OpShr:  {Name: "shr", NumArgs: 2, Class: regalloc.Int},

	OpIncI: {Name: "inc", NumArgs: 1, Class: regalloc.Int},
	OpIncR: {Name: "inc", NumArgs: 1, Class: regalloc.Real},
	OpDecI: {Name: "dec", NumArgs: 1, Class: regalloc.Int},
	OpDecR: {Name: "dec", NumArgs: 1, Class: regalloc.Real},

	OpPowI:  {Name: "pow", NumArgs: 2, Class: regalloc.Int},
	OpPowR:  {Name: "pow", NumArgs: 2, Class: regalloc.Real},
	OpAddI:  {Name: "add", NumArgs: 2, Class: regalloc.Int},
	OpAddR:  {Name: "add", NumArgs: 2, Class: regalloc.Real},
	OpAddP:  {Name: "add", NumArgs: 2, Class: regalloc.Point},
	OpSubI:  {Name: "sub", NumArgs: 2, Class: regalloc.Int},
	OpSubR:  {Name: "sub", NumArgs: 2, Class: regalloc.Real},
	OpSubP:  {Name: "sub", NumArgs: 2, Class: regalloc.Point},
	OpMulI:  {Name: "mul", NumArgs: 2, Class: regalloc.Int},
	OpMulR:  {Name: "mul", NumArgs: 2, Class: regalloc.Real},
	OpDivI:  {Name: "div", NumArgs: 2, Class: regalloc.Int},
	OpDivR:  {Name: "div", NumArgs: 2, Class: regalloc.Real},
	OpRemI:  {Name: "rem", NumArgs: 2, Class: regalloc.Int},
	OpNegI:  {Name: "neg", NumArgs: 1, Class: regalloc.Int},
	OpNegR:  {Name: "neg", NumArgs: 1, Class: regalloc.Real},
	OpNegP:  {Name: "neg", NumArgs: 1, Class: regalloc.Point},
	OpPMulR: {Name: "pmulr", NumArgs: 1, Class: regalloc.Point},
	OpPDivR: {Name: "pdivr", NumArgs: 1, Class: regalloc.Point},

	OpEqI: {Name: "eq?", NumArgs: 2, Class: regalloc.Int},
	OpEqR: {Name: "eq?", NumArgs: 2, Class: regalloc.Real},
	OpEqP: {Name: "eq?", NumArgs: 2, Class: regalloc.Point},
	OpNeI: {Name: "ne?", NumArgs: 2, Class: regalloc.Int},
	OpNeR: {Name: "ne?", NumArgs: 2, Class: regalloc.Real},
	OpNeP: {Name: "ne?", NumArgs: 2, Class: regalloc.Point},
	OpLtI: {Name: "lt?", NumArgs: 2, Class: regalloc.Int},
	OpLtR: {Name: "lt?", NumArgs: 2, Class: regalloc.Real},
	OpLeI: {Name: "le?", NumArgs: 2, Class: regalloc.Int},
	OpLeR: {Name: "le?", NumArgs: 2, Class: regalloc.Real},
	OpGtI: {Name: "gt?", NumArgs: 2, Class: regalloc.Int},
	OpGtR: {Name: "gt?", NumArgs: 2, Class: regalloc.Real},
	OpGeI: {Name: "ge?", NumArgs: 2, Class: regalloc.Int},
	OpGeR: {Name: "ge?", NumArgs: 2, Class: regalloc.Real},

	OpLNot: {Name: "lnot", NumArgs: 1, Class: regalloc.Int},
	OpLAnd: {Name: "land", NumArgs: 2, Class: regalloc.Int},
	OpLOr:  {Name: "lor", NumArgs: 2, Class: regalloc.Int},

	OpRealC:  {Name: "real", NumArgs: 1, Class: regalloc.Char},
	OpRealI:  {Name: "real", NumArgs: 1, Class: regalloc.Int},
	OpIntgR:  {Name: "intg", NumArgs: 1, Class: regalloc.Real},
	OpPointI: {Name: "point", NumArgs: 2, Class: regalloc.Int},
	OpPointR: {Name: "point", NumArgs: 2, Class: regalloc.Real},
	OpProjX:  {Name: "projx", NumArgs: 1, Class: regalloc.Point},
	OpProjY:  {Name: "projy", NumArgs: 1, Class: regalloc.Point},
	OpPPtrX:  {Name: "pptrx", NumArgs: 1, Class: regalloc.Point},
	OpPPtrY:  {Name: "pptry", NumArgs: 1, Class: regalloc.Point},

	OpRet: {Name: "ret", NumArgs: 0},

	OpMalloc: {Name: "malloc", NumArgs: 1, Class: regalloc.Int},
	OpMFree:  {Name: "mfree", NumArgs: 1, Class: regalloc.Obj},
	OpMCopy:  {Name: "mcopy", NumArgs: 2, Class: regalloc.Obj},

	OpLea:  {Name: "lea", NumArgs: 1, Class: regalloc.Obj},
	OpLeaO: {Name: "lea", NumArgs: 2, Class: regalloc.Obj},

	OpPush: {Name: "push", NumArgs: 1, Class: regalloc.Obj},
	OpPop:  {Name: "pop", NumArgs: 1, Class: regalloc.Obj},

	OpJmp: {Name: "jmp", NumArgs: 1, Class: regalloc.Int},
	OpJc:  {Name: "jc", NumArgs: 1, Class: regalloc.Int},
}

// Describe returns the metadata for op, or the zero Descriptor (NumArgs 0,
// empty Name) if op is out of range — callers check Name == "" to detect an
// unknown opcode the way the disassembler does when it hits garbage bytes.
func Describe(op Opcode) Descriptor {
	if op < 0 || op >= numOpcodes {
		return Descriptor{}
	}
	return descriptors[op]
}

func (op Opcode) String() string {
	d := Describe(op)
	if d.Name == "" {
		return "<unknown opcode>"
	}
	return d.Name
}
