package vm

import "box/internal/regalloc"

// Frame is one procedure activation's local register file: five slices, one
// per regalloc.Class, each indexed uniformly by register/variable number.
// The original keeps registers and variables in the same local[type] array
// (RegLVar_Get_Nums reports them as a single combined count per type), so a
// frame here does the same instead of splitting them into two arrays.
type Frame struct {
	locals [5][]any
	ro0    int // current object-pointer register number within locals[regalloc.Obj]
	line   int
}

// newFrame allocates a frame with locals[c] pre-sized to
// counts.Variables[c]+counts.Registers[c] slots, matching what the five
// "new" pseudo-instructions (newc/newi/newr/newp/newo) reserve at the top of
// a compiled procedure.
func newFrame(counts regalloc.Counts) *Frame {
	fr := &Frame{}
	for c := regalloc.Char; c <= regalloc.Obj; c++ {
		n := counts.Variables[c] + counts.Registers[c]
		fr.alloc(c, n)
	}
	return fr
}

// alloc (re)sizes locals[c] to exactly n slots of c's zero value, the
// runtime effect of encountering one of the newX pseudo-instructions.
func (fr *Frame) alloc(c regalloc.Class, n int) {
	s := make([]any, n)
	z := zeroFor(c)
	for i := range s {
		s[i] = z
	}
	fr.locals[c] = s
}

// slot returns a pointer to locals[c][index], growing the slice if index is
// out of range. Growth is defensive: a well-formed procedure always sizes
// locals via its header before any instruction indexes past it.
func (fr *Frame) slot(c regalloc.Class, index int) *any {
	if index < 0 {
		index = 0
	}
	s := fr.locals[c]
	if index >= len(s) {
		grown := make([]any, index+1)
		copy(grown, s)
		z := zeroFor(c)
		for i := len(s); i < len(grown); i++ {
			grown[i] = z
		}
		fr.locals[c] = grown
		s = grown
	}
	return &s[index]
}
