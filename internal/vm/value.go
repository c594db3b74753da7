// Package vm implements the Box virtual machine: a fetch-decode-execute loop
// over the instructions internal/instr encodes, register files sized per
// internal/regalloc.Counts, and calls resolved through internal/symtab's
// installed-procedure table.
//
// Grounded on box/src/vmexec.c's VM__Exec_* handlers and vm_instr_desc_table
// dispatch, and on box/src/vmproc.c for how a call number resolves to either
// VM bytecode or a host C (here: Go) function.
package vm

import "box/internal/regalloc"

// Point is the VM's two-component point value, mirroring the original's
// Point struct (x, y as doubles).
type Point struct {
	X, Y float64
}

// Object is a heap-allocated record: one slice per register class, exactly
// like a procedure's register file, addressable the same way a frame's
// locals are. This is the VM's simplification of the original's Obj heap
// block, which a compiled structure type addresses by raw byte offset
// (internal/types.Descriptor.MemberOffset) — here a structure member is
// instead addressed by an element index into the class-appropriate slice,
// traded for the byte-exact original layout since nothing in this VM reads
// memory through any channel other than the instructions this package
// itself interprets.
type Object struct {
	Chars  []byte
	Ints   []int64
	Reals  []float64
	Points []Point
	Objs   []*Object
}

// Ref is an addressable slot produced by `lea`: a get/set pair standing in
// for the original's raw pointer into a register file. AddrPointer
// addressing through a register holding a Ref dereferences it directly,
// the way `T[ro0+k]` dereferences a true pointer in the original VM.
type Ref struct {
	Get func() any
	Set func(any)
}

// zeroFor returns the zero value for a newly allocated slot of class c.
func zeroFor(c regalloc.Class) any {
	switch c {
	case regalloc.Char:
		return byte(0)
	case regalloc.Int:
		return int64(0)
	case regalloc.Real:
		return float64(0)
	case regalloc.Point:
		return Point{}
	default:
		return (*Object)(nil)
	}
}
