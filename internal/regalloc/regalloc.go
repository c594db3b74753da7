// Package regalloc implements the per-frame register and variable allocator:
// independent pools per register class, pushed and popped as procedures are
// entered and left, plus a level-gated free list for local variables and a
// separate always-level-zero arena for globals.
//
// Grounded directly on box/src/registers.c. Registers reuse a plain
// slot-reusing pool (internal/pool) exactly like the original's occupation
// collections; variables need a different reuse policy the original builds
// by hand, kept as a dedicated type here instead of forcing it through
// pool.Pool: a released variable remembers the scope level it was released
// at, and Occupy only reissues it to a request whose level is at least that
// deep. A register pool never does this — a register is reusable the moment
// it's released regardless of scope, because registers hold no identity
// across statements the way a named local variable does.
package regalloc

import (
	"box/internal/boxerr"
	"box/internal/pool"
)

// Class is a register/variable type class. Box keeps registers and locals
// segregated by the four fast built-in categories and a catch-all Obj class
// for everything else (structures, species, boxed values, anything not one
// of the other three).
type Class int

const (
	Char Class = iota
	Int
	Real
	Point
	Obj
	numClasses
)

func (c Class) String() string {
	switch c {
	case Char:
		return "char"
	case Int:
		return "int"
	case Real:
		return "real"
	case Point:
		return "point"
	default:
		return "obj"
	}
}

// normalize maps any class outside the four fast ones onto Obj, mirroring
// RegType's "if (type >= NUM_TYPES) type = TYPE_OBJ" fallback.
func normalize(c Class) Class {
	if c < 0 || c >= numClasses {
		return Obj
	}
	return c
}

// frame holds one procedure's register and local-variable pools, one per
// class, created lazily on first use.
type frame struct {
	regs [numClasses]*pool.Pool[struct{}]
	vars [numClasses]*varPool
}

// Allocator is the per-compilation register/variable allocator: a stack of
// frames (one pushed per procedure entered) plus a single global arena that
// outlives every frame.
type Allocator struct {
	frames []*frame
	global [numClasses]*varPool
}

// New creates an allocator with one frame already pushed, ready for
// top-level code.
func New() *Allocator {
	a := &Allocator{}
	a.PushFrame()
	return a
}

// PushFrame opens a new, empty register/variable scope — called on entering
// a procedure.
func (a *Allocator) PushFrame() {
	a.frames = append(a.frames, &frame{})
}

// PopFrame discards the innermost frame and everything allocated in it.
// Popping with no frame left open is a caller bug.
func (a *Allocator) PopFrame() error {
	if len(a.frames) == 0 {
		return boxerr.New(boxerr.SlotOutOfRange, "regalloc: PopFrame with no frame open")
	}
	a.frames = a.frames[:len(a.frames)-1]
	return nil
}

// Depth reports how many frames are currently open.
func (a *Allocator) Depth() int {
	return len(a.frames)
}

func (a *Allocator) top() *frame {
	return a.frames[len(a.frames)-1]
}

// RegOccupy returns a fresh register number of class c within the current
// frame, growing the pool if nothing is free.
func (a *Allocator) RegOccupy(c Class) int {
	c = normalize(c)
	f := a.top()
	if f.regs[c] == nil {
		f.regs[c] = pool.New[struct{}](4)
	}
	return f.regs[c].Occupy()
}

// RegRelease frees a register previously returned by RegOccupy, for the same
// class, within the current frame.
func (a *Allocator) RegRelease(c Class, regNum int) error {
	c = normalize(c)
	f := a.top()
	if f.regs[c] == nil {
		return boxerr.New(boxerr.SlotNotOccupied,
			"regalloc: register %d of class %s was never occupied in this frame", regNum, c)
	}
	return f.regs[c].Release(regNum)
}

// RegNum returns the highest register number of class c issued so far in
// the current frame (the register count a caller needs to reserve).
func (a *Allocator) RegNum(c Class) int {
	c = normalize(c)
	f := a.top()
	if f.regs[c] == nil {
		return 0
	}
	return f.regs[c].MaxIndex()
}

// VarOccupy returns a variable slot of class c for a request at scope depth
// level: a released slot is reissued only if it was released at level or at
// a shallower level; a slot released deeper than level is never reissued by
// this call.
func (a *Allocator) VarOccupy(c Class, level int) int {
	c = normalize(c)
	f := a.top()
	if f.vars[c] == nil {
		f.vars[c] = newVarPool()
	}
	return f.vars[c].occupy(level)
}

// VarRelease frees a variable slot, recording level as the scope depth it
// was released at so a later VarOccupy only reissues it to an equally deep
// or deeper request.
func (a *Allocator) VarRelease(c Class, varNum, level int) error {
	c = normalize(c)
	f := a.top()
	if f.vars[c] == nil {
		return boxerr.New(boxerr.SlotNotOccupied,
			"regalloc: variable %d of class %s was never occupied in this frame", varNum, c)
	}
	return f.vars[c].release(varNum, level)
}

// VarNum returns the highest variable number of class c issued so far in the
// current frame.
func (a *Allocator) VarNum(c Class) int {
	c = normalize(c)
	f := a.top()
	if f.vars[c] == nil {
		return 0
	}
	return f.vars[c].maxIndex()
}

// GVarOccupy is VarOccupy for the global arena, which lives outside every
// frame and is always at level 0 (a global is visible everywhere, so a
// released global is reissuable to any request).
func (a *Allocator) GVarOccupy(c Class) int {
	c = normalize(c)
	if a.global[c] == nil {
		a.global[c] = newVarPool()
	}
	return a.global[c].occupy(0)
}

// GVarRelease frees a global variable slot.
func (a *Allocator) GVarRelease(c Class, varNum int) error {
	c = normalize(c)
	if a.global[c] == nil {
		return boxerr.New(boxerr.SlotNotOccupied,
			"regalloc: global variable %d of class %s was never occupied", varNum, c)
	}
	return a.global[c].release(varNum, 0)
}

// GVarNum returns the highest global variable number of class c issued so
// far.
func (a *Allocator) GVarNum(c Class) int {
	c = normalize(c)
	if a.global[c] == nil {
		return 0
	}
	return a.global[c].maxIndex()
}

// Counts is the per-class register/variable counts a procedure's prologue
// needs to reserve stack space for.
type Counts struct {
	Registers [numClasses]int
	Variables [numClasses]int
}

// CurrentCounts reports the register and variable counts of the current
// frame, one entry per Class, mirroring RegLVar_Get_Nums.
func (a *Allocator) CurrentCounts() Counts {
	var c Counts
	for cl := Class(0); cl < numClasses; cl++ {
		c.Registers[cl] = a.RegNum(cl)
		c.Variables[cl] = a.VarNum(cl)
	}
	return c
}
