package symtab

import (
	"box/internal/boxerr"
	"box/internal/instr"
	"box/internal/pool"
)

// CFunc is a procedure implemented directly in Go rather than assembled as
// VM bytecode. The concrete context type is supplied by the VM package;
// symtab only needs to store and call it.
type CFunc func(ctx any) error

// proc is one uninstalled, growable code buffer — a procedure under
// construction. Grounded on VMProc.
type proc struct {
	code []uint32
}

// installKind distinguishes an installed procedure's two possible bodies.
type installKind int

const (
	installVMCode installKind = iota
	installCFunc
	installUndefined
)

// Installed is one entry of the call-number table: what `call <n>` invokes.
type Installed struct {
	Name string
	Desc string
	kind installKind
	code []uint32
	fn   CFunc
}

// Code returns the installed procedure's bytecode, if it has one.
func (p Installed) Code() []uint32 { return p.code }

// Func returns the installed procedure's Go function, if it has one.
func (p Installed) Func() CFunc { return p.fn }

// IsUndefined reports whether this call number was reserved with
// InstallUndefined and has not yet been given a body via Define.
func (p Installed) IsUndefined() bool { return p.kind == installUndefined }

// ProcTable is the table of procedures under construction and the flat,
// 1-based array of installed call numbers. Grounded on VMProcTable.
type ProcTable struct {
	procs     *pool.Pool[proc]
	targetNum int
	scratch   int
	installed []Installed // installed[0] unused; call numbers are 1-based
}

// NewProcTable creates an empty procedure table with its scratch procedure
// already allocated and a separate, fresh procedure created and targeted.
func NewProcTable() *ProcTable {
	pt := &ProcTable{
		procs:     pool.New[proc](8),
		installed: make([]Installed, 1),
	}
	pt.scratch = pt.procs.OccupyWith(proc{})
	pt.targetNum = pt.CodeNew()
	return pt
}

// CodeNew allocates a new, empty procedure and returns its number.
func (pt *ProcTable) CodeNew() int {
	return pt.procs.OccupyWith(proc{})
}

// TargetSet selects procNum as the destination for subsequent Emit calls.
func (pt *ProcTable) TargetSet(procNum int) error {
	if !pt.procs.IsOccupied(procNum) {
		return boxerr.New(boxerr.SlotNotOccupied, "symtab: no such procedure %d", procNum)
	}
	pt.targetNum = procNum
	return nil
}

// TargetGet returns the currently targeted procedure number.
func (pt *ProcTable) TargetGet() int {
	return pt.targetNum
}

// Empty discards every instruction assembled into procNum so far. Labels
// and references recorded against code inside it are not affected.
func (pt *ProcTable) Empty(procNum int) error {
	p := pt.procs.ItemPtr(procNum)
	if p == nil {
		return boxerr.New(boxerr.SlotNotOccupied, "symtab: no such procedure %d", procNum)
	}
	p.code = p.code[:0]
	return nil
}

// Emit encodes in and appends its words to the current target procedure.
func (pt *ProcTable) Emit(in instr.Instruction) error {
	words, err := instr.Encode(in)
	if err != nil {
		return err
	}
	p := pt.procs.ItemPtr(pt.targetNum)
	if p == nil {
		return boxerr.New(boxerr.SlotNotOccupied, "symtab: no target procedure set")
	}
	p.code = append(p.code, words...)
	return nil
}

// Len returns the number of words assembled so far into procNum.
func (pt *ProcTable) Len(procNum int) int {
	p := pt.procs.ItemPtr(procNum)
	if p == nil {
		return 0
	}
	return len(p.code)
}

// Overwrite replaces the words of procNum starting at word offset pos with
// src, which must fit exactly within the existing code — it never grows or
// shrinks the buffer, matching VM_Sym_Code_Ref's invariant that a resolved
// reference re-emits exactly as many words as were reserved for it.
func (pt *ProcTable) Overwrite(procNum, pos int, src []uint32) error {
	p := pt.procs.ItemPtr(procNum)
	if p == nil {
		return boxerr.New(boxerr.SlotNotOccupied, "symtab: no such procedure %d", procNum)
	}
	if pos < 0 || pos+len(src) > len(p.code) {
		return boxerr.New(boxerr.WriterOverflow, "symtab: overwrite at %d..%d out of range for procedure %d of length %d",
			pos, pos+len(src), procNum, len(p.code))
	}
	copy(p.code[pos:pos+len(src)], src)
	return nil
}

// InstallCode installs procNum under name/desc and returns its call number.
// The procedure's code is copied out; the uninstalled procedure itself is
// left as-is (still addressable by TargetSet for further assembly, e.g. a
// later code reference resolving into it).
func (pt *ProcTable) InstallCode(procNum int, name, desc string) (int, error) {
	p := pt.procs.ItemPtr(procNum)
	if p == nil {
		return 0, boxerr.New(boxerr.SlotNotOccupied, "symtab: no such procedure %d", procNum)
	}
	code := make([]uint32, len(p.code))
	copy(code, p.code)
	return pt.install(Installed{Name: name, Desc: desc, kind: installVMCode, code: code}), nil
}

// InstallC installs a Go-implemented procedure and returns its call number.
func (pt *ProcTable) InstallC(fn CFunc, name, desc string) int {
	return pt.install(Installed{Name: name, Desc: desc, kind: installCFunc, fn: fn})
}

// InstallUndefined reserves a call number for name without a body yet —
// used for forward declarations (e.g. an external-library call) that Define
// fills in once the real implementation is known.
func (pt *ProcTable) InstallUndefined(name string) int {
	return pt.install(Installed{Name: name, kind: installUndefined})
}

// Define gives a previously-reserved call number (from InstallUndefined) its
// body, as either VM bytecode or a Go function — exactly one of the two.
func (pt *ProcTable) Define(callNum int, code []uint32, fn CFunc) error {
	if callNum < 1 || callNum >= len(pt.installed) {
		return boxerr.New(boxerr.SlotOutOfRange, "symtab: no such call number %d", callNum)
	}
	p := &pt.installed[callNum]
	if !p.IsUndefined() {
		return boxerr.New(boxerr.SymbolRedefinition, "symtab: call number %d already defined", callNum)
	}
	if code != nil {
		p.kind = installVMCode
		p.code = code
	} else {
		p.kind = installCFunc
		p.fn = fn
	}
	return nil
}

func (pt *ProcTable) install(inst Installed) int {
	pt.installed = append(pt.installed, inst)
	return len(pt.installed) - 1
}

// Lookup returns the installed procedure for callNum.
func (pt *ProcTable) Lookup(callNum int) (Installed, bool) {
	if callNum < 1 || callNum >= len(pt.installed) {
		return Installed{}, false
	}
	return pt.installed[callNum], true
}

// CallName returns the name installed under callNum, or "" if there is none
// — used by the disassembler's call-argument printer.
func (pt *ProcTable) CallName(callNum int32) string {
	inst, ok := pt.Lookup(int(callNum))
	if !ok {
		return ""
	}
	return inst.Name
}
