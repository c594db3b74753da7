package symtab

import "box/internal/boxerr"

// CodeGen assembles a piece of code that references a symbol. It is called
// once right away, with whatever definition is currently available (possibly
// none), to emit provisional code that reserves its final size; and again,
// with the real definition, once the symbol is resolved — at which point it
// must emit exactly as many words as it did the first time.
type CodeGen func(pt *ProcTable, symNum int, kind Kind, defined bool, def []byte) error

// Linker pairs a symbol table with a procedure table: SymCodeRef needs both,
// since resolving a reference means re-running a code generator into a
// scratch procedure and splicing the result back into the procedure the
// reference originally appeared in.
type Linker struct {
	Syms  *Table
	Procs *ProcTable
}

// NewLinker creates a linker with a fresh symbol table and procedure table.
func NewLinker() *Linker {
	return &Linker{Syms: New(), Procs: NewProcTable()}
}

// codeRef is the bookkeeping SymCodeRef records for one reference: where the
// provisional code went, how big it was, and the generator that produced it
// — needed again when the symbol resolves.
type codeRef struct {
	procNum int
	pos     int
	size    int
	gen     CodeGen
}

// SymCodeRef assembles a reference to symNum using gen, in four steps
// mirroring VM_Sym_Code_Ref / code_generator: it records where the
// reference starts, calls gen right now so the provisional code is emitted
// in place (keeping later offsets stable even though the symbol may still
// be undefined), measures what was emitted, and registers a resolver that —
// once the symbol is defined — re-runs gen into the scratch procedure and
// splices the result back, verifying it is exactly the same size as what
// was reserved.
func (l *Linker) SymCodeRef(symNum int, gen CodeGen) error {
	kind, ok := l.Syms.SymKind(symNum)
	if !ok {
		return errBadSymNum(symNum)
	}
	defined := l.Syms.SymDefined(symNum)
	var def []byte
	if s := l.Syms.syms.ItemPtr(symNum); s != nil {
		def = s.def
	}

	cr := &codeRef{procNum: l.Procs.TargetGet(), pos: l.Procs.Len(l.Procs.TargetGet())}
	if err := gen(l.Procs, symNum, kind, defined, def); err != nil {
		return err
	}
	if l.Procs.TargetGet() != cr.procNum {
		return boxerr.New(boxerr.WriterOverflow,
			"symtab: code generator for symbol %d changed the assembly target", symNum)
	}
	cr.size = l.Procs.Len(cr.procNum) - cr.pos
	cr.gen = gen

	resolver := func(t *Table, sn int, k Kind, def2Defined bool, def2 []byte, _ []byte) error {
		return l.resolveCodeRef(sn, k, def2Defined, def2, cr)
	}
	return l.Syms.SymRef(symNum, resolver, nil, StatusAuto)
}

// resolveCodeRef re-runs cr.gen into the scratch procedure with the real
// definition now available, then splices the freshly generated words back
// into the original call site — erroring out if the regenerated code isn't
// exactly the size that was reserved for it, since that would silently
// corrupt every offset after it.
func (l *Linker) resolveCodeRef(symNum int, kind Kind, defined bool, def []byte, cr *codeRef) error {
	pt := l.Procs
	saved := pt.TargetGet()
	scratch := pt.scratch

	if err := pt.Empty(scratch); err != nil {
		return err
	}
	if err := pt.TargetSet(scratch); err != nil {
		return err
	}
	if err := cr.gen(pt, symNum, kind, defined, def); err != nil {
		return err
	}

	src := pt.procs.ItemPtr(scratch).code
	if len(src) != cr.size {
		return boxerr.New(boxerr.WriterOverflow,
			"symtab: resolved code for symbol %d is %d words, but %d were reserved",
			symNum, len(src), cr.size)
	}
	if err := pt.Overwrite(cr.procNum, cr.pos, src); err != nil {
		return err
	}
	return pt.TargetSet(saved)
}
