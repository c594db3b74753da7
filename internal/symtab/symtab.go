// Package symtab implements the Box linker: a table of symbols, the
// references made to them, and the installed-procedure table that gives
// every callable procedure (VM bytecode or host Go function) a call number.
// A reference may be recorded before its symbol is defined — resolution
// walks the pending references once a definition finally arrives.
//
// Grounded on box/src/vmsym.c/vmsym.h (VMSymTable, VMSym, VMSymRef,
// VM_Sym_New/Def/Ref/Resolve) and vmproc.c/vmproc.h (VMProcTable,
// VM_Proc_Install_Code/CCode). The original keeps symbols, definitions and
// references in parallel Arrays indexed by a shared ID; here each symbol
// owns its definition bytes and reference chain directly, which is the
// natural shape once the C growable-array-of-structs idiom is replaced by
// Go's slot-reusing pool.
package symtab

import "box/internal/pool"

// SymStatus controls whether a freshly recorded reference is considered
// resolved immediately, mirroring VMSymStatus.
type SymStatus int

const (
	// StatusAuto marks the reference resolved only if the symbol already
	// has a definition at the time the reference is recorded.
	StatusAuto SymStatus = iota
	StatusResolved
	StatusUnresolved
)

// Kind distinguishes what a symbol stands for. The three built-in kinds
// mirror VM_SYM_CALL/VM_SYM_COND_JMP/VM_SYM_PROC_HEAD; callers may define
// further kinds starting at KindUserBase.
type Kind int

const (
	KindCall Kind = iota + 1
	KindCondJmp
	KindProcHead
	KindUserBase = 100
)

// Resolver is called once per reference when its symbol becomes resolvable:
// once right away if the reference was created as already-resolved, and
// again whenever SymResolve walks an unresolved one. def is the symbol's
// definition payload (nil if still undefined); ref is the payload the
// reference was created with.
type Resolver func(t *Table, symNum int, kind Kind, defined bool, def, ref []byte) error

type symRef struct {
	ref      []byte
	resolved bool
	resolver Resolver
}

type symbol struct {
	name     string
	kind     Kind
	defined  bool
	def      []byte
	refs     []symRef
}

// Table is a symbol table: symbols created with SymNew, optionally named,
// optionally defined, each carrying a chain of references waiting on its
// definition.
type Table struct {
	syms  *pool.Pool[symbol]
	names map[string]int
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		syms:  pool.New[symbol](16),
		names: make(map[string]int),
	}
}

// SymNew creates a new, as-yet-undefined symbol of the given kind and
// returns its symbol number.
func (t *Table) SymNew(kind Kind) int {
	return t.syms.OccupyWith(symbol{kind: kind})
}

// SymNameSet gives symNum a name, which must not already be in use by a
// different symbol.
func (t *Table) SymNameSet(symNum int, name string) error {
	if existing, ok := t.names[name]; ok && existing != symNum {
		return errDuplicateName(name)
	}
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return errBadSymNum(symNum)
	}
	s.name = name
	t.names[name] = symNum
	return nil
}

// SymName returns the name given to symNum, or "" if it was never named.
func (t *Table) SymName(symNum int) string {
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return ""
	}
	return s.name
}

// SymDef gives symNum its definition payload. Defining an already-defined
// symbol a second time is an error — Box symbols, like Go identifiers at
// file scope, are defined exactly once.
func (t *Table) SymDef(symNum int, def []byte) error {
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return errBadSymNum(symNum)
	}
	if s.defined {
		return errRedefinition(symNum, s.name)
	}
	s.defined = true
	s.def = def
	return nil
}

// SymRef records a reference to symNum: resolver will be invoked with ref
// and the symbol's definition once the symbol is resolved. status chooses
// whether the reference starts out resolved, unresolved, or resolved
// automatically if the symbol is already defined.
func (t *Table) SymRef(symNum int, resolver Resolver, ref []byte, status SymStatus) error {
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return errBadSymNum(symNum)
	}
	resolved := false
	switch status {
	case StatusResolved:
		resolved = true
	case StatusUnresolved:
		resolved = false
	case StatusAuto:
		resolved = s.defined
	}
	r := symRef{ref: ref, resolved: resolved, resolver: resolver}
	if resolved {
		if err := resolver(t, symNum, s.kind, s.defined, s.def, ref); err != nil {
			return err
		}
	}
	s.refs = append(s.refs, r)
	return nil
}

// SymResolve resolves symNum: every reference recorded against it that
// hasn't already been resolved is resolved now, in the order it was
// recorded. A symbol with no definition yet is silently left alone, exactly
// like the original — resolution only ever fires for a reference whose
// symbol is actually defined.
func (t *Table) SymResolve(symNum int) error {
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return errBadSymNum(symNum)
	}
	if !s.defined {
		return nil
	}
	for i := range s.refs {
		if s.refs[i].resolved {
			continue
		}
		if err := s.refs[i].resolver(t, symNum, s.kind, true, s.def, s.refs[i].ref); err != nil {
			return err
		}
		s.refs[i].resolved = true
	}
	return nil
}

// SymResolveAll resolves every symbol in the table, in slot order.
func (t *Table) SymResolveAll() error {
	for symNum := 1; symNum <= t.syms.MaxIndex(); symNum++ {
		if !t.syms.IsOccupied(symNum) {
			continue
		}
		if err := t.SymResolve(symNum); err != nil {
			return err
		}
	}
	return nil
}

// SymRefCheck reports whether every reference in the table has been
// resolved. A false result means some symbol was referenced but never
// defined.
func (t *Table) SymRefCheck() bool {
	for symNum := 1; symNum <= t.syms.MaxIndex(); symNum++ {
		s := t.syms.ItemPtr(symNum)
		if s == nil {
			continue
		}
		for _, r := range s.refs {
			if !r.resolved {
				return false
			}
		}
	}
	return true
}

// SymKind returns the kind a symbol was created with.
func (t *Table) SymKind(symNum int) (Kind, bool) {
	s := t.syms.ItemPtr(symNum)
	if s == nil {
		return 0, false
	}
	return s.kind, true
}

// SymDefined reports whether symNum has a definition yet.
func (t *Table) SymDefined(symNum int) bool {
	s := t.syms.ItemPtr(symNum)
	return s != nil && s.defined
}
