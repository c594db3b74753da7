package types

// ProcedureNew creates a new, unregistered procedure type: child is the
// procedure's return/argument type, parent is the type it operates on, kind
// selects which call form(s) (ProcKindMethod, ProcKindOperator, or both
// or'd together) the procedure answers to. The procedure is not searchable
// until ProcedureRegister links it into its parent's chain.
func (ts *TypeSystem) ProcedureNew(parent, child Type, kind ProcKind) Type {
	return ts.new_(Descriptor{
		Kind:       KindProcedure,
		Target:     child,
		Size:       SizeUnknown,
		ProcParent: parent,
		ProcKind:   kind,
		ProcFirst:  TypeNone,
	})
}

// ProcedureRegister links a previously created procedure into its parent's
// procedure chain under the given call-number (symbol number), making it
// visible to ProcedureSearch. Registering the same procedure twice is a
// caller bug in the original and is treated the same way here: the second
// call silently relinks the procedure onto the front of the chain again,
// since nothing downstream distinguishes a double registration from two
// procedures sharing a parent.
func (ts *TypeSystem) ProcedureRegister(p Type, symNum int) {
	pd := ts.desc(p)
	parentd := ts.desc(pd.ProcParent)
	pd.ProcFirst = parentd.ProcFirst
	parentd.ProcFirst = p
	pd.ProcSymNum = symNum
}

// ProcedureInfo returns a procedure's parent, child, kind and call-number in
// one call, for disassembly and diagnostics.
func (ts *TypeSystem) ProcedureInfo(p Type) (parent, child Type, kind ProcKind, symNum int) {
	d := ts.desc(p)
	return d.ProcParent, d.Target, d.ProcKind, d.ProcSymNum
}

// ProcedureSymNum returns a registered procedure's call-number.
func (ts *TypeSystem) ProcedureSymNum(p Type) int {
	return ts.desc(p).ProcSymNum
}

// ProcedureSearch looks for a procedure registered on parent that accepts
// child under the given kind (method/operator) and is not Unmatch against
// it. It returns the matching procedure and, if the match required a
// species expansion, the exact member type the caller should convert child
// to before invoking it.
func (ts *TypeSystem) ProcedureSearch(parent, child Type, kind ProcKind) (proc, expansionType Type) {
	proc, expansionType = TypeNone, TypeNone
	parentd := ts.desc(parent)
	for p := parentd.ProcFirst; p != TypeNone; {
		pd := ts.desc(p)
		if pd.ProcKind&kind != 0 {
			cmp := ts.Compare(pd.Target, child)
			if cmp != Unmatch {
				if cmp == Expand {
					expansionType = pd.Target
				}
				return p, expansionType
			}
		}
		p = pd.ProcFirst
	}
	return TypeNone, TypeNone
}

// ProcedureInheritedSearch is ProcedureSearch extended to walk up through
// aliases, detachments, species and subtypes of parent when no procedure is
// found directly on it: a procedure defined on a subtype's backing type, for
// instance, is visible on the subtype itself.
func (ts *TypeSystem) ProcedureInheritedSearch(parent, child Type, kind ProcKind) (proc, expansionType Type) {
	for {
		proc, expansionType = ts.ProcedureSearch(parent, child, kind)
		if proc != TypeNone {
			return proc, expansionType
		}
		next := ts.resolveOnce(parent, KSAlias|KSDetached|KSSpecies|KSSubtype)
		if next == parent {
			return TypeNone, TypeNone
		}
		parent = next
	}
}
