package types

// KindSelect is a set of bit flags controlling which kinds TS_Resolve-style
// resolution is willing to see through. Grounded on typesys.h's
// TSKindSelect: resolution through Member descriptors is unconditional (a
// member reference is never a meaningful stopping point on its own), the
// rest are opt-in per flag.
type KindSelect int

const (
	KSAlias KindSelect = 1 << iota
	KSDetached
	KSSpecies
	KSSubtype
	// KSAnonymousOnly restricts resolution to types that were never given a
	// name: a named alias, for instance, is a stopping point in its own
	// right and is left alone unless this flag is absent.
	KSAnonymousOnly
)

// CmpResult is the outcome of comparing two types structurally. The four
// values are ordered exactly as the original encodes them, as overlapping
// bit patterns (Equal ⊃ Match ⊃ Expand ⊃ Unmatch): combining two results with
// a bitwise AND yields whichever of the two is weaker, and testing a result
// against Expand with AND answers "would this comparison require an
// expansion (a species promotion)?". Both properties are used directly by
// Compare below, which is why the representation is kept instead of
// replaced with a plain ordered enum.
type CmpResult int

const (
	Unmatch CmpResult = 0
	Expand  CmpResult = 1
	Match   CmpResult = 3
	Equal   CmpResult = 7
)

func (c CmpResult) String() string {
	switch c {
	case Equal:
		return "equal"
	case Match:
		return "match"
	case Expand:
		return "expand"
	default:
		return "unmatch"
	}
}

// resolveOnce performs (at most) one resolution step, honoring select. It
// mirrors TS_Resolve_Once: a Member descriptor always resolves to its own
// type; Alias/Detached/Species/Subtype resolve only if their flag is set (a
// Species resolves one step to its MemberLast node — itself a Member, which
// a second call unwraps to the actual type — rather than to its head
// member); and if KSAnonymousOnly is set, a named type is returned unchanged
// regardless of kind.
func (ts *TypeSystem) resolveOnce(t Type, select_ KindSelect) Type {
	if t == TypeNone {
		return TypeNone
	}
	d := ts.desc(t)

	resolved := d.Target
	resolve := false
	switch d.Kind {
	case KindMember:
		resolve = true
	case KindAlias:
		resolve = select_&KSAlias != 0
	case KindDetached:
		resolve = select_&KSDetached != 0
	case KindSpecies:
		resolved = d.MemberLast
		resolve = select_&KSSpecies != 0
	case KindSubtype:
		resolve = select_&KSSubtype != 0
		resolved = d.Target // the subtype's registered backing type
	default:
		resolve = false
	}

	if select_&KSAnonymousOnly != 0 && d.Name != "" {
		return t
	}
	if resolve {
		return resolved
	}
	return t
}

// Resolve repeatedly applies resolveOnce until a fixed point is reached.
func (ts *TypeSystem) Resolve(t Type, select_ KindSelect) Type {
	for {
		next := ts.resolveOnce(t, select_)
		if next == t {
			return t
		}
		t = next
	}
}

// CoreType resolves through aliases, detachments and species, the
// combination used throughout the compiler wherever code needs to reach a
// concrete, comparable representation of a type (structure/enum/array/
// intrinsic/procedure) regardless of how many names or species wrap it.
func (ts *TypeSystem) CoreType(t Type) Type {
	return ts.Resolve(t, KSAlias|KSDetached|KSSpecies)
}

// resolveForCompare mirrors the original's two asymmetric helpers used
// inside TS_Compare: the left-hand side resolves through Member and Alias
// only (Resolve(ts, t, 1) in the original, ignoring names), while the
// right-hand side fully resolves through Member, Species and Alias alike.
// This asymmetry is what lets a species on the left be compared member by
// member against a concrete right-hand type without the right-hand type
// itself needing to be a species.
func (ts *TypeSystem) resolveForCompare(t Type) Type {
	for {
		d := ts.desc(t)
		switch d.Kind {
		case KindAlias, KindMember:
			t = d.Target
		default:
			return t
		}
	}
}

func (ts *TypeSystem) fullyResolveForCompare(t Type) Type {
	for {
		d := ts.desc(t)
		switch d.Kind {
		case KindAlias, KindMember:
			t = d.Target
		case KindSpecies:
			t = d.MemberLast
		default:
			return t
		}
	}
}

// Compare compares t1 against t2 structurally, per the rules spelled out in
// the original TS_Compare: intrinsics and detached types only ever match
// themselves (by the t1 == t2 shortcut below, never through this switch);
// a species on the left expands by trying each member in turn, reporting
// Expand if only a non-final member matched; structures and enums compare
// member-by-member regardless of field names, combining every pairwise
// result by keeping the weakest; arrays match if lengths agree or the
// left-hand length is unspecified; procedures require overlapping kind bits,
// an exactly Equal parent, and a compatible child/return type.
func (ts *TypeSystem) Compare(t1, t2 Type) CmpResult {
	if t1 == t2 {
		return Equal
	}

	cmp := Equal
	for {
		t1 = ts.resolveForCompare(t1)
		t2 = ts.fullyResolveForCompare(t2)
		d1 := ts.desc(t1)
		d2 := ts.desc(t2)
		if t1 == t2 {
			return cmp
		}

		switch d1.Kind {
		case KindIntrinsic, KindDetached:
			return Unmatch

		case KindSpecies:
			return ts.compareSpeciesLHS(t1, t2)

		case KindStructure, KindEnum:
			if d2.Kind != d1.Kind {
				return Unmatch
			}
			return ts.compareMemberChains(t1, t2, cmp)

		case KindArray:
			if d2.Kind != KindArray {
				return Unmatch
			}
			if d1.ArrayLength == d2.ArrayLength {
				t1, t2 = d1.Target, d2.Target
				continue
			}
			if d1.ArrayLength != ArrayLengthUnknown {
				return Unmatch
			}
			cmp &= Match
			t1, t2 = d1.Target, d2.Target
			continue

		case KindProcedure:
			if d1.ProcKind&d2.ProcKind == 0 {
				return Unmatch
			}
			if ts.Compare(d1.ProcParent, d2.ProcParent) != Equal {
				return Unmatch
			}
			return ts.Compare(d1.Target, d2.Target)

		default:
			return Unmatch
		}
	}
}

// compareSpeciesLHS implements the KindSpecies case of Compare: try
// comparing t2 against each member of the species t1 in turn. Matching any
// member but the last one yields Expand (a conversion is required); matching
// the last member (the species' current target) yields whatever combined
// result that comparison produced.
func (ts *TypeSystem) compareSpeciesLHS(t1, t2 Type) CmpResult {
	m := t1
	for {
		m = ts.MemberNext(m)
		if m == t1 {
			return Unmatch
		}
		if c := ts.Compare(m, t2); c != Unmatch {
			if ts.MemberNext(m) == t1 {
				return c
			}
			return c & Expand
		}
	}
}

// compareMemberChains walks two structures' or enums' member chains in
// lockstep, combining pairwise comparisons by keeping the weakest result.
// Field names are never compared: a structure with differently named
// members of otherwise identical type still compares Equal/Match.
func (ts *TypeSystem) compareMemberChains(s1, s2 Type, cmp CmpResult) CmpResult {
	m1, m2 := s1, s2
	for {
		m1 = ts.MemberNext(m1)
		m2 = ts.MemberNext(m2)
		if m1 == s1 || m2 == s2 {
			break
		}
		cmp &= ts.Compare(m1, m2)
		if cmp == Unmatch {
			return Unmatch
		}
	}
	if m1 != s1 || m2 != s2 {
		return Unmatch
	}
	return cmp
}
