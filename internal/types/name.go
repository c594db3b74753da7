package types

import "fmt"

// resolveForName unwraps anonymous Alias/Member links only, stopping at the
// first type that either has its own name or isn't an Alias/Member. Grounds
// on the static Resolve helper in typesys.c, called with ignore_names=0: an
// alias given its own name is a naming boundary in its own right, even
// though structurally it resolves further.
func (ts *TypeSystem) resolveForName(t Type) (Type, *Descriptor) {
	for {
		d := ts.desc(t)
		if d.Kind != KindAlias && d.Kind != KindMember {
			return t, d
		}
		if d.Name != "" {
			return t, d
		}
		t = d.Target
	}
}

// NameGet synthesizes a type's canonical textual name: the name it was
// given, if any, or else a structural description built from its shape
// (a structure as "(T1 a, T2 b)", a species as "(T1->T2->T3)", an enum as
// "(T1|T2)", an array as "(N)T" or "()T" for unspecified length, a procedure
// as "child@parent"/"child@@parent", and a subtype as "parent.child").
//
// Rendered names are cached per Type, mirroring TS_Name_Get's name_buffer:
// a structure/species/enum's name is walked and rebuilt from its whole
// member chain every time, which gets expensive under repeated lookups of
// the same type (e.g. re-printing diagnostics against the same symbol
// table). SetName and addMember are the only two ways an already-rendered
// name can go stale; because a composite's rendered name embeds the names
// of its members, each of them clears the whole cache rather than only the
// entry of the type it changed.
func (ts *TypeSystem) NameGet(t Type) string {
	if t == TypeNone {
		return "<none>"
	}
	if s, ok := ts.nameCache[t]; ok {
		return s
	}
	s := ts.nameGetCompute(t)
	ts.nameCache[t] = s
	return s
}

func (ts *TypeSystem) nameGetCompute(t Type) string {
	rt, d := ts.resolveForName(t)
	if d.Name != "" {
		return d.Name
	}

	switch d.Kind {
	case KindIntrinsic:
		return fmt.Sprintf("<size=%d>", d.Size)

	case KindDetached:
		return "++" + ts.NameGet(d.Target)

	case KindArray:
		if d.ArrayLength != ArrayLengthUnknown {
			return fmt.Sprintf("(%d)%s", d.ArrayLength, ts.NameGet(d.Target))
		}
		return "()" + ts.NameGet(d.Target)

	case KindStructure:
		return ts.nameGetChain(rt, d, "(,)", "(%s,)", "(%s, %s)", "%s, %s")

	case KindSpecies:
		return ts.nameGetChain(rt, d, "(->)", "(%s->)", "(%s->%s)", "%s->%s")

	case KindEnum:
		return ts.nameGetChain(rt, d, "(|)", "(%s|)", "(%s|%s)", "%s|%s")

	case KindProcedure:
		kindStrs := [4]string{"err", "@", "@@", "@&"}
		return fmt.Sprintf("%s%s%s", ts.NameGet(d.Target),
			kindStrs[d.ProcKind&3], ts.NameGet(d.ProcParent))

	case KindSubtype:
		return fmt.Sprintf("%s.%s", ts.NameGet(d.SubtypeParent), d.SubtypeChildName)

	default:
		return "<unknown type>"
	}
}

// nameGetChain is the shared body behind the Structure/Species/Enum cases of
// NameGet: it walks the member chain of s (whose descriptor is d), joining
// each member's own rendered name with the separator embedded in the one/
// two/many format strings, special-casing the zero- and one-member chains.
// Structure members additionally fold in their field name, suppressing it
// when two consecutive fields share the same type (mirroring Box's "(Real
// x, y)" shorthand instead of "(Real x, Real y)").
func (ts *TypeSystem) nameGetChain(s Type, d *Descriptor, empty, one, two, many string) string {
	if d.MemberCount == 0 {
		return empty
	}

	m := d.MemberHead
	prevMemberType := TypeNone
	var joined string
	started := false

	for {
		md := ts.desc(m)
		rendered := ts.NameGet(md.Target)
		if d.Kind == KindStructure && md.Name != "" {
			if md.Target != prevMemberType {
				rendered = rendered + " " + md.Name
			} else {
				rendered = md.Name
			}
		}
		prevMemberType = md.Target

		next := md.MemberNext
		if next == s {
			if !started {
				return fmt.Sprintf(one, rendered)
			}
			return fmt.Sprintf(two, joined, rendered)
		}
		if !started {
			joined, started = rendered, true
		} else {
			joined = fmt.Sprintf(many, joined, rendered)
		}
		m = next
	}
}
