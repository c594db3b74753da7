package types

// SubtypeNew declares a subtype named childName of parentType without yet
// giving it a backing type: "Window.Save", say, is declared the moment the
// name is first used and only given a concrete type later, once its
// definition is compiled. The subtype is not visible to SubtypeFind until
// SubtypeRegister completes it.
func (ts *TypeSystem) SubtypeNew(parentType Type, childName string) Type {
	return ts.new_(Descriptor{
		Kind:             KindSubtype,
		Size:             SizeUnknown,
		Target:           TypeNone,
		SubtypeParent:    parentType,
		SubtypeChildName: childName,
	})
}

// SubtypeRegister gives a previously declared subtype its backing type and
// makes it visible to SubtypeFind. Registering the same (parent, childName)
// pair twice is allowed only if the new backing type is at least structurally
// Match-compatible with the one already registered; otherwise it is an
// error, matching the original's refusal to let a subtype be silently
// redefined to something incompatible.
func (ts *TypeSystem) SubtypeRegister(subtype, backing Type) error {
	d := ts.desc(subtype)
	if d.Target != TypeNone {
		return errSubtypeRedefined(subtype)
	}

	if found, ok := ts.SubtypeFind(d.SubtypeParent, d.SubtypeChildName); ok {
		foundBacking := ts.desc(found).Target
		if ts.Compare(foundBacking, backing)&Match != Match {
			return errSubtypeRedefined(subtype)
		}
		return nil
	}

	d.Target = backing
	d.Size = 16 // 2*sizeof(pointer): typesys.c's Subtype is `typedef Ptr Subtype[2]`
	ts.subtypes[memberKey{Parent: d.SubtypeParent, Name: d.SubtypeChildName}] = subtype
	return nil
}

// SubtypeFind looks up a registered subtype by (parent, childName).
func (ts *TypeSystem) SubtypeFind(parent Type, childName string) (Type, bool) {
	t, ok := ts.subtypes[memberKey{Parent: parent, Name: childName}]
	return t, ok
}

// SubtypeChild returns a registered subtype's backing type.
func (ts *TypeSystem) SubtypeChild(subtype Type) Type {
	return ts.desc(subtype).Target
}

// SubtypeParent returns a subtype's parent type.
func (ts *TypeSystem) SubtypeParent(subtype Type) Type {
	return ts.desc(subtype).SubtypeParent
}
