package types

import "box/internal/boxerr"

func errAlreadyNamed(t Type, have, want string) error {
	return boxerr.New(boxerr.SymbolRedefinition,
		"type %d already named %q, cannot rename to %q", t, have, want)
}

func errWrongKind(want, have Kind) error {
	return boxerr.New(boxerr.TypeIncompatible,
		"expected a %s descriptor, got %s", want, have)
}

func errDuplicateMember(parent Type, name string) error {
	return boxerr.New(boxerr.DuplicateSymbol,
		"member %q already defined on type %d", name, parent)
}

func errSubtypeRedefined(subtype Type) error {
	return boxerr.New(boxerr.SymbolRedefinition,
		"cannot redefine subtype %d with an incompatible type", subtype)
}
