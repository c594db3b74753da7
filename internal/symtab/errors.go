package symtab

import "box/internal/boxerr"

func errBadSymNum(symNum int) error {
	return boxerr.New(boxerr.SlotNotOccupied, "symtab: symbol %d does not exist", symNum)
}

func errDuplicateName(name string) error {
	return boxerr.New(boxerr.DuplicateSymbol, "symtab: name %q is already in use", name)
}

func errRedefinition(symNum int, name string) error {
	if name == "" {
		return boxerr.New(boxerr.SymbolRedefinition, "symtab: symbol %d already defined", symNum)
	}
	return boxerr.New(boxerr.SymbolRedefinition, "symtab: symbol %q already defined", name)
}
