package symtab

import "box/internal/boxerr"

// ResolveExternal looks up symName as a CFunc-shaped Go symbol inside the
// dynamically loaded plugin at libPath, installs it, and defines symNum's
// call symbol against the resulting call number. Grounded on vmsym.c's
// VM_Sym_Resolve_CLib (dlopen/dlsym), generalized from a C ABI function
// pointer to Go's plugin.Lookup. On platforms without dynamic-loading
// support it returns an UndefinedProcedure error and installs nothing;
// symNum stays undefined.
func (l *Linker) ResolveExternal(symNum int, libPath, symName string) error {
	fn, err := loadPluginSymbol(libPath, symName)
	if err != nil {
		return err
	}
	callNum := l.Procs.InstallC(fn, symName, "external: "+libPath)
	return DefCallSymbol(l.Syms, symNum, callNum)
}

func errDynamicLoadUnsupported(libPath string) error {
	return boxerr.New(boxerr.UndefinedProcedure,
		"symtab: cannot load %q: this platform was built without dynamic library support", libPath)
}
