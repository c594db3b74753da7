//go:build !linux && !darwin

package symtab

// loadPluginSymbol is unsupported on platforms without Go plugin support
// (notably Windows): external library calls remain forward-declared and
// must be defined some other way (e.g. ProcTable.Define with a statically
// linked Go function).
func loadPluginSymbol(libPath, symName string) (CFunc, error) {
	_ = symName
	return nil, errDynamicLoadUnsupported(libPath)
}
