//go:build linux || darwin

package symtab

import (
	"plugin"

	"box/internal/boxerr"
)

// loadPluginSymbol opens the plugin at libPath and looks up symName as a
// func(any) error — the Go analog of dlopen+dlsym for a C function pointer.
func loadPluginSymbol(libPath, symName string) (CFunc, error) {
	p, err := plugin.Open(libPath)
	if err != nil {
		return nil, boxerr.Wrap(boxerr.UndefinedProcedure, err, "symtab: opening plugin "+libPath)
	}
	sym, err := p.Lookup(symName)
	if err != nil {
		return nil, boxerr.Wrap(boxerr.UndefinedProcedure, err, "symtab: looking up symbol "+symName)
	}
	fn, ok := sym.(func(any) error)
	if !ok {
		return nil, boxerr.New(boxerr.UndefinedProcedure,
			"symtab: symbol %q in %q has the wrong signature, want func(any) error", symName, libPath)
	}
	return fn, nil
}
