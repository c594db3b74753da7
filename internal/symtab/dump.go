package symtab

import (
	"fmt"
	"strings"
)

// kindName renders a Kind for debug output; user kinds beyond the three
// built-ins print as "user(N)".
func kindName(k Kind) string {
	switch k {
	case KindCall:
		return "call"
	case KindCondJmp:
		return "cond_jmp"
	case KindProcHead:
		return "proc_head"
	default:
		return fmt.Sprintf("user(%d)", k)
	}
}

// DebugDump renders every symbol in the table, one line per symbol, in the
// shape VM_Sym_Table_Print prints a VMSymTable: slot number, name (if any),
// kind, defined/undefined, and a resolved/unresolved count over its
// reference chain. Grounded on vmsym.c's VM_Sym_Table_Print, which walks the
// symbol array dumping exactly this per entry.
func (t *Table) DebugDump() string {
	var b strings.Builder
	for symNum := 1; symNum <= t.syms.MaxIndex(); symNum++ {
		s := t.syms.ItemPtr(symNum)
		if s == nil {
			continue
		}
		name := s.name
		if name == "" {
			name = "<unnamed>"
		}
		status := "undefined"
		if s.defined {
			status = "defined"
		}
		resolved := 0
		for _, r := range s.refs {
			if r.resolved {
				resolved++
			}
		}
		fmt.Fprintf(&b, "#%d %s kind=%s %s refs=%d/%d resolved\n",
			symNum, name, kindName(s.kind), status, resolved, len(s.refs))
	}
	return b.String()
}

// DebugDump renders every installed call number, one line each, the way
// VM_Sym_Table_Print's procedure-table counterpart lists the flat installed
// array: call number, name, desc, and what backs it (VM bytecode word count,
// a Go function, or still-undefined).
func (pt *ProcTable) DebugDump() string {
	var b strings.Builder
	for callNum := 1; callNum < len(pt.installed); callNum++ {
		p := pt.installed[callNum]
		var body string
		switch {
		case p.IsUndefined():
			body = "undefined"
		case p.fn != nil:
			body = "cfunc"
		default:
			body = fmt.Sprintf("%d words", len(p.code))
		}
		desc := p.Desc
		if desc == "" {
			desc = "-"
		}
		fmt.Fprintf(&b, "call %d: %s (%s) %s\n", callNum, p.Name, desc, body)
	}
	return b.String()
}
