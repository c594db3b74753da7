// cmd/box/demo.go
//
// There is no lexer or parser in this build: a Box program is assembled
// directly against internal/instr and internal/symtab, the way a front end
// would drive them. buildDemo assembles two procedures: scale_pair, which
// allocates a two-slot object on the heap, stores 21 in two of its int
// fields, adds them and copies the sum (42) to gi3; and main, which
// computes (a + b) * 2 for two global integers, leaves the result in gi0
// and then calls scale_pair — exercising call dispatch, arithmetic, malloc
// and pointer addressing in one assembled unit.
package main

import (
	"fmt"

	"box/internal/instr"
	"box/internal/symtab"
	"box/internal/vm"
)

func arg(mode instr.AddrMode, v int32) instr.Arg { return instr.Arg{Mode: mode, Value: v} }

func gi(n int32) instr.Arg  { return arg(instr.AddrGlobal, n) }
func ri(n int32) instr.Arg  { return arg(instr.AddrLocal, n) }
func imm(n int32) instr.Arg { return arg(instr.AddrImmediate, n) }
func ptr(n int32) instr.Arg { return arg(instr.AddrPointer, n) }

// buildDemo assembles the demo program on a fresh linker and returns the
// linker plus the call number of its entry procedure.
func buildDemo() (*symtab.Linker, int, error) {
	l := symtab.NewLinker()

	scaler := l.Procs.CodeNew()
	if err := l.Procs.TargetSet(scaler); err != nil {
		return nil, 0, err
	}
	scale := []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{ri(0), imm(2)}},  // size = 2 ints
		{Op: instr.OpMalloc, Args: []instr.Arg{ri(0)}},        // ro0 = new [2]int
		{Op: instr.OpMovI, Args: []instr.Arg{ptr(0), imm(21)}},
		{Op: instr.OpMovI, Args: []instr.Arg{ptr(1), imm(21)}},
		{Op: instr.OpAddI, Args: []instr.Arg{ptr(0), ptr(1)}}, // obj[0] += obj[1]  -> 42
		{Op: instr.OpMovI, Args: []instr.Arg{gi(3), ptr(0)}},
		{Op: instr.OpRet},
	}
	for _, in := range scale {
		if err := l.Procs.Emit(in); err != nil {
			return nil, 0, err
		}
	}
	scaleNum, err := l.Procs.InstallCode(scaler, "scale_pair", "sums two heap ints into gi3")
	if err != nil {
		return nil, 0, err
	}

	entryProc := l.Procs.CodeNew()
	if err := l.Procs.TargetSet(entryProc); err != nil {
		return nil, 0, err
	}
	entry := []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{gi(0), imm(5)}},
		{Op: instr.OpMovI, Args: []instr.Arg{gi(1), imm(3)}},
		{Op: instr.OpAddI, Args: []instr.Arg{gi(0), gi(1)}},
		{Op: instr.OpMovI, Args: []instr.Arg{gi(2), imm(2)}},
		{Op: instr.OpMulI, Args: []instr.Arg{gi(0), gi(2)}}, // gi0 = (5+3)*2 = 16
		{Op: instr.OpCall, Args: []instr.Arg{imm(int32(scaleNum))}},
		{Op: instr.OpRet},
	}
	for _, in := range entry {
		if err := l.Procs.Emit(in); err != nil {
			return nil, 0, err
		}
	}
	mainNum, err := l.Procs.InstallCode(entryProc, "main", "entry point of the demo program")
	if err != nil {
		return nil, 0, err
	}

	return l, mainNum, nil
}

// RunDemo assembles and executes the demo program, returning gi0's final
// value (the arithmetic result computed before the call to scale_pair).
func RunDemo(verbose bool) (int64, error) {
	l, mainNum, err := buildDemo()
	if err != nil {
		return 0, err
	}
	machine := vm.New(l.Procs)
	if err := machine.RunCall(mainNum); err != nil {
		return 0, err
	}
	if verbose {
		fmt.Printf("gi0 = %d, gi3 (scale_pair result) = %d\n", machine.GlobalInt(0), machine.GlobalInt(3))
	}
	return machine.GlobalInt(0), nil
}

// DemoProcTable assembles the demo program and returns its procedure table,
// for callers (the CLI's verbose mode) that want a DebugDump of what got
// installed without running or disassembling it.
func DemoProcTable() *symtab.ProcTable {
	l, _, err := buildDemo()
	if err != nil {
		return symtab.NewLinker().Procs
	}
	return l.Procs
}

// DisassembleDemo renders the demo program's entry procedure (main) as
// text. scale_pair, which main calls, is not included in the listing.
func DisassembleDemo() ([]string, error) {
	l, mainNum, err := buildDemo()
	if err != nil {
		return nil, err
	}
	dis := &instr.Disassembler{CallName: l.Procs.CallName}

	var lines []string
	mainProc, _ := l.Procs.Lookup(mainNum)
	lines = append(lines, fmt.Sprintf("proc %s:", mainProc.Name))
	body, derr := dis.Disassemble(mainProc.Code())
	lines = append(lines, body...)
	if derr != nil {
		return lines, derr
	}
	return lines, nil
}
