package vm

import (
	"box/internal/boxerr"
	"box/internal/diag"
	"box/internal/instr"
	"box/internal/regalloc"
	"box/internal/symtab"
)

// VM is one Box virtual machine: a global register file shared by every
// procedure plus the symtab.ProcTable that resolves call numbers to either
// VM bytecode or a host Go function (symtab.CFunc).
//
// Grounded on box/src/vmexec.c, whose VM_Exec loop fetches, decodes and
// dispatches one instruction per iteration against the table this package's
// internal/instr mirrors, and on box/src/vmproc.c's installed-procedure
// table for how `call` resolves.
type VM struct {
	Procs   *symtab.ProcTable
	globals *Frame
	stack   []any

	// Diag is the message sink every VM fatal/recoverable condition routes
	// through (spec.md §7). Its installed FatalHandler panics with a
	// fatalSignal, which RunCall recovers from and turns back into a plain
	// Go error, so a division by zero or any other fatal condition reaches
	// the caller the same way every other VM error does.
	Diag *diag.Sink

	// MaxSteps bounds the fetch-execute loop against runaway bytecode (an
	// unterminated jmp loop, a missing ret); 0 means unbounded. Exercised
	// by tests that assemble a deliberately non-terminating loop.
	MaxSteps int
}

// fatalSignal is what Diag's FatalHandler panics with; RunCall is the only
// place that recovers it.
type fatalSignal struct {
	msg diag.Message
}

func newDiagSink() *diag.Sink {
	return diag.NewSink(func(m diag.Message) { panic(fatalSignal{msg: m}) })
}

// New creates a VM bound to procs, with an empty global register file and
// its own diagnostic sink.
func New(procs *symtab.ProcTable) *VM {
	return &VM{Procs: procs, globals: &Frame{}, Diag: newDiagSink()}
}

// fatal records a Fatal diagnostic and unwinds to RunCall's recover, which
// turns it into the error this call ultimately returns. It never returns to
// its caller, matching diag.Sink.Fatal's contract.
func (vm *VM) fatal(cat boxerr.Category, format string, args ...any) error {
	vm.Diag.Fatal(cat, format, args...)
	panic("unreachable")
}

// RunCall looks up callNum in the procedure table and executes it: VM
// bytecode runs through the fetch-execute loop in a fresh frame; a host
// function (installed via symtab.ProcTable.InstallC) is invoked directly,
// receiving the VM itself as its context argument. A Diag.Fatal raised
// anywhere during execution unwinds here rather than escaping as a panic.
func (vm *VM) RunCall(callNum int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fs, ok := r.(fatalSignal)
			if !ok {
				panic(r)
			}
			err = boxerr.New(fs.msg.Category, "%s", fs.msg.Text)
		}
	}()

	inst, ok := vm.Procs.Lookup(callNum)
	if !ok {
		return boxerr.New(boxerr.UndefinedProcedure, "vm: call number %d is not installed", callNum)
	}
	if inst.IsUndefined() {
		return boxerr.New(boxerr.UndefinedProcedure, "vm: call %q (%d) was declared but never defined", inst.Name, callNum)
	}
	if fn := inst.Func(); fn != nil {
		return fn(vm)
	}
	fr := newFrame(regalloc.Counts{})
	return vm.execProc(inst.Code(), fr)
}

// GlobalChar, GlobalInt, GlobalReal, GlobalPoint and GlobalObj read a global
// register after a run completes, the way a host driving the VM inspects
// its result without the program itself printing anything.
func (vm *VM) GlobalChar(i int) byte {
	v, _ := (*vm.globals.slot(regalloc.Char, i)).(byte)
	return v
}
func (vm *VM) GlobalInt(i int) int64 {
	v, _ := (*vm.globals.slot(regalloc.Int, i)).(int64)
	return v
}
func (vm *VM) GlobalReal(i int) float64 {
	v, _ := (*vm.globals.slot(regalloc.Real, i)).(float64)
	return v
}
func (vm *VM) GlobalPoint(i int) Point {
	v, _ := (*vm.globals.slot(regalloc.Point, i)).(Point)
	return v
}
func (vm *VM) GlobalObj(i int) *Object {
	v, _ := (*vm.globals.slot(regalloc.Obj, i)).(*Object)
	return v
}

// execProc runs code to completion (an OpRet, a decode failure, or a
// handler error) inside fr. pc is a word offset into code, matching the
// word-addressed positions symtab's label mechanism records.
func (vm *VM) execProc(code []uint32, fr *Frame) error {
	pc := 0
	steps := 0
	for pc < len(code) {
		if vm.MaxSteps > 0 {
			steps++
			if steps > vm.MaxSteps {
				return boxerr.New(boxerr.SlotOutOfRange, "vm: exceeded %d instruction steps, likely a non-terminating loop", vm.MaxSteps)
			}
		}
		in, next, err := instr.Decode(code, pc)
		if err != nil {
			return err
		}
		jumpTo, done, err := vm.exec(fr, in)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if jumpTo >= 0 {
			pc = jumpTo
		} else {
			pc = next
		}
	}
	return nil
}
