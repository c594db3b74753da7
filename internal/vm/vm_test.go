package vm

import (
	"testing"

	"box/internal/boxerr"
	"box/internal/instr"
	"box/internal/regalloc"
	"box/internal/symtab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imm(v int32) instr.Arg   { return instr.Arg{Mode: instr.AddrImmediate, Value: v} }
func glob(v int32) instr.Arg  { return instr.Arg{Mode: instr.AddrGlobal, Value: v} }
func local(v int32) instr.Arg { return instr.Arg{Mode: instr.AddrLocal, Value: v} }
func ptr(v int32) instr.Arg   { return instr.Arg{Mode: instr.AddrPointer, Value: v} }

// installProc assembles ops into a fresh procedure on l.Procs via Emit (so
// the buffer grows instruction by instruction the way a real assembler
// would build it up) and installs it, returning its call number.
func installProc(t *testing.T, l *symtab.Linker, ops []instr.Instruction) int {
	t.Helper()
	proc := l.Procs.CodeNew()
	require.NoError(t, l.Procs.TargetSet(proc))
	for _, op := range ops {
		require.NoError(t, l.Procs.Emit(op))
	}
	callNum, err := l.Procs.InstallCode(proc, "main", "")
	require.NoError(t, err)
	return callNum
}

// runCode installs ops as a single procedure and runs it on a fresh VM,
// returning the VM so the caller can inspect global registers afterward.
func runCode(t *testing.T, ops []instr.Instruction) *VM {
	t.Helper()
	l := symtab.NewLinker()
	callNum := installProc(t, l, ops)
	v := New(l.Procs)
	require.NoError(t, v.RunCall(callNum))
	return v
}

func TestAddIntegersThroughGlobals(t *testing.T) {
	v := runCode(t, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(5)}},
		{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(3)}},
		{Op: instr.OpAddI, Args: []instr.Arg{glob(0), glob(1)}},
		{Op: instr.OpRet},
	})
	assert.Equal(t, int64(8), v.GlobalInt(0))
}

func TestRealArithmetic(t *testing.T) {
	v := runCode(t, []instr.Instruction{
		{Op: instr.OpMovR, Args: []instr.Arg{glob(0), imm(10)}},
		{Op: instr.OpMovR, Args: []instr.Arg{glob(1), imm(4)}},
		{Op: instr.OpSubR, Args: []instr.Arg{glob(0), glob(1)}},
		{Op: instr.OpRet},
	})
	assert.Equal(t, float64(6), v.GlobalReal(0))
}

func TestComparisonWritesIntRegisterZero(t *testing.T) {
	v := runCode(t, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(7)}},
		{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(7)}},
		{Op: instr.OpEqI, Args: []instr.Arg{glob(0), glob(1)}},
		{Op: instr.OpMovI, Args: []instr.Arg{glob(2), local(0)}},
		{Op: instr.OpRet},
	})
	assert.Equal(t, int64(1), v.GlobalInt(2), "eq? of equal operands must leave a truthy result in ri0")
}

func TestConditionalJumpSkipsWhenFalse(t *testing.T) {
	// gi0 = 1; gi1 = 2, so eq? leaves ri0 = 0 (false). jc must fall
	// through to the gi1 = 9 write rather than jumping past it.
	l := symtab.NewLinker()
	proc := l.Procs.CodeNew()
	require.NoError(t, l.Procs.TargetSet(proc))

	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(1)}}))
	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(2)}}))
	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpEqI, Args: []instr.Arg{glob(0), glob(1)}}))

	jcOffset := l.Procs.Len(proc)
	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpJc, Args: []instr.Arg{imm(0)}})) // placeholder

	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(9)}}))
	retOffset := int32(l.Procs.Len(proc))
	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpRet}))

	jcWords, err := instr.Encode(instr.Instruction{Op: instr.OpJc, Args: []instr.Arg{imm(retOffset)}})
	require.NoError(t, err)
	require.NoError(t, l.Procs.Overwrite(proc, jcOffset, jcWords))

	callNum, err := l.Procs.InstallCode(proc, "main", "")
	require.NoError(t, err)

	v := New(l.Procs)
	require.NoError(t, v.RunCall(callNum))
	assert.Equal(t, int64(9), v.GlobalInt(1), "a false condition must fall through, not jump")
}

func TestMallocAndPointerFieldAccess(t *testing.T) {
	v := runCode(t, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{local(0), imm(4)}}, // size
		{Op: instr.OpMalloc, Args: []instr.Arg{local(0)}},
		{Op: instr.OpMovI, Args: []instr.Arg{ptr(2), imm(42)}}, // i[ro0+2] = 42
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), ptr(2)}},
		{Op: instr.OpRet},
	})
	assert.Equal(t, int64(42), v.GlobalInt(0))
}

func TestPushPop(t *testing.T) {
	v := New(symtab.NewLinker().Procs)
	fr := newFrame(regalloc.Counts{})
	obj := &Object{Ints: []int64{1}}
	*fr.slot(regalloc.Obj, 1) = obj

	_, _, err := v.exec(fr, instr.Instruction{Op: instr.OpPush, Args: []instr.Arg{local(1)}})
	require.NoError(t, err)
	_, _, err = v.exec(fr, instr.Instruction{Op: instr.OpPop, Args: []instr.Arg{local(2)}})
	require.NoError(t, err)

	got := *fr.slot(regalloc.Obj, 2)
	assert.Same(t, obj, got.(*Object))
}

func TestPopFromEmptyStackIsAnError(t *testing.T) {
	v := New(symtab.NewLinker().Procs)
	fr := newFrame(regalloc.Counts{})
	_, _, err := v.exec(fr, instr.Instruction{Op: instr.OpPop, Args: []instr.Arg{local(0)}})
	assert.Error(t, err)
}

func TestCallDispatchesToInstalledVMProcedure(t *testing.T) {
	l := symtab.NewLinker()

	calleeNum := installProc(t, l, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(5), imm(100)}},
		{Op: instr.OpRet},
	})

	mainNum := installProc(t, l, []instr.Instruction{
		{Op: instr.OpCall, Args: []instr.Arg{imm(int32(calleeNum))}},
		{Op: instr.OpRet},
	})

	v := New(l.Procs)
	require.NoError(t, v.RunCall(mainNum))
	assert.Equal(t, int64(100), v.GlobalInt(5))
}

func TestCallDispatchesToHostFunction(t *testing.T) {
	l := symtab.NewLinker()
	called := false
	hostNum := l.Procs.InstallC(func(ctx any) error {
		called = true
		mv := ctx.(*VM)
		*mv.globals.slot(regalloc.Int, 9) = int64(7)
		return nil
	}, "host", "")

	mainNum := installProc(t, l, []instr.Instruction{
		{Op: instr.OpCall, Args: []instr.Arg{imm(int32(hostNum))}},
		{Op: instr.OpRet},
	})

	v := New(l.Procs)
	require.NoError(t, v.RunCall(mainNum))
	assert.True(t, called)
	assert.Equal(t, int64(7), v.GlobalInt(9))
}

func TestUndefinedCallIsAnError(t *testing.T) {
	l := symtab.NewLinker()
	v := New(l.Procs)
	assert.Error(t, v.RunCall(9999))
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	l := symtab.NewLinker()
	callNum := installProc(t, l, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(10)}},
		{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(0)}},
		{Op: instr.OpDivI, Args: []instr.Arg{glob(0), glob(1)}},
		{Op: instr.OpRet},
	})
	v := New(l.Procs)
	err := v.RunCall(callNum)
	require.Error(t, err)
	assert.Equal(t, boxerr.DivisionByZero, err.(*boxerr.Error).Category)
}

func TestRemainderByZeroIsFatal(t *testing.T) {
	l := symtab.NewLinker()
	callNum := installProc(t, l, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(10)}},
		{Op: instr.OpMovI, Args: []instr.Arg{glob(1), imm(0)}},
		{Op: instr.OpRemI, Args: []instr.Arg{glob(0), glob(1)}},
		{Op: instr.OpRet},
	})
	v := New(l.Procs)
	err := v.RunCall(callNum)
	require.Error(t, err)
	assert.Equal(t, boxerr.DivisionByZero, err.(*boxerr.Error).Category)
}

func TestMaxStepsBoundsANonTerminatingLoop(t *testing.T) {
	callNum := 0
	l := symtab.NewLinker()
	callNum = installProc(t, l, []instr.Instruction{
		{Op: instr.OpMovI, Args: []instr.Arg{glob(0), imm(1)}}, // word offset 0
		{Op: instr.OpJmp, Args: []instr.Arg{imm(0)}},           // loop back to offset 0 forever
	})
	v := New(l.Procs)
	v.MaxSteps = 1000
	assert.Error(t, v.RunCall(callNum))
}
