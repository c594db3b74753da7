package symtab

import (
	"testing"

	"box/internal/instr"
	"box/internal/regalloc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymDefTwiceIsError(t *testing.T) {
	tbl := New()
	sym := tbl.SymNew(KindCall)
	require.NoError(t, tbl.SymDef(sym, []byte{1}))
	assert.Error(t, tbl.SymDef(sym, []byte{2}))
}

func TestSymNameMustBeUnique(t *testing.T) {
	tbl := New()
	s1 := tbl.SymNew(KindCall)
	s2 := tbl.SymNew(KindCall)
	require.NoError(t, tbl.SymNameSet(s1, "draw"))
	assert.Error(t, tbl.SymNameSet(s2, "draw"))
}

func TestSymRefResolvesImmediatelyWhenAlreadyDefined(t *testing.T) {
	tbl := New()
	sym := tbl.SymNew(KindCall)
	require.NoError(t, tbl.SymDef(sym, []byte{9}))

	var got []byte
	err := tbl.SymRef(sym, func(t *Table, symNum int, kind Kind, defined bool, def, ref []byte) error {
		got = def
		return nil
	}, nil, StatusAuto)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)
	assert.True(t, tbl.SymRefCheck())
}

func TestSymRefDeferredUntilResolve(t *testing.T) {
	tbl := New()
	sym := tbl.SymNew(KindCall)

	calls := 0
	require.NoError(t, tbl.SymRef(sym, func(t *Table, symNum int, kind Kind, defined bool, def, ref []byte) error {
		calls++
		return nil
	}, nil, StatusAuto))
	assert.Equal(t, 0, calls, "a reference to an undefined symbol must not fire yet")
	assert.False(t, tbl.SymRefCheck())

	require.NoError(t, tbl.SymDef(sym, nil))
	require.NoError(t, tbl.SymResolve(sym))
	assert.Equal(t, 1, calls)
	assert.True(t, tbl.SymRefCheck())
}

func TestRefCallResolvesToLargeCallNumberWithoutWidthMismatch(t *testing.T) {
	l := NewLinker()
	sym := NewCallSymbol(l.Syms)

	require.NoError(t, RefCall(l, sym))
	proc := l.Procs.TargetGet()
	before := len(l.Procs.procs.ItemPtr(proc).code)

	// A call number well past the short form's byte-sized argument range:
	// without ForceLong on the provisional emission, this resolve would fail
	// with a word-count mismatch since the placeholder (call 0) fits short
	// but the real value doesn't.
	require.NoError(t, DefCallSymbol(l.Syms, sym, 70000))
	require.NoError(t, l.Syms.SymResolve(sym))

	words := l.Procs.procs.ItemPtr(proc).code
	assert.Equal(t, before, len(words), "resolved call occupies the same word count as the placeholder")

	in, _, err := instr.Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(70000), in.Args[0].Value)
}

func TestRefCallEmitsPlaceholderThenPatchesOnDefine(t *testing.T) {
	l := NewLinker()
	sym := NewCallSymbol(l.Syms)

	require.NoError(t, RefCall(l, sym))
	proc := l.Procs.TargetGet()
	words := append([]uint32{}, l.Procs.procs.ItemPtr(proc).code...)

	in, _, err := instr.Decode(words, 0)
	require.NoError(t, err)
	require.Equal(t, instr.OpCall, in.Op)
	assert.Equal(t, int32(0), in.Args[0].Value, "call number is 0 before the symbol is defined")

	require.NoError(t, DefCallSymbol(l.Syms, sym, 42))
	require.NoError(t, l.Syms.SymResolve(sym))

	words2 := l.Procs.procs.ItemPtr(proc).code
	in2, _, err := instr.Decode(words2, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), in2.Args[0].Value, "resolving the symbol patches the call number in place")
}

func TestLabelJumpBeforeAndAfterDefine(t *testing.T) {
	l := NewLinker()
	lb := NewLabel(l)

	require.NoError(t, lb.Jump(l))
	proc := l.Procs.TargetGet()

	require.NoError(t, lb.Define(l, proc, 77))

	words := l.Procs.procs.ItemPtr(proc).code
	in, _, err := instr.Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, instr.OpJc, in.Op)
	assert.Equal(t, int32(77), in.Args[0].Value, "defining the label patches every jump already emitted against it")
}

func TestLabelJumpAfterDefineEmitsFinalFormDirectly(t *testing.T) {
	l := NewLinker()
	lb := NewLabel(l)
	proc := l.Procs.TargetGet()
	require.NoError(t, lb.Define(l, proc, 5))

	require.NoError(t, lb.Jump(l))
	words := l.Procs.procs.ItemPtr(proc).code
	in, _, err := instr.Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(5), in.Args[0].Value)
}

func TestProcHeadEmitsFiveNewInstructionsWithCounts(t *testing.T) {
	l := NewLinker()
	sym, err := NewProcHead(l)
	require.NoError(t, err)

	var counts regalloc.Counts
	counts.Registers[regalloc.Int] = 3
	counts.Variables[regalloc.Real] = 2
	require.NoError(t, DefProcHead(l, sym, counts))

	proc := l.Procs.TargetGet()
	words := l.Procs.procs.ItemPtr(proc).code

	off := 0
	wantOps := []instr.Opcode{instr.OpNewC, instr.OpNewI, instr.OpNewR, instr.OpNewP, instr.OpNewO}
	for i, op := range wantOps {
		in, next, err := instr.Decode(words, off)
		require.NoError(t, err)
		assert.Equal(t, op, in.Op, "class %d", i)
		assert.Equal(t, int32(counts.Variables[i]), in.Args[0].Value, "variable count of class %d", i)
		assert.Equal(t, int32(counts.Registers[i]), in.Args[1].Value, "register count of class %d", i)
		off = next
	}
	assert.Equal(t, len(words), off)
}

func TestInstallCodeAndInstallC(t *testing.T) {
	l := NewLinker()
	proc := l.Procs.TargetGet()
	require.NoError(t, l.Procs.Emit(instr.Instruction{Op: instr.OpRet}))
	callNum, err := l.Procs.InstallCode(proc, "main", "entry point")
	require.NoError(t, err)

	inst, ok := l.Procs.Lookup(callNum)
	require.True(t, ok)
	assert.Equal(t, "main", inst.Name)
	assert.Len(t, inst.Code(), 1)

	called := false
	cNum := l.Procs.InstallC(func(ctx any) error { called = true; return nil }, "host_fn", "")
	inst2, ok := l.Procs.Lookup(cNum)
	require.True(t, ok)
	require.NoError(t, inst2.Func()(nil))
	assert.True(t, called)
}

func TestInstallUndefinedThenDefine(t *testing.T) {
	l := NewLinker()
	callNum := l.Procs.InstallUndefined("later")
	inst, ok := l.Procs.Lookup(callNum)
	require.True(t, ok)
	assert.True(t, inst.IsUndefined())

	require.NoError(t, l.Procs.Define(callNum, []uint32{1, 2, 3}, nil))
	inst2, _ := l.Procs.Lookup(callNum)
	assert.False(t, inst2.IsUndefined())
	assert.Equal(t, []uint32{1, 2, 3}, inst2.Code())

	assert.Error(t, l.Procs.Define(callNum, []uint32{9}, nil), "defining an already-defined call number is an error")
}

func TestResolveExternalFailsForMissingPlugin(t *testing.T) {
	l := NewLinker()
	sym := NewCallSymbol(l.Syms)
	err := l.ResolveExternal(sym, "/nonexistent/path/libnothing.so", "anything")
	assert.Error(t, err)
}

func TestCallNameResolvesInstalledProcedure(t *testing.T) {
	l := NewLinker()
	cNum := l.Procs.InstallC(func(any) error { return nil }, "draw_line", "")
	assert.Equal(t, "draw_line", l.Procs.CallName(int32(cNum)))
	assert.Equal(t, "", l.Procs.CallName(999))
}
