package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntReal(ts *TypeSystem) (intT, realT Type) {
	return ts.IntrinsicNew(8), ts.IntrinsicNew(8)
}

func TestIntrinsicNewHasNoName(t *testing.T) {
	ts := New()
	i := ts.IntrinsicNew(4)
	assert.True(t, ts.IsAnonymous(i))
	assert.Equal(t, int64(4), ts.Size(i))
}

func TestSetNameTwiceIsError(t *testing.T) {
	ts := New()
	i := ts.IntrinsicNew(4)
	require.NoError(t, ts.SetName(i, "Int"))
	assert.Error(t, ts.SetName(i, "Integer"))
}

func TestStructureSizeAccumulatesOffsets(t *testing.T) {
	ts := New()
	intT, realT := newIntReal(ts)

	s := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(s, realT, "x"))
	require.NoError(t, ts.StructureAdd(s, realT, "y"))
	require.NoError(t, ts.StructureAdd(s, intT, "tag"))

	assert.Equal(t, int64(24), ts.Size(s))
	assert.Equal(t, 3, ts.MemberCount(s))

	xm, ok := ts.MemberFind(s, "x")
	require.True(t, ok)
	_, offset := ts.MemberGet(xm)
	assert.Equal(t, int64(0), offset)

	ym, ok := ts.MemberFind(s, "y")
	require.True(t, ok)
	_, offset = ts.MemberGet(ym)
	assert.Equal(t, int64(8), offset)

	tagm, ok := ts.MemberFind(s, "tag")
	require.True(t, ok)
	_, offset = ts.MemberGet(tagm)
	assert.Equal(t, int64(16), offset)
}

func TestStructureDuplicateMemberNameIsError(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)
	s := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(s, realT, "x"))
	assert.Error(t, ts.StructureAdd(s, realT, "x"))
}

// Two anonymous structures with the same member types but different field
// names compare Equal: field names are not part of a structure's identity.
func TestStructureCompareIgnoresFieldNames(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)

	t1 := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(t1, realT, "x"))
	require.NoError(t, ts.StructureAdd(t1, realT, "y"))

	t2 := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(t2, realT, "a"))
	require.NoError(t, ts.StructureAdd(t2, realT, "b"))

	assert.Equal(t, Equal, ts.Compare(t1, t2))
}

// A type detached from another never compares Equal or Match to it, even
// though it is structurally identical, but does compare Equal to itself.
func TestDetachedNeverMatchesItsOrigin(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)

	point := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(point, realT, "x"))
	require.NoError(t, ts.StructureAdd(point, realT, "y"))

	detachedPoint := ts.DetachedNew(point)

	assert.Equal(t, Unmatch, ts.Compare(detachedPoint, point))
	assert.Equal(t, Equal, ts.Compare(detachedPoint, detachedPoint))
}

func TestArrayUnknownLengthMatchesAnyLength(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)

	open := ts.ArrayNew(realT, ArrayLengthUnknown)
	fixed := ts.ArrayNew(realT, 10)

	assert.Equal(t, Match, ts.Compare(open, fixed))
	assert.Equal(t, Unmatch, ts.Compare(fixed, open))
}

func TestArrayDifferentFixedLengthsUnmatch(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)
	a := ts.ArrayNew(realT, 3)
	b := ts.ArrayNew(realT, 4)
	assert.Equal(t, Unmatch, ts.Compare(a, b))
}

// A species resolves to whichever member was added last, and comparing
// against an earlier (non-final) member reports Expand rather than Equal.
func TestSpeciesResolvesToLastMemberAndReportsExpand(t *testing.T) {
	ts := New()
	intT, realT := newIntReal(ts)

	species := ts.SpeciesBegin()
	require.NoError(t, ts.SpeciesAdd(species, intT))
	require.NoError(t, ts.SpeciesAdd(species, realT))

	assert.Equal(t, realT, ts.SpeciesTarget(species))
	assert.Equal(t, Equal, ts.Compare(species, realT))
	assert.Equal(t, Expand, ts.Compare(species, intT))
	assert.Equal(t, Unmatch, ts.Compare(species, ts.IntrinsicNew(1)))
}

func TestAliasResolvesTransparentlyButKeepsItsOwnName(t *testing.T) {
	ts := New()
	i := ts.IntrinsicNew(8)
	require.NoError(t, ts.SetName(i, "Int"))
	alias := ts.AliasNew(i)
	require.NoError(t, ts.SetName(alias, "MyInt"))

	assert.Equal(t, "MyInt", ts.NameGet(alias))
	assert.Equal(t, i, ts.CoreType(alias))
}

func TestProcedureSearchFindsRegisteredMethod(t *testing.T) {
	ts := New()
	intT, realT := newIntReal(ts)

	window := ts.StructureBegin()
	proc := ts.ProcedureNew(window, realT, ProcKindMethod)
	ts.ProcedureRegister(proc, 1)

	found, expansion := ts.ProcedureSearch(window, realT, ProcKindMethod)
	assert.Equal(t, proc, found)
	assert.Equal(t, TypeNone, expansion)

	_, _, _, symNum := ts.ProcedureInfo(found)
	assert.Equal(t, 1, symNum)

	notFound, _ := ts.ProcedureSearch(window, intT, ProcKindMethod)
	assert.Equal(t, TypeNone, notFound)
}

func TestProcedureSearchRespectsKindBits(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)
	window := ts.StructureBegin()
	proc := ts.ProcedureNew(window, realT, ProcKindOperator)
	ts.ProcedureRegister(proc, 2)

	found, _ := ts.ProcedureSearch(window, realT, ProcKindMethod)
	assert.Equal(t, TypeNone, found)

	found, _ = ts.ProcedureSearch(window, realT, ProcKindOperator)
	assert.Equal(t, proc, found)
}

func TestSubtypeRegisterAndFind(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)

	window := ts.StructureBegin()
	save := ts.SubtypeNew(window, "Save")
	require.NoError(t, ts.SubtypeRegister(save, realT))

	found, ok := ts.SubtypeFind(window, "Save")
	require.True(t, ok)
	assert.Equal(t, save, found)
	assert.Equal(t, realT, ts.SubtypeChild(found))
}

func TestSubtypeRedefinitionWithIncompatibleTypeIsError(t *testing.T) {
	ts := New()
	intT, realT := newIntReal(ts)
	window := ts.StructureBegin()

	save := ts.SubtypeNew(window, "Save")
	require.NoError(t, ts.SubtypeRegister(save, realT))

	again := ts.SubtypeNew(window, "Save")
	assert.Error(t, ts.SubtypeRegister(again, intT))
}

func TestNameGetStructureFormat(t *testing.T) {
	ts := New()
	_, realT := newIntReal(ts)
	require.NoError(t, ts.SetName(realT, "Real"))

	s := ts.StructureBegin()
	require.NoError(t, ts.StructureAdd(s, realT, "x"))
	require.NoError(t, ts.StructureAdd(s, realT, "y"))

	assert.Equal(t, "(Real x, y)", ts.NameGet(s))
}

func TestNameGetEmptyStructure(t *testing.T) {
	ts := New()
	s := ts.StructureBegin()
	assert.Equal(t, "(,)", ts.NameGet(s))
}
