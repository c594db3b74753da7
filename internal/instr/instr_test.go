package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTwoArgFitsShortForm(t *testing.T) {
	in := Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1}, {AddrLocal, 2}}}
	words, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, words, 1, "a two-argument instruction with byte-sized args fits one word")
	assert.Equal(t, uint32(0), words[0]&1, "short-form marker bit is clear")
}

func TestEncodeTwoArgOverflowsToLongForm(t *testing.T) {
	in := Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1000}, {AddrLocal, 2}}}
	words, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), words[0]&1, "an out-of-byte-range argument forces the long form")
	require.Len(t, words, 4, "long 2-arg form is header + opcode + 2 args")
}

func TestForceLongOverridesShortEligibility(t *testing.T) {
	in := Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1}, {AddrLocal, 2}}, ForceLong: true}
	words, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), words[0]&1, "ForceLong picks the long form even though the args would fit short")
	require.Len(t, words, 4)
}

func TestEncodeOneArgUsesFullSixteenBits(t *testing.T) {
	in := Instruction{Op: OpIncI, Args: []Arg{{AddrLocal, 300}}}
	words, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, words, 1, "a single argument fitting 16 bits still fits the short form")
}

func TestEncodeZeroArgAlwaysShort(t *testing.T) {
	in := Instruction{Op: OpRet}
	words, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, uint32(0), words[0]&1)
}

func TestRoundTripShortTwoArg(t *testing.T) {
	in := Instruction{Op: OpSubR, Args: []Arg{{AddrGlobal, -5}, {AddrPointer, 3}}}
	words, err := Encode(in)
	require.NoError(t, err)

	out, next, err := Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, len(words), next)
	assert.Equal(t, in.Op, out.Op)
	require.Len(t, out.Args, 2)
	assert.Equal(t, in.Args[0], out.Args[0])
	assert.Equal(t, in.Args[1], out.Args[1])
}

func TestRoundTripShortOneArgNegative(t *testing.T) {
	in := Instruction{Op: OpNegR, Args: []Arg{{AddrLocal, -12345}}}
	words, err := Encode(in)
	require.NoError(t, err)

	out, _, err := Decode(words, 0)
	require.NoError(t, err)
	require.Len(t, out.Args, 1)
	assert.Equal(t, int32(-12345), out.Args[0].Value)
}

func TestRoundTripLongTwoArgPreservesFullRange(t *testing.T) {
	in := Instruction{Op: OpMulI, Args: []Arg{{AddrImmediate, 1 << 20}, {AddrLocal, -70000}}}
	words, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, words, 4)

	out, next, err := Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, len(words), next)
	assert.Equal(t, in.Args, out.Args)
}

func TestRoundTripWithDataPayload(t *testing.T) {
	in := Instruction{Op: OpRet, Data: []byte("hello, box")}
	words, err := Encode(in)
	require.NoError(t, err)

	out, next, err := Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, len(words), next)
	// data is word-padded; the decoded payload must contain the original bytes
	// as a prefix.
	require.GreaterOrEqual(t, len(out.Data), len(in.Data))
	assert.Equal(t, in.Data, out.Data[:len(in.Data)])
}

func TestTwoArgWithDataForcesLongForm(t *testing.T) {
	in := Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1}, {AddrLocal, 2}}, Data: []byte{1, 2, 3, 4}}
	words, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), words[0]&1, "data forces a 2-arg instruction long even with byte-sized args")
}

func TestEncodeWrongArgCountIsError(t *testing.T) {
	_, err := Encode(Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1}}})
	assert.Error(t, err)
}

func TestDecodeUnknownOpcodeReportsOneWordRecovery(t *testing.T) {
	// A complete one-word short-form header (length 1) whose opcode id, 255,
	// is not in the catalogue.
	garbage := []uint32{0x0000FF20}
	_, next, err := Decode(garbage, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, next, "an unknown opcode advances by exactly one word so a scanner can resynchronize")
}

func TestMultipleInstructionsChainByReturnedOffset(t *testing.T) {
	i1 := Instruction{Op: OpIncI, Args: []Arg{{AddrLocal, 1}}}
	i2 := Instruction{Op: OpRet}
	w1, err := Encode(i1)
	require.NoError(t, err)
	w2, err := Encode(i2)
	require.NoError(t, err)

	words := append(append([]uint32{}, w1...), w2...)
	out1, next, err := Decode(words, 0)
	require.NoError(t, err)
	assert.Equal(t, OpIncI, out1.Op)

	out2, next2, err := Decode(words, next)
	require.NoError(t, err)
	assert.Equal(t, OpRet, out2.Op)
	assert.Equal(t, len(words), next2)
}

func TestDisassembleRendersMnemonicAndArgs(t *testing.T) {
	in := Instruction{Op: OpAddI, Args: []Arg{{AddrLocal, 1}, {AddrGlobal, 2}}}
	words, err := Encode(in)
	require.NoError(t, err)

	dis := &Disassembler{}
	lines, err := dis.Disassemble(words)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "add")
	assert.Contains(t, lines[0], "rI1")
	assert.Contains(t, lines[0], "grI2")
}

func TestDisassembleCallPrintsResolvedName(t *testing.T) {
	in := Instruction{Op: OpCall, Args: []Arg{{AddrImmediate, 7}}}
	words, err := Encode(in)
	require.NoError(t, err)

	dis := &Disassembler{CallName: func(n int32) string {
		if n == 7 {
			return "draw_line"
		}
		return ""
	}}
	lines, err := dis.Disassemble(words)
	require.NoError(t, err)
	assert.Contains(t, lines[0], "draw_line")
}

func TestDescribeOutOfRangeReturnsZeroValue(t *testing.T) {
	d := Describe(Opcode(99999))
	assert.Equal(t, "", d.Name)
}
