package instr

import "box/internal/boxerr"

// format selects between the two instruction encodings spec.md's §4.4
// prescribes.
type format int

const (
	formatShort format = iota
	formatLong
)

// packModes packs up to two 2-bit addressing modes into a 4-bit nibble, low
// arg first, matching the short and long header's "arg-format nibble" field.
func packModes(args []Arg) uint32 {
	var nibble uint32
	if len(args) > 0 {
		nibble |= uint32(args[0].Mode) & 0x3
	}
	if len(args) > 1 {
		nibble |= (uint32(args[1].Mode) & 0x3) << 2
	}
	return nibble
}

func unpackModes(nibble uint32) [2]AddrMode {
	return [2]AddrMode{
		AddrMode(nibble & 0x3),
		AddrMode((nibble >> 2) & 0x3),
	}
}

// packData packs a byte payload into little-endian, zero-padded words.
func packData(data []byte) []uint32 {
	words := make([]uint32, ceilWords(len(data)))
	for i, b := range data {
		words[i/4] |= uint32(b) << uint((i%4)*8)
	}
	return words
}

// unpackData is the inverse of packData. The returned slice is always a
// whole number of words (4 bytes) long; data that isn't itself a multiple of
// 4 bytes must be self-delimiting (length-prefixed or null-terminated) for a
// reader to know where the real payload ends within the last word.
func unpackData(words []uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		data[i*4+0] = byte(w)
		data[i*4+1] = byte(w >> 8)
		data[i*4+2] = byte(w >> 16)
		data[i*4+3] = byte(w >> 24)
	}
	return data
}

// chooseFormat implements the format=undecided rule: a 2-argument
// instruction goes short only if both arguments fit a signed byte and it
// carries no data; a 1-argument instruction goes short if its argument fits
// a signed 16-bit word (the short form folds both byte slots into one field
// when there's only one argument to hold); a 0-argument instruction is
// always eligible, data payload included, as long as the resulting length
// still fits the short header's 3-bit length field.
func chooseFormat(args []Arg, dataWords int) format {
	switch len(args) {
	case 2:
		if dataWords == 0 && fitsSigned8(args[0].Value) && fitsSigned8(args[1].Value) && 1+dataWords <= 7 {
			return formatShort
		}
	case 1:
		if fitsSigned16(args[0].Value) && 1+dataWords <= 7 {
			return formatShort
		}
	case 0:
		if 1+dataWords <= 7 {
			return formatShort
		}
	}
	return formatLong
}

// Encode renders one instruction to its word sequence, choosing the short or
// long form per chooseFormat.
func Encode(in Instruction) ([]uint32, error) {
	d := Describe(in.Op)
	if d.Name == "" {
		return nil, boxerr.New(boxerr.UnknownOpcode, "instr: cannot encode unknown opcode %d", in.Op)
	}
	if len(in.Args) != d.NumArgs {
		return nil, boxerr.New(boxerr.UnknownOpcode,
			"instr: %s takes %d argument(s), got %d", d.Name, d.NumArgs, len(in.Args))
	}

	dataWords := packData(in.Data)
	if !in.ForceLong && chooseFormat(in.Args, len(dataWords)) == formatShort {
		return encodeShort(in, dataWords), nil
	}
	return encodeLong(in, dataWords), nil
}

func encodeShort(in Instruction, dataWords []uint32) []uint32 {
	length := 1 + len(dataWords)
	word0 := packModes(in.Args) << 1
	word0 |= uint32(length&0x7) << 5
	word0 |= uint32(in.Op&0xFF) << 8

	switch len(in.Args) {
	case 2:
		b0 := uint32(uint8(int8(in.Args[0].Value)))
		b1 := uint32(uint8(int8(in.Args[1].Value)))
		word0 |= b0 << 16
		word0 |= b1 << 24
	case 1:
		v := uint32(uint16(int16(in.Args[0].Value)))
		word0 |= v << 16
	}

	words := make([]uint32, 0, length)
	words = append(words, word0)
	words = append(words, dataWords...)
	return words
}

func encodeLong(in Instruction, dataWords []uint32) []uint32 {
	length := 2 + len(in.Args) + len(dataWords)
	word0 := uint32(1) // long marker
	word0 |= packModes(in.Args) << 1
	word0 |= uint32(length&0x7FFFFFF) << 5

	words := make([]uint32, 0, length)
	words = append(words, word0, uint32(in.Op))
	for _, a := range in.Args {
		words = append(words, uint32(a.Value))
	}
	words = append(words, dataWords...)
	return words
}

// Decode reads one instruction starting at words[off]. It returns the
// decoded instruction and the offset of the next instruction. An unknown
// opcode is reported as an error together with a 1-word recovery offset, so
// a disassembler scanning raw bytes can resynchronize instead of stalling.
func Decode(words []uint32, off int) (Instruction, int, error) {
	if off < 0 || off >= len(words) {
		return Instruction{}, off, boxerr.New(boxerr.ReaderTruncated, "instr: decode offset %d out of range", off)
	}
	word0 := words[off]
	modes := unpackModes((word0 >> 1) & 0xF)

	if word0&1 == 0 {
		return decodeShort(words, off, word0, modes)
	}
	return decodeLong(words, off, word0, modes)
}

func decodeShort(words []uint32, off int, word0 uint32, modes [2]AddrMode) (Instruction, int, error) {
	length := int((word0 >> 5) & 0x7)
	op := Opcode((word0 >> 8) & 0xFF)
	d := Describe(op)
	if d.Name == "" {
		return Instruction{}, off + 1, boxerr.New(boxerr.UnknownOpcode, "instr: unknown opcode id %d at word %d", op, off)
	}
	if off+length > len(words) {
		return Instruction{}, off + 1, boxerr.New(boxerr.ReaderTruncated, "instr: truncated instruction at word %d", off)
	}

	argbits := word0 >> 16
	var args []Arg
	switch d.NumArgs {
	case 2:
		args = []Arg{
			{modes[0], int32(int8(argbits & 0xFF))},
			{modes[1], int32(int8((argbits >> 8) & 0xFF))},
		}
	case 1:
		args = []Arg{{modes[0], int32(int16(argbits & 0xFFFF))}}
	}

	data := unpackData(words[off+1 : off+length])
	return Instruction{Op: op, Args: args, Data: data}, off + length, nil
}

func decodeLong(words []uint32, off int, word0 uint32, modes [2]AddrMode) (Instruction, int, error) {
	length := int(word0 >> 5)
	if off+1 >= len(words) || off+length > len(words) {
		return Instruction{}, off + 1, boxerr.New(boxerr.ReaderTruncated, "instr: truncated long instruction at word %d", off)
	}
	op := Opcode(words[off+1])
	d := Describe(op)
	if d.Name == "" {
		return Instruction{}, off + 1, boxerr.New(boxerr.UnknownOpcode, "instr: unknown opcode id %d at word %d", op, off)
	}

	idx := off + 2
	var args []Arg
	for i := 0; i < d.NumArgs; i++ {
		args = append(args, Arg{modes[i], int32(words[idx])})
		idx++
	}

	data := unpackData(words[idx:off+length])
	return Instruction{Op: op, Args: args, Data: data}, off + length, nil
}
