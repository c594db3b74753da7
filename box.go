// Package box implements the compact, statically-typed core of the Box
// language: a type system, a per-frame register/variable allocator, a
// 32-bit instruction codec, a symbol/procedure table, and the VM loop that
// executes assembled procedures against them.
//
// There is no lexer, parser, or source-level compiler here — internal/symtab
// and internal/instr are the assembler surface a front end would drive, and
// cmd/box/demo.go shows a program built directly against that surface.
//
// The five core packages are meant to be read in dependency order:
//
//	internal/pool     slot-reusing indexed pool, the building block under both
//	                   internal/types and internal/regalloc
//	internal/types     type descriptors: size, comparison, resolution, naming
//	internal/regalloc  per-frame register and variable allocation, by class
//	internal/instr     the instruction word format: encode, decode, disassemble
//	internal/symtab    symbols, procedures, labels, and call-number linking
//	internal/vm        the fetch-decode-execute loop tying the above together
package box
