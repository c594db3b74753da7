// Package boxerr defines the error categories used across the core: duplicate
// symbol names, type-comparison incompatibility, out-of-range slots, release of
// a non-occupied slot, and the other failure categories spec.md §7 asks for.
//
// Modeled on sentra/internal/errors.SentraError (a category + message + optional
// source location), but wraps with github.com/pkg/errors at component boundaries
// so a failure raised deep inside, say, the type system keeps a stack trace when
// it surfaces through the symbol table or the VM.
package boxerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category classifies the failure categories spec.md §7 calls out by name.
type Category string

const (
	DuplicateSymbol       Category = "DuplicateSymbol"
	SymbolRedefinition    Category = "SymbolRedefinition"
	UnresolvedReference   Category = "UnresolvedReference"
	TypeIncompatible      Category = "TypeIncompatible"
	SlotOutOfRange        Category = "SlotOutOfRange"
	SlotNotOccupied       Category = "SlotNotOccupied"
	UnknownOpcode         Category = "UnknownOpcode"
	WriterOverflow        Category = "WriterOverflow"
	ReaderTruncated       Category = "ReaderTruncated"
	UndefinedProcedure    Category = "UndefinedProcedure"
	DivisionByZero        Category = "DivisionByZero"
	Internal              Category = "Internal"
)

// Error carries a category alongside the wrapped cause so callers can branch on
// failure kind (as spec.md §7 requires: "distinct messages").
type Error struct {
	Category Category
	cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a categorized error from a format string, with a stack trace
// attached at the point of creation.
func New(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, cause: errors.Errorf(format, args...)}
}

// Wrap attaches a category and a new stack trace (errors.Wrap records one even
// when err already carries its own) while preserving the original error for
// errors.Is/As.
func Wrap(cat Category, err error, msg string) *Error {
	return &Error{Category: cat, cause: errors.Wrap(err, msg)}
}

// Is reports whether err is a boxerr.Error of the given category.
func Is(err error, cat Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == cat
	}
	return false
}
