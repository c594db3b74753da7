// Package config holds the small amount of ambient, non-persisted configuration
// a compilation session carries: a correlation identifier for log/diagnostic
// messages, and the a handful of process-level knobs that mirror the teacher's
// CLI surface (verbosity, force-execute). None of this is written to disk —
// spec.md §6: "Persisted state: None in the core."
package config

import "github.com/google/uuid"

// Session identifies one CLI invocation for log correlation. Grounded on the
// teacher's ModuleLoader, which keys its cache by resolved path per loaded
// program; here it is a single opaque id that cmd/box generates once per
// process and puts into its fatal diagnostics. TypeSystem and diag.Sink do
// not carry it.
type Session struct {
	ID uuid.UUID

	// Verbose selects how much the CLI surface (cmd/box) logs; the core itself
	// does not branch on this, it is read by the ambient layer only.
	Verbose bool

	// ForceExecute mirrors spec.md §6's "force-execute: run despite warnings."
	ForceExecute bool

	// TestOnly mirrors spec.md §6's "test-only (compile but do not run)."
	TestOnly bool
}

// NewSession creates a session with a fresh correlation id.
func NewSession() *Session {
	return &Session{ID: uuid.New()}
}
