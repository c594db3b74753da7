// Package diag implements the three-severity message stack of spec.md §7:
// advice/warning (does not affect control flow), recoverable error (the caller
// decides whether to continue), and fatal (invokes an installed handler that
// must not return).
//
// Grounded on box/src/messages.c and box/src/msgbase.c, which define exactly
// this severity stack for the Box compiler, and on the accumulate-without-abort
// pattern of sentra/internal/compregister.Compiler.errors (a plain slice of
// errors collected across a whole compilation rather than aborting at the
// first one).
package diag

import (
	"fmt"

	"box/internal/boxerr"
)

// Severity is one of the three levels spec.md §7 names.
type Severity int

const (
	Advice Severity = iota
	Recoverable
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Advice:
		return "advice"
	case Recoverable:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Location is an optional source position attached to a Message.
type Location struct {
	File   string
	Line   int
	Column int
}

// Message is one entry on the sink.
type Message struct {
	Severity Severity
	Category boxerr.Category
	Text     string
	Location Location
}

func (m Message) String() string {
	if m.Location.File == "" {
		return fmt.Sprintf("[%s] %s: %s", m.Severity, m.Category, m.Text)
	}
	return fmt.Sprintf("[%s] %s:%d:%d: %s: %s", m.Severity, m.Location.File,
		m.Location.Line, m.Location.Column, m.Category, m.Text)
}

// FatalHandler is invoked on a Fatal message and, by contract, must not return
// (spec.md §5: "a fatal error aborts the pipeline via an installable fatal
// handler callback"). The default handler panics, which is appropriate for a
// library: callers that want process-level termination install one that calls
// os.Exit or unwinds to their own top-level recovery.
type FatalHandler func(Message)

// Sink collects diagnostics across a compilation. It does not itself stop
// work on a Recoverable error — spec.md §7: "the compiler typically continues
// to gather more diagnostics but will not execute code if any error is
// present, absent force-execute." Callers consult HasErrors to make that call.
type Sink struct {
	messages []Message
	onFatal  FatalHandler
}

// NewSink creates a sink. If onFatal is nil, Fatal panics with the message.
func NewSink(onFatal FatalHandler) *Sink {
	if onFatal == nil {
		onFatal = func(m Message) { panic(m.String()) }
	}
	return &Sink{onFatal: onFatal}
}

func (s *Sink) Advice(cat boxerr.Category, format string, args ...any) {
	s.messages = append(s.messages, Message{Severity: Advice, Category: cat, Text: fmt.Sprintf(format, args...)})
}

func (s *Sink) Error(cat boxerr.Category, format string, args ...any) {
	s.messages = append(s.messages, Message{Severity: Recoverable, Category: cat, Text: fmt.Sprintf(format, args...)})
}

// Fatal records the message and invokes the installed fatal handler. Per
// contract the handler must not return; if it does (a caller bug), Fatal
// panics rather than letting compilation silently continue past a fatal error.
func (s *Sink) Fatal(cat boxerr.Category, format string, args ...any) {
	m := Message{Severity: Fatal, Category: cat, Text: fmt.Sprintf(format, args...)}
	s.messages = append(s.messages, m)
	s.onFatal(m)
	panic("diag: fatal handler returned, which violates its contract: " + m.String())
}

// HasErrors reports whether any Recoverable or Fatal message was recorded.
func (s *Sink) HasErrors() bool {
	for _, m := range s.messages {
		if m.Severity != Advice {
			return true
		}
	}
	return false
}

// Messages returns all recorded diagnostics in emission order.
func (s *Sink) Messages() []Message {
	return s.messages
}
