// cmd/box/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"box/internal/boxerr"
	"box/internal/config"
	"box/internal/diag"
)

const version = "0.1.0"

// commandAliases mirrors a short-alias table so `box r` behaves like `box run`.
var commandAliases = map[string]string{
	"r": "run",
	"d": "disasm",
}

// newCLISink builds the diagnostic sink the CLI drives everything through.
// Its FatalHandler is the "process-level termination" case diag.FatalHandler's
// doc comment calls out explicitly: print the message and exit, rather than
// the library default of panicking.
func newCLISink() *diag.Sink {
	return diag.NewSink(func(m diag.Message) {
		fmt.Fprintf(os.Stderr, "box: %s\n", m)
		os.Exit(1)
	})
}

func main() {
	session := config.NewSession()
	sink := newCLISink()

	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "-help", "--help", "-h", "help":
		showUsage()
	case "-v", "-version", "--version", "version":
		fmt.Printf("box %s\n", version)
	case "run":
		runDemo(session, sink, args[1:])
	case "disasm":
		disasmDemo(session, sink, args[1:])
	default:
		sink.Advice(boxerr.UnknownOpcode, "unknown command %q", args[0])
		fmt.Fprintf(os.Stderr, "box: unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func runDemo(session *config.Session, sink *diag.Sink, args []string) {
	for _, a := range args {
		switch a {
		case "-v", "-verbose":
			session.Verbose = true
		case "-test":
			session.TestOnly = true
		case "-force":
			session.ForceExecute = true
		}
	}

	// §6's "test-only: compile but do not run" — disassemble instead of
	// executing.
	if session.TestOnly {
		disasmDemo(session, sink, nil)
		return
	}

	// §6's "force-execute: run despite warnings" — a sink carrying any
	// accumulated diagnostic refuses to run unless ForceExecute overrides it.
	if sink.HasErrors() && !session.ForceExecute {
		sink.Fatal(boxerr.Internal, "session %s: refusing to run with outstanding diagnostics (use -force to override)", session.ID)
		return
	}

	if session.Verbose {
		fmt.Fprint(os.Stderr, DemoProcTable().DebugDump())
	}

	result, err := RunDemo(session.Verbose)
	if err != nil {
		sink.Fatal(categoryOf(err), "session %s: %v", session.ID, err)
		return
	}
	fmt.Printf("result: %d\n", result)
}

func disasmDemo(session *config.Session, sink *diag.Sink, args []string) {
	lines, err := DisassembleDemo()
	if err != nil {
		sink.Fatal(categoryOf(err), "session %s: %v", session.ID, err)
		return
	}
	fmt.Println(strings.Join(lines, "\n"))
}

// categoryOf recovers the boxerr.Category a VM/symtab failure was raised
// with, so the CLI's fatal diagnostic carries the same category the
// component that detected it used, rather than a generic one.
func categoryOf(err error) boxerr.Category {
	if be, ok := err.(*boxerr.Error); ok {
		return be.Category
	}
	return boxerr.Internal
}

func showUsage() {
	fmt.Println("box - a compact statically-typed-core virtual machine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  box run [-v|-verbose] [-test] [-force]")
	fmt.Println("                            Assemble and run the built-in demo program  (alias: r)")
	fmt.Println("                            -test disassembles instead of running; -force runs")
	fmt.Println("                            despite outstanding diagnostics")
	fmt.Println("  box disasm                Disassemble the built-in demo program       (alias: d)")
	fmt.Println("  box version               Show version")
	fmt.Println("  box help                  Show this message")
	fmt.Println()
	fmt.Println("There is no source-level compiler in this build: programs are assembled")
	fmt.Println("directly against internal/instr and internal/symtab, the way demo.go does.")
}
