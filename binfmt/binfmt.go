// Package binfmt parses ELF, Mach-O, and PE executables and feeds their
// symbols, segment layout, and entry point into a graph.Sink. It mirrors
// the retrieved gobinsize tool's try-ELF-then-Mach-O-then-PE dispatch.
package binfmt

import (
	"fmt"
	"io"
	"os"

	"github.com/han-qiu/bloaty/demangle"
	"github.com/han-qiu/bloaty/graph"
)

// Load opens path and parses it as whichever of ELF, Mach-O, or PE
// recognizes its magic bytes, populating a fresh graph.Program. name, if
// non-empty, enables verbose tracing for the symbol with that name.
func Load(path string, name string) (*graph.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("binfmt: opening %q: %w", path, err)
	}
	defer f.Close()

	var trace *graph.Trace
	if name != "" {
		trace = &graph.Trace{Name: name, Log: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}}
	}

	p := graph.NewProgram(demangle.New(false), trace)

	if err := loadELF(f, p); err == nil {
		return p, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := loadMachO(f, p); err == nil {
		return p, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := loadPE(f, p); err == nil {
		return p, nil
	}

	return nil, fmt.Errorf("binfmt: %q is not a recognized ELF, Mach-O, or PE binary", path)
}
