// Package demangle adapts github.com/ianlancetaylor/demangle to the narrow
// graph.Demangler interface, so the program model has no compile-time
// dependency on the concrete demangling library.
package demangle

import gcpp "github.com/ianlancetaylor/demangle"

// Demangler demangles Itanium C++ and Rust mangled names in-process (no
// child process, unlike a c++filt pipe). A zero Demangler is ready to use.
type Demangler struct {
	opts []gcpp.Option
}

// New returns a Demangler. full selects the fully-qualified form (template
// arguments and parameter types included); otherwise clone suffixes such as
// ".constprop.0" are still stripped, matching how the retrieved reference
// material's simplified mode behaves.
func New(full bool) *Demangler {
	if full {
		return &Demangler{opts: []gcpp.Option{gcpp.NoClones}}
	}
	return &Demangler{opts: []gcpp.Option{gcpp.NoClones, gcpp.NoTemplateParams}}
}

// Demangle returns name demangled, or name unchanged if the library doesn't
// recognize it as a mangled symbol.
func (d *Demangler) Demangle(name string) string {
	return gcpp.Filter(name, d.opts...)
}

// Close releases resources held by the demangler. The in-process filter
// holds none, so this is a no-op; it exists so a future child-process- or
// cgo-backed demangler can be swapped in without changing callers.
func (d *Demangler) Close() error { return nil }
