// Package graph implements the analytical core: a symbol/reference graph
// extracted from an executable image, its dominator tree, and the weight
// and reachability computations derived from it.
package graph

// SymID is a stable numeric identifier for a Symbol. Zero is reserved as
// the super-root sentinel used internally by the dominator computation and
// is never assigned to a real symbol.
type SymID uint64

// Symbol is one named entity extracted from the binary: a function or a
// data object (including vtables). Reports call this an "Object".
type Symbol struct {
	ID SymID

	// Name is the original, possibly-mangled name as it appeared in the
	// binary's symbol table. It is the primary key: unique across the
	// Program.
	Name string

	// Demangled is the fully demangled form of Name, or Name unchanged if
	// the demangler didn't recognize it.
	Demangled string

	// PrettyName is Demangled with its parameter list stripped, unless
	// stripping it would collide with another symbol's stripped form, in
	// which case it equals Demangled (see Program.AddObject).
	PrettyName string

	Addr   uint64
	Size   uint64
	IsData bool

	// File is the translation unit that owns this symbol, or nil if the
	// binary carries no debug info for it.
	File *File

	// Refs holds the outgoing reference edges to other symbols, in
	// insertion order with duplicates already collapsed.
	Refs []SymID

	// Weight and MaxWeight are populated by PropagateWeight; both are zero
	// until that pass runs.
	Weight    uint64
	MaxWeight uint64

	refSet map[SymID]bool // de-dupes Refs; nil until first AddRef
}

// hasRef reports whether s already has an edge to target.
func (s *Symbol) hasRef(target SymID) bool {
	return s.refSet != nil && s.refSet[target]
}

// addRef records a new outgoing edge, collapsing duplicates. Returns false
// if the edge already existed.
func (s *Symbol) addRef(target SymID) bool {
	if s.refSet == nil {
		s.refSet = make(map[SymID]bool)
	}
	if s.refSet[target] {
		return false
	}
	s.refSet[target] = true
	s.Refs = append(s.Refs, target)
	return true
}

// File is a source translation unit as reported by debug info.
type File struct {
	Name string

	// Refs holds outgoing file-to-file edges, promoted from the symbol
	// graph whenever both endpoints of a symbol reference have a File.
	Refs []string

	// SourceLineWeight is the sum of sizes of symbols owned by this file.
	SourceLineWeight uint64

	refSet map[string]bool
}

func (f *File) addRef(target string) bool {
	if target == f.Name {
		return false
	}
	if f.refSet == nil {
		f.refSet = make(map[string]bool)
	}
	if f.refSet[target] {
		return false
	}
	f.refSet[target] = true
	f.Refs = append(f.Refs, target)
	return true
}
