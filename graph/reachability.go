package graph

// Reachable returns the set of symbol ids reachable from the program's
// entry point by an explicit-stack DFS over the reference graph. Symbols
// not in this set are dead weight: linked into the binary but never
// referenced from the entry point.
func Reachable(p *Program) map[SymID]bool {
	entry := p.EntryPoint()
	seen := map[SymID]bool{}
	if entry == nil {
		return seen
	}
	seen[entry.ID] = true
	stack := []SymID{entry.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sym := p.Symbol(id)
		if sym == nil {
			continue
		}
		for _, ref := range sym.Refs {
			if !seen[ref] {
				seen[ref] = true
				stack = append(stack, ref)
			}
		}
	}
	return seen
}

// Garbage returns every symbol the program knows about that Reachable did
// not visit: the complement of the reachable set over all symbols.
func Garbage(p *Program) []*Symbol {
	reachable := Reachable(p)
	var dead []*Symbol
	p.ForEachSymbol(func(s *Symbol) {
		if !reachable[s.ID] {
			dead = append(dead, s)
		}
	})
	return dead
}

// ReachableFiles returns the set of file names reachable from the file
// containing the program's entry point, by an explicit-stack DFS over the
// file-level reference edges recorded alongside symbol edges (see
// Program.AddRef). A binary with no source-file information yields an
// empty set.
func ReachableFiles(p *Program) map[string]bool {
	entry := p.EntryPoint()
	seen := map[string]bool{}
	if entry == nil || entry.File == nil {
		return seen
	}
	seen[entry.File.Name] = true
	stack := []string{entry.File.Name}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f := p.File(name)
		if f == nil {
			continue
		}
		for _, ref := range f.Refs {
			if !seen[ref] {
				seen[ref] = true
				stack = append(stack, ref)
			}
		}
	}
	return seen
}

// GarbageFiles returns every file the program knows about that
// ReachableFiles did not visit.
func GarbageFiles(p *Program) []*File {
	reachable := ReachableFiles(p)
	var dead []*File
	p.ForEachFile(func(f *File) {
		if !reachable[f.Name] {
			dead = append(dead, f)
		}
	})
	return dead
}
