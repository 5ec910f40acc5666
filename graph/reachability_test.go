package graph

import "testing"

func TestReachableAndGarbage(t *testing.T) {
	// 1(entry) -> 2 -> 3; 4 unreachable
	p := buildProgram(4, map[SymID][]SymID{1: {2}, 2: {3}}, 1)

	reachable := Reachable(p)
	for _, id := range []SymID{1, 2, 3} {
		if !reachable[id] {
			t.Errorf("symbol %d should be reachable", id)
		}
	}
	if reachable[4] {
		t.Errorf("symbol 4 should not be reachable")
	}

	garbage := Garbage(p)
	if len(garbage) != 1 || garbage[0].ID != 4 {
		t.Errorf("Garbage() = %v, want [symbol 4]", garbage)
	}
}

func TestReachableWithCycle(t *testing.T) {
	p := buildProgram(3, map[SymID][]SymID{1: {2}, 2: {3}, 3: {2}}, 1)

	reachable := Reachable(p)
	for _, id := range []SymID{1, 2, 3} {
		if !reachable[id] {
			t.Errorf("symbol %d should be reachable", id)
		}
	}
	if len(Garbage(p)) != 0 {
		t.Errorf("expected no garbage, got %v", Garbage(p))
	}
}

func TestReachableNoEntry(t *testing.T) {
	p := NewProgram(nil, nil)
	p.AddObject("lonely", 1, 10, false)

	if len(Reachable(p)) != 0 {
		t.Errorf("expected empty reachable set with no entry point")
	}
	garbage := Garbage(p)
	if len(garbage) != 1 {
		t.Errorf("expected the one symbol to be garbage with no entry point, got %v", garbage)
	}
}

func TestReachableFiles(t *testing.T) {
	p := NewProgram(nil, nil)
	a := p.AddObject("a", 1, 10, false)
	b := p.AddObject("b", 2, 10, false)
	c := p.AddObject("c", 3, 10, false)

	fileA := p.GetOrCreateFile("a.cc")
	fileB := p.GetOrCreateFile("b.cc")
	fileC := p.GetOrCreateFile("c.cc")
	p.SetSymbolFile(a, fileA)
	p.SetSymbolFile(b, fileB)
	p.SetSymbolFile(c, fileC)

	p.AddRef(a, b)
	p.SetEntryPoint(a)

	reachableFiles := ReachableFiles(p)
	if !reachableFiles["a.cc"] || !reachableFiles["b.cc"] {
		t.Errorf("ReachableFiles() = %v, want a.cc and b.cc reachable", reachableFiles)
	}
	if reachableFiles["c.cc"] {
		t.Errorf("c.cc should not be reachable")
	}

	garbage := GarbageFiles(p)
	if len(garbage) != 1 || garbage[0].Name != "c.cc" {
		t.Errorf("GarbageFiles() = %v, want [c.cc]", garbage)
	}
}
