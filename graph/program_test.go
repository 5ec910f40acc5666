package graph

import "testing"

type upperDemangler struct{}

func (upperDemangler) Demangle(name string) string { return name }

func TestAddObjectAssignsStableIDs(t *testing.T) {
	p := NewProgram(nil, nil)
	a := p.AddObject("a", 0x1000, 10, false)
	b := p.AddObject("b", 0x2000, 20, false)

	if a.ID == b.ID {
		t.Fatalf("distinct symbols got the same id: %d", a.ID)
	}
	if p.NumSymbols() != 2 {
		t.Errorf("NumSymbols() = %d, want 2", p.NumSymbols())
	}
	if p.TotalSize() != 30 {
		t.Errorf("TotalSize() = %d, want 30", p.TotalSize())
	}
}

func TestAddObjectIdempotentOnName(t *testing.T) {
	p := NewProgram(nil, nil)
	first := p.AddObject("dup", 0x1000, 10, false)
	second := p.AddObject("dup", 0x2000, 999, true)

	if first != second {
		t.Fatalf("AddObject on a duplicate name should return the existing symbol")
	}
	if second.Addr != 0x1000 || second.Size != 10 {
		t.Errorf("second AddObject call mutated the existing symbol: addr=0x%x size=%d", second.Addr, second.Size)
	}
}

func TestPrettyNameCollisionDemotesBoth(t *testing.T) {
	dem := demanglerFunc(func(name string) string {
		switch name {
		case "_ZN3Foo3barEi":
			return "Foo::bar(int)"
		case "_ZN3Foo3barEv":
			return "Foo::bar()"
		}
		return name
	})
	p := NewProgram(dem, nil)

	first := p.AddObject("_ZN3Foo3barEi", 0x1000, 10, false)
	if first.PrettyName != "Foo::bar" {
		t.Fatalf("first claimant PrettyName = %q, want %q", first.PrettyName, "Foo::bar")
	}

	second := p.AddObject("_ZN3Foo3barEv", 0x2000, 10, false)
	if second.PrettyName != second.Demangled {
		t.Errorf("colliding symbol PrettyName = %q, want fully demangled %q", second.PrettyName, second.Demangled)
	}
	if first.PrettyName != first.Demangled {
		t.Errorf("original claimant PrettyName not demoted: got %q, want %q", first.PrettyName, first.Demangled)
	}
}

type demanglerFunc func(string) string

func (f demanglerFunc) Demangle(name string) string { return f(name) }

func TestAddRefDedupesAndTracksFileEdges(t *testing.T) {
	p := NewProgram(nil, nil)
	a := p.AddObject("a", 0x1000, 10, false)
	b := p.AddObject("b", 0x2000, 10, false)

	fileA := p.GetOrCreateFile("a.cc")
	fileB := p.GetOrCreateFile("b.cc")
	p.SetSymbolFile(a, fileA)
	p.SetSymbolFile(b, fileB)

	p.AddRef(a, b)
	p.AddRef(a, b) // duplicate, must not double up

	if len(a.Refs) != 1 || a.Refs[0] != b.ID {
		t.Errorf("a.Refs = %v, want [%d]", a.Refs, b.ID)
	}
	if len(fileA.Refs) != 1 || fileA.Refs[0] != "b.cc" {
		t.Errorf("fileA.Refs = %v, want [b.cc]", fileA.Refs)
	}
}

func TestTryAddRefResolvesByAddress(t *testing.T) {
	p := NewProgram(nil, nil)
	a := p.AddObject("a", 0x1000, 10, false)
	b := p.AddObject("b", 0x2000, 10, false)

	if !p.TryAddRef(a, 0x2004) {
		t.Fatalf("TryAddRef should have resolved 0x2004 to b")
	}
	if len(a.Refs) != 1 || a.Refs[0] != b.ID {
		t.Errorf("a.Refs = %v, want [%d]", a.Refs, b.ID)
	}
	if p.TryAddRef(a, 0xdead) {
		t.Errorf("TryAddRef should miss on an address with no owning symbol")
	}
}

func TestFileOffsetRoundTrip(t *testing.T) {
	p := NewProgram(nil, nil)
	p.AddFileMapping(0x400000, 0x1000, 0x2000)

	off, ok := p.TryFileOffset(0x400100)
	if !ok || off != 0x1100 {
		t.Errorf("TryFileOffset(0x400100) = %d, %v, want 0x1100, true", off, ok)
	}
	if _, ok := p.TryFileOffset(0x600000); ok {
		t.Errorf("TryFileOffset outside any mapping should miss")
	}
}

func TestFindObjectByNameAndAddr(t *testing.T) {
	p := NewProgram(nil, nil)
	a := p.AddObject("a", 0x1000, 0x10, false)

	if p.FindObjectByName("a") != a {
		t.Errorf("FindObjectByName failed to find symbol added earlier")
	}
	if p.FindObjectByName("missing") != nil {
		t.Errorf("FindObjectByName should miss for an unknown name")
	}
	if p.FindObjectByAddr(0x1005) != a {
		t.Errorf("FindObjectByAddr failed to find symbol covering an interior address")
	}
}
