package graph

// Sink is the only surface external container parsers (package binfmt, or
// any future parser) may use to populate a Program. It exists so the
// internal Program representation can evolve without touching parsers.
type Sink interface {
	AddObject(name string, addr, size uint64, isData bool) *Symbol
	FindObjectByName(name string) *Symbol
	FindObjectByAddr(addr uint64) *Symbol
	AddRef(from, to *Symbol)
	SetEntryPoint(sym *Symbol)
	AddFileMapping(vmaddr, fileoff, filesize uint64)
}

var _ Sink = (*Program)(nil)
