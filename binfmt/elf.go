package binfmt

import (
	"debug/elf"
	"debug/gosym"
	"io"

	"github.com/han-qiu/bloaty/graph"
)

func loadELF(r io.ReaderAt, sink graph.Sink) error {
	f, err := elf.NewFile(r)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sec := range f.Sections {
		if sec.Addr == 0 || sec.Type == elf.SHT_NOBITS {
			continue
		}
		sink.AddFileMapping(sec.Addr, sec.Offset, sec.Size)
	}

	syms, err := f.Symbols()
	if err != nil {
		// A stripped binary may still be worth analyzing for its section
		// layout; symbols just won't be attributed.
		syms = nil
	}
	for _, sym := range syms {
		if sym.Name == "" || sym.Size == 0 {
			continue
		}
		typ := elf.ST_TYPE(sym.Info)
		if typ != elf.STT_FUNC && typ != elf.STT_OBJECT {
			continue
		}
		isData := typ == elf.STT_OBJECT
		sink.AddObject(sym.Name, sym.Value, sym.Size, isData)
	}

	if f.Entry != 0 {
		if entry := sink.FindObjectByAddr(f.Entry); entry != nil {
			sink.SetEntryPoint(entry)
		}
	}

	attributeGoFiles(f, sink)

	return nil
}

// attributeGoFiles opportunistically recovers per-symbol source-file
// provenance from .gopclntab/.gosymtab, present on Go binaries, following
// the retrieved gobinsize tool's approach.
func attributeGoFiles(f *elf.File, sink graph.Sink) {
	pclntab := f.Section(".gopclntab")
	text := f.Section(".text")
	if pclntab == nil || text == nil {
		return
	}
	pclntabData, err := pclntab.Data()
	if err != nil {
		return
	}

	pcln := gosym.NewLineTable(pclntabData, text.Addr)

	symtab := f.Section(".gosymtab")
	var symtabData []byte
	if symtab != nil {
		symtabData, _ = symtab.Data()
	}
	table, err := gosym.NewTable(symtabData, pcln)
	if err != nil {
		return
	}

	prog, ok := sink.(fileAttributor)
	if !ok {
		return
	}
	for _, fn := range table.Funcs {
		sym := sink.FindObjectByAddr(fn.Entry)
		if sym == nil {
			continue
		}
		file, _, gfn := table.PCToLine(fn.Entry)
		if gfn == nil || file == "" {
			continue
		}
		prog.SetSymbolFile(sym, prog.GetOrCreateFile(file))
	}
}

// fileAttributor is the extra surface (beyond graph.Sink) attributeGoFiles
// needs; graph.Program implements it but the narrow Sink interface doesn't
// expose it, so it's asserted for opportunistically.
type fileAttributor interface {
	GetOrCreateFile(name string) *graph.File
	SetSymbolFile(sym *graph.Symbol, file *graph.File)
}
