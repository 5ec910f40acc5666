package binfmt

import (
	"debug/gosym"
	"debug/pe"
	"io"

	"github.com/han-qiu/bloaty/graph"
)

func loadPE(r io.ReaderAt, sink graph.Sink) error {
	f, err := pe.NewFile(r)
	if err != nil {
		return err
	}
	defer f.Close()

	imageBase := peImageBase(f)

	for _, sec := range f.Sections {
		if sec.VirtualAddress == 0 {
			continue
		}
		sink.AddFileMapping(imageBase+uint64(sec.VirtualAddress), uint64(sec.Offset), uint64(sec.Size))
	}

	syms := f.Symbols
	for _, sym := range syms {
		if sym.Name == "" || sym.Value == 0 {
			continue
		}
		sec := peSectionOf(f, int(sym.SectionNumber))
		if sec == nil {
			continue
		}
		addr := imageBase + uint64(sec.VirtualAddress) + uint64(sym.Value)
		isData := sec.Characteristics&0x00000020 == 0 // IMAGE_SCN_CNT_CODE unset
		size := uint64(sec.Size)
		if size == 0 {
			continue
		}
		sink.AddObject(sym.Name, addr, size, isData)
	}

	if entry, ok := peEntry(f, imageBase); ok {
		if sym := sink.FindObjectByAddr(entry); sym != nil {
			sink.SetEntryPoint(sym)
		}
	}

	attributeGoFilesPE(f, imageBase, sink)

	return nil
}

func peSectionOf(f *pe.File, sectionNumber int) *pe.Section {
	if sectionNumber <= 0 || sectionNumber > len(f.Sections) {
		return nil
	}
	return f.Sections[sectionNumber-1]
}

func peImageBase(f *pe.File) uint64 {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		return oh.ImageBase
	}
	return 0
}

func peEntry(f *pe.File, imageBase uint64) (uint64, bool) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return imageBase + uint64(oh.AddressOfEntryPoint), true
	case *pe.OptionalHeader64:
		return imageBase + uint64(oh.AddressOfEntryPoint), true
	}
	return 0, false
}

func attributeGoFilesPE(f *pe.File, imageBase uint64, sink graph.Sink) {
	var pclntabData []byte
	var textAddr uint64
	for _, sec := range f.Sections {
		if sec.Name == ".gopclntab" {
			data, err := sec.Data()
			if err == nil {
				pclntabData = data
			}
		}
		if sec.Name == ".text" {
			textAddr = imageBase + uint64(sec.VirtualAddress)
		}
	}
	if pclntabData == nil {
		return
	}

	prog, ok := sink.(fileAttributor)
	if !ok {
		return
	}

	pcln := gosym.NewLineTable(pclntabData, textAddr)
	var symtabData []byte
	for _, sec := range f.Sections {
		if sec.Name == ".gosymtab" {
			symtabData, _ = sec.Data()
			break
		}
	}
	table, err := gosym.NewTable(symtabData, pcln)
	if err != nil {
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
