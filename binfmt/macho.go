package binfmt

import (
	"debug/gosym"
	"debug/macho"
	"encoding/binary"
	"io"

	"github.com/han-qiu/bloaty/graph"
)

func loadMachO(r io.ReaderAt, sink graph.Sink) error {
	f, err := macho.NewFile(r)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sec := range f.Sections {
		if sec.Addr == 0 {
			continue
		}
		sink.AddFileMapping(sec.Addr, uint64(sec.Offset), uint64(sec.Size))
	}

	if f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			if sym.Name == "" || sym.Value == 0 {
				continue
			}
			size, isData := sizeAndKind(f, sym.Value)
			if size == 0 {
				continue
			}
			sink.AddObject(sym.Name, sym.Value, size, isData)
		}
	}

	if entry, ok := machoEntry(f); ok {
		if sym := sink.FindObjectByAddr(entry); sym != nil {
			sink.SetEntryPoint(sym)
		}
	}

	attributeGoFilesMachO(f, sink)

	return nil
}

// sizeAndKind approximates a symbol's size as the distance to the next
// known section boundary, and its data/code kind from the owning
// section's segment/name; debug/macho does not report symbol sizes
// directly and exposes no named section-attribute constants, so code vs.
// data is inferred from the __TEXT,__text convention instead.
func sizeAndKind(f *macho.File, addr uint64) (size uint64, isData bool) {
	for _, sec := range f.Sections {
		if addr < sec.Addr || addr >= sec.Addr+sec.Size {
			continue
		}
		isData = !(sec.Seg == "__TEXT" && sec.Name == "__text")
		return sec.Size - (addr - sec.Addr), isData
	}
	return 0, false
}

// machoEntry recovers the entry point from an LC_UNIXTHREAD load command's
// raw register dump. debug/macho decodes no load command type for
// LC_UNIXTHREAD (or the newer LC_MAIN); both surface only as the
// package's generic LoadBytes, so the thread_command header and register
// array are decoded here by hand. Binaries linked with LC_MAIN instead are
// left with no entry point rather than guessing at its layout; the CLI
// then stops with a missing-entry-point error for those inputs.
func machoEntry(f *macho.File) (uint64, bool) {
	for _, l := range f.Loads {
		raw, ok := l.(macho.LoadBytes)
		if !ok {
			continue
		}
		if entry, ok := unixThreadEntry(f.ByteOrder, f.Cpu, raw.Raw()); ok {
			return entry, true
		}
	}
	return 0, false
}

// unixThreadEntry decodes an LC_UNIXTHREAD command's raw bytes:
// an 8-byte cmd/cmdsize header, a 4-byte flavor, a 4-byte register count,
// then the flavor-specific register state. Only the two register layouts
// debug/macho's own doc comments name are handled; the program counter's
// index within the register array is fixed by those layouts.
func unixThreadEntry(order binary.ByteOrder, cpu macho.Cpu, raw []byte) (uint64, bool) {
	const headerSize = 16 // cmd, cmdsize, flavor, count
	if len(raw) < headerSize {
		return 0, false
	}
	cmd := macho.LoadCmd(order.Uint32(raw[0:4]))
	if cmd != macho.LoadCmdUnixThread {
		return 0, false
	}
	regs := raw[headerSize:]

	switch cpu {
	case macho.CpuAmd64:
		const ripIndex = 16 // x86_thread_state64_t.__rip, 8-byte registers
		off := ripIndex * 8
		if off+8 > len(regs) {
			return 0, false
		}
		return order.Uint64(regs[off : off+8]), true
	case macho.Cpu386:
		const eipIndex = 10 // i386_thread_state_t.__eip, 4-byte registers
		off := eipIndex * 4
		if off+4 > len(regs) {
			return 0, false
		}
		return uint64(order.Uint32(regs[off : off+4])), true
	}
	return 0, false
}

func attributeGoFilesMachO(f *macho.File, sink graph.Sink) {
	var pclntabData []byte
	var textAddr uint64
	for _, sec := range f.Sections {
		if sec.Name == "__gopclntab" {
			data, err := sec.Data()
			if err == nil {
				pclntabData = data
			}
		}
		if sec.Name == "__text" {
			textAddr = sec.Addr
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
		if sec.Name == "__gosymtab" {
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
