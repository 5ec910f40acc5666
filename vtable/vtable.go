// Package vtable synthesizes reference edges from raw data bytes: it reads
// each data symbol's bytes as a sequence of pointer-sized words and, for
// every word that resolves to a known symbol's address, records an edge.
// This recovers virtual-dispatch call graphs that a relocation-based
// parser alone would miss, since a vtable slot is just a plain pointer
// value sitting in a data section.
package vtable

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/han-qiu/bloaty/graph"
)

// DefaultPointerSize is the pointer width assumed when Options.PointerSize
// is left zero.
const DefaultPointerSize = 8

// Options configures a scan. PointerSize and ByteOrder default to 8 and
// binary.NativeEndian (the host's byte order, little-endian in the
// overwhelmingly common case of ELF/Mach-O/PE on x86-64 or arm64 hosts);
// both are exposed because
// the binary being analyzed need not match the host doing the analysis.
type Options struct {
	PointerSize int
	ByteOrder   binary.ByteOrder
}

func (o Options) pointerSize() int {
	if o.PointerSize <= 0 {
		return DefaultPointerSize
	}
	return o.PointerSize
}

func (o Options) byteOrder() binary.ByteOrder {
	if o.ByteOrder == nil {
		return binary.NativeEndian
	}
	return o.ByteOrder
}

// Scan walks every data symbol in p, reads its bytes from r at the file
// offset recorded by AddFileMapping, and adds an edge for each word that
// resolves to a known symbol's address. It must run after all symbols and
// file mappings have been added, and before dominators are computed.
func Scan(r io.ReaderAt, p *graph.Program, opts Options) error {
	pointerSize := opts.pointerSize()
	order := opts.byteOrder()

	// ForEachSymbol holds Program's read lock for the callback's duration;
	// scanSymbol calls TryAddRef, which needs the write lock. Snapshotting
	// the candidates first and scanning after ForEachSymbol has returned
	// avoids taking the write lock while the read lock is still held.
	var candidates []*graph.Symbol
	p.ForEachSymbol(func(sym *graph.Symbol) {
		if sym.IsData && sym.Size >= uint64(pointerSize) {
			candidates = append(candidates, sym)
		}
	})

	trace := p.Trace()
	for _, sym := range candidates {
		if err := scanSymbol(r, p, sym, pointerSize, order, trace); err != nil {
			return fmt.Errorf("vtable: scanning %q: %w", sym.Name, err)
		}
	}
	return nil
}

func scanSymbol(r io.ReaderAt, p *graph.Program, sym *graph.Symbol, pointerSize int, order binary.ByteOrder, trace *graph.Trace) error {
	fileoff, ok := p.TryFileOffset(sym.Addr)
	if !ok {
		return nil
	}
	traced := trace.Matches(sym.Name)

	numWords := int(sym.Size) / pointerSize
	buf := make([]byte, pointerSize)
	for i := 0; i < numWords; i++ {
		off := int64(fileoff) + int64(i*pointerSize)
		if _, err := r.ReadAt(buf, off); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		word := readWord(buf, order)
		if traced {
			trace.Logf("vtable_scan: name=%q word=%d file_off=0x%x value=0x%x", sym.Name, i, off, word)
		}
		p.TryAddRef(sym, word)
	}
	return nil
}

func readWord(buf []byte, order binary.ByteOrder) uint64 {
	switch len(buf) {
	case 4:
		return uint64(order.Uint32(buf))
	default:
		return order.Uint64(buf)
	}
}
