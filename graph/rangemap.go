package graph

import "sort"

// RangeMap is an address-keyed interval container: it stores
// [addr, addr+size) -> V and answers point lookups in O(log n). It is built
// once (during parsing) and queried many times (during vtable scanning and
// reference resolution), so a sorted slice with binary search is preferred
// over a balanced tree.
type RangeMap[V any] struct {
	entries []rangeEntry[V]
	sorted  bool
}

type rangeEntry[V any] struct {
	addr uint64
	size uint64
	val  V
}

// NewRangeMap returns an empty RangeMap.
func NewRangeMap[V any]() *RangeMap[V] {
	return &RangeMap[V]{}
}

// Add inserts [addr, addr+size) -> val. If it overlaps a previously
// inserted range, the new insertion wins at its own start key
// (last-writer-wins); the spec calls this acceptable because parsers are
// not expected to emit overlapping ranges.
func (m *RangeMap[V]) Add(addr, size uint64, val V) {
	m.entries = append(m.entries, rangeEntry[V]{addr, size, val})
	m.sorted = false
}

// TryGet looks up the value whose interval contains addr.
func (m *RangeMap[V]) TryGet(addr uint64) (V, bool) {
	m.ensureSorted()
	var zero V
	if len(m.entries) == 0 {
		return zero, false
	}
	// Find the greatest key <= addr.
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].addr > addr
	}) - 1
	if i < 0 {
		return zero, false
	}
	e := m.entries[i]
	if addr < e.addr+e.size {
		return e.val, true
	}
	return zero, false
}

// Get looks up the value whose interval contains addr, terminating the
// process with a diagnostic on miss. Fatal lookups belong to callers that
// have already established the address must resolve (see spec §7).
func (m *RangeMap[V]) Get(addr uint64) V {
	v, ok := m.TryGet(addr)
	if !ok {
		panic(fatalf("range map: no entry contains address 0x%x", addr))
	}
	return v
}

// ensureSorted sorts entries by start address, keeping insertion order
// stable among equal keys, then collapses duplicate start addresses down
// to the most recently inserted one (last-writer-wins).
func (m *RangeMap[V]) ensureSorted() {
	if m.sorted {
		return
	}
	sort.SliceStable(m.entries, func(i, j int) bool { return m.entries[i].addr < m.entries[j].addr })

	deduped := m.entries[:0:0]
	for i, e := range m.entries {
		if i+1 < len(m.entries) && m.entries[i+1].addr == e.addr {
			continue // a later entry with the same start address wins
		}
		deduped = append(deduped, e)
	}
	m.entries = deduped
	m.sorted = true
}
