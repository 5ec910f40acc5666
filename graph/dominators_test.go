package graph

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"
)

// buildProgram creates a Program with n symbols named "s1".."sn", each of
// size 1, wired according to edges (adjacency by 1-based index), with entry
// as the entry point.
func buildProgram(n int, edges map[SymID][]SymID, entry SymID) *Program {
	p := NewProgram(nil, nil)
	syms := make(map[SymID]*Symbol, n)
	for i := SymID(1); i <= SymID(n); i++ {
		syms[i] = p.AddObject(fmt.Sprintf("s%d", i), uint64(i), 1, false)
	}
	for from, tos := range edges {
		for _, to := range tos {
			p.AddRef(syms[from], syms[to])
		}
	}
	p.SetEntryPoint(syms[entry])
	return p
}

func TestDominators(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		edges    map[SymID][]SymID
		entry    SymID
		expected map[SymID]SymID // node -> immediate dominator
	}{
		{
			name:  "simple linear chain",
			n:     3,
			edges: map[SymID][]SymID{1: {2}, 2: {3}},
			entry: 1,
			expected: map[SymID]SymID{
				1: 0,
				2: 1,
				3: 2,
			},
		},
		{
			name:  "diamond pattern",
			n:     4,
			edges: map[SymID][]SymID{1: {2, 3}, 2: {4}, 3: {4}},
			entry: 1,
			expected: map[SymID]SymID{
				1: 0,
				2: 1,
				3: 1,
				4: 1, // dominated by root, not by 2 or 3
			},
		},
		{
			name: "complex graph with multiple paths",
			n:    6,
			edges: map[SymID][]SymID{
				1: {2, 3},
				2: {4},
				3: {4, 5},
				4: {6},
				5: {6},
			},
			entry: 1,
			expected: map[SymID]SymID{
				1: 0,
				2: 1,
				3: 1,
				4: 1,
				5: 3,
				6: 1,
			},
		},
		{
			name:  "unreachable nodes",
			n:     3,
			edges: map[SymID][]SymID{1: {2}},
			entry: 1,
			expected: map[SymID]SymID{
				1: 0,
				2: 1,
				// 3 is unreachable, not in dominators
			},
		},
		{
			name: "cycle in graph",
			n:    5,
			edges: map[SymID][]SymID{
				1: {2},
				2: {3},
				3: {4},
				4: {2, 5}, // back edge to 2
			},
			entry: 1,
			expected: map[SymID]SymID{
				1: 0,
				2: 1,
				3: 2,
				4: 3,
				5: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildProgram(tt.n, tt.edges, tt.entry)
			dom := Dominators(p)

			if len(dom) != len(tt.expected) {
				t.Errorf("got %d dominators, want %d", len(dom), len(tt.expected))
			}

			for node, expectedDom := range tt.expected {
				if gotDom, ok := dom[node]; !ok {
					t.Errorf("node %d: missing from dominators", node)
				} else if gotDom != expectedDom {
					t.Errorf("node %d: dominator = %d, want %d", node, gotDom, expectedDom)
				}
			}

			for node, gotDom := range dom {
				if expectedDom, ok := tt.expected[node]; !ok {
					t.Errorf("node %d: unexpected dominator %d", node, gotDom)
				} else if gotDom != expectedDom {
					t.Errorf("node %d: dominator = %d, want %d", node, gotDom, expectedDom)
				}
			}
		})
	}
}

func TestDominatorTree(t *testing.T) {
	p := buildProgram(5, map[SymID][]SymID{
		1: {2, 3},
		2: {4},
		3: {4, 5},
	}, 1)

	dom := Dominators(p)
	tree := DominatorTree(dom)

	expectedTree := map[SymID][]SymID{
		0: {1},
		1: {2, 3, 4},
		2: {},
		3: {5},
		4: {},
		5: {},
	}

	for parent, expectedChildren := range expectedTree {
		gotChildren := tree[parent]
		sort.Slice(gotChildren, func(i, j int) bool { return gotChildren[i] < gotChildren[j] })
		sort.Slice(expectedChildren, func(i, j int) bool { return expectedChildren[i] < expectedChildren[j] })

		if !reflect.DeepEqual(gotChildren, expectedChildren) {
			t.Errorf("node %d: children = %v, want %v", parent, gotChildren, expectedChildren)
		}
	}
}

func TestDominatorsPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	sizes := []int{1000, 10000, 100000}
	for _, n := range sizes {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			edges := map[SymID][]SymID{}
			for i := 1; i <= n; i++ {
				if i > 1 {
					parent := SymID((i-2)/10 + 1)
					edges[parent] = append(edges[parent], SymID(i))
				}
			}
			p := buildProgram(n, edges, 1)

			start := time.Now()
			dom := Dominators(p)
			elapsed := time.Since(start)

			if len(dom) == 0 {
				t.Error("no dominators computed")
			}

			maxTime := time.Duration(n) * time.Microsecond * 600
			if n >= 100000 {
				maxTime = 60 * time.Second
			}
			if elapsed > maxTime {
				t.Errorf("took %v for n=%d, expected < %v", elapsed, n, maxTime)
			}

			t.Logf("n=%d: computed %d dominators in %v", n, len(dom), elapsed)
		})
	}
}

func BenchmarkDominators(b *testing.B) {
	sizes := []int{100, 1000, 10000}

	for _, n := range sizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			edges := map[SymID][]SymID{}
			for i := 1; i <= n; i++ {
				if i*2 <= n {
					edges[SymID(i)] = append(edges[SymID(i)], SymID(i*2))
				}
				if i*2+1 <= n {
					edges[SymID(i)] = append(edges[SymID(i)], SymID(i*2+1))
				}
			}
			p := buildProgram(n, edges, 1)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = Dominators(p)
			}
		})
	}
}
