package graph

// Dominators computes the immediate dominator for every symbol reachable
// from the program's entry point, using the Lengauer-Tarjan algorithm
// (simple variant with path compression, O(m log n)) over a synthetic
// super-root (SymID 0, never a real symbol) that points only at the entry
// point.
//
// The returned map holds, for every reachable non-entry symbol, its
// immediate dominator's id. dom[entry.ID] == 0 is the sentinel meaning
// "the entry point has no real dominator." Unreachable symbols and the
// super-root itself are absent.
//
// Both the DFS numbering pass and the link/eval path-compression forest
// walk use explicit work stacks rather than recursion (spec §9: the
// retrieved reference implementation recurses in both places, which risks
// exhausting the goroutine stack on a binary with a very deep call chain).
func Dominators(p *Program) map[SymID]SymID {
	entry := p.EntryPoint()
	if entry == nil {
		return nil
	}

	succ := func(v SymID) []SymID {
		if v == 0 {
			return []SymID{entry.ID}
		}
		if s := p.Symbol(v); s != nil {
			return s.Refs
		}
		return nil
	}

	dfnum := map[SymID]int{0: 0}
	vertex := []SymID{0}
	parent := map[SymID]SymID{}
	semi := map[SymID]int{0: 0}
	pred := map[SymID][]SymID{}
	ancestor := map[SymID]int{0: -1} // dfnum of forest-ancestor, -1 if none
	label := map[SymID]SymID{0: 0}   // vertex with minimal semi seen on the compressed path
	dsfNum := 1

	// Iterative DFS: assign dfnum/semi/parent/vertex, and record pred[w]
	// for every traversed edge (tree, forward, back, or cross), which is
	// what lets the main loop below run in O(m) instead of O(n·m).
	type frame struct {
		v     SymID
		succs []SymID
		i     int
	}
	stack := []*frame{{v: 0, succs: succ(0)}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.i >= len(top.succs) {
			stack = stack[:len(stack)-1]
			continue
		}
		w := top.succs[top.i]
		top.i++
		pred[w] = append(pred[w], top.v)
		if _, seen := dfnum[w]; seen {
			continue
		}
		dfnum[w] = dsfNum
		vertex = append(vertex, w)
		parent[w] = top.v
		semi[w] = dsfNum
		ancestor[w] = -1
		label[w] = w
		dsfNum++
		stack = append(stack, &frame{v: w, succs: succ(w)})
	}
	n := dsfNum

	compress := func(v SymID) {
		var chain []SymID
		cur := v
		for ancestor[cur] != -1 && ancestor[vertex[ancestor[cur]]] != -1 {
			chain = append(chain, cur)
			cur = vertex[ancestor[cur]]
		}
		for i := len(chain) - 1; i >= 0; i-- {
			node := chain[i]
			anc := vertex[ancestor[node]]
			if semi[label[anc]] < semi[label[node]] {
				label[node] = label[anc]
			}
			ancestor[node] = ancestor[anc]
		}
	}

	eval := func(v SymID) SymID {
		if ancestor[v] == -1 {
			return label[v]
		}
		compress(v)
		return label[v]
	}

	dom := map[SymID]SymID{}
	bucket := map[int][]SymID{}

	for i := n - 1; i >= 1; i-- {
		w := vertex[i]

		for _, v := range pred[w] {
			var u SymID
			if dfnum[v] <= dfnum[w] {
				u = v
			} else {
				u = eval(v)
			}
			if semi[u] < semi[w] {
				semi[w] = semi[u]
			}
		}
		bucket[semi[w]] = append(bucket[semi[w]], w)

		pw := parent[w]
		ancestor[w] = dfnum[pw]

		pwNum := dfnum[pw]
		for _, v := range bucket[pwNum] {
			u := eval(v)
			if semi[u] < semi[v] {
				dom[v] = u
			} else {
				dom[v] = pw
			}
		}
		delete(bucket, pwNum)
	}

	for i := 1; i < n; i++ {
		w := vertex[i]
		if dom[w] != vertex[semi[w]] {
			dom[w] = dom[dom[w]]
		}
	}

	return dom
}

// DominatorTree builds the children-of relation from an immediate
// dominator map: tree[d] lists every node whose immediate dominator is d.
// Every node in dom has an entry (an empty list for a leaf). The
// super-root (0) is included as the parent of the entry point.
func DominatorTree(dom map[SymID]SymID) map[SymID][]SymID {
	tree := make(map[SymID][]SymID, len(dom))
	for node := range dom {
		if _, ok := tree[node]; !ok {
			tree[node] = []SymID{}
		}
	}
	for node, parent := range dom {
		tree[parent] = append(tree[parent], node)
	}
	return tree
}
