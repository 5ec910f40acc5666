package graph

// Path is a sequence of symbol ids from a target symbol back to the entry
// point.
type Path struct {
	IDs []SymID
}

// PathsToEntry finds up to maxPaths distinct paths from a symbol back to
// the program's entry point, by breadth-first search over the reversed
// reference graph. It exists for CLI diagnostics ("why is this symbol
// still reachable") rather than for the size/weight reports themselves.
func PathsToEntry(p *Program, from SymID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}
	entry := p.EntryPoint()
	if entry == nil {
		return nil
	}
	if from == entry.ID {
		return []Path{{IDs: []SymID{from}}}
	}

	reverse := buildReverseEdges(p)

	type searchNode struct {
		id   SymID
		path []SymID
	}

	var result []Path
	queue := []searchNode{{id: from, path: []SymID{from}}}

	for len(queue) > 0 && len(result) < maxPaths {
		node := queue[0]
		queue = queue[1:]

		for _, referrer := range reverse[node.id] {
			inPath := false
			for _, id := range node.path {
				if id == referrer {
					inPath = true
					break
				}
			}
			if inPath {
				continue
			}

			newPath := make([]SymID, len(node.path)+1)
			copy(newPath, node.path)
			newPath[len(node.path)] = referrer

			if referrer == entry.ID {
				result = append(result, Path{IDs: newPath})
				if len(result) >= maxPaths {
					break
				}
				continue
			}
			queue = append(queue, searchNode{id: referrer, path: newPath})
		}
	}

	return result
}

// buildReverseEdges inverts the program's forward reference graph into a
// map from a symbol to everything that references it directly.
func buildReverseEdges(p *Program) map[SymID][]SymID {
	reverse := make(map[SymID][]SymID)
	p.ForEachSymbol(func(s *Symbol) {
		for _, ref := range s.Refs {
			reverse[ref] = append(reverse[ref], s.ID)
		}
	})
	return reverse
}
