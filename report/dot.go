package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/han-qiu/bloaty/graph"
)

// DotOptions configures WriteDot's visualization thresholds. Zero values
// are replaced with the same constants the distilled spec names.
type DotOptions struct {
	// WeightThreshold excludes nodes whose MaxWeight is at or below this
	// value from the graph entirely (default 30000).
	WeightThreshold uint64
	// MinFontSize is the smallest node label font size (default 9).
	MinFontSize float64
	// EdgeWidthExponent shapes how edge weight maps to pen width (default 0.6).
	EdgeWidthExponent float64
}

func (o DotOptions) withDefaults() DotOptions {
	if o.WeightThreshold == 0 {
		o.WeightThreshold = 30000
	}
	if o.MinFontSize == 0 {
		o.MinFontSize = 9
	}
	if o.EdgeWidthExponent == 0 {
		o.EdgeWidthExponent = 0.6
	}
	return o
}

// WriteDot emits the reachable subgraph restricted to nodes whose
// MaxWeight exceeds opts.WeightThreshold, in Graphviz DOT format.
func WriteDot(w io.Writer, p *graph.Program, opts DotOptions) {
	opts = opts.withDefaults()
	total := p.TotalSize()
	if total == 0 {
		total = 1
	}

	reachable := graph.Reachable(p)
	included := map[graph.SymID]*graph.Symbol{}
	p.ForEachSymbol(func(s *graph.Symbol) {
		if reachable[s.ID] && s.MaxWeight > opts.WeightThreshold {
			included[s.ID] = s
		}
	})

	var ordered []*graph.Symbol
	for _, s := range included {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	fmt.Fprintln(w, "digraph bloaty {")
	fmt.Fprintln(w, "node [fontname = \"Monospace\"];")
	fmt.Fprintln(w)

	for _, s := range ordered {
		fontSize := math.Max(float64(s.Size)*80000/float64(total), opts.MinFontSize)
		fmt.Fprintf(w, "n%d [label=\"%s\\n%s / %s\", fontsize=%.1f];\n",
			s.ID, displayName(s), formatBytes(s.Size), formatBytes(s.Weight), fontSize)
	}
	fmt.Fprintln(w)

	// The reference implementation normalizes by the entry point's
	// max_weight (the heaviest weight anywhere in the whole reachable
	// graph), not a local max over the nodes this call happens to include.
	var maxWeight uint64 = 1
	if entry := p.EntryPoint(); entry != nil && entry.MaxWeight > 0 {
		maxWeight = entry.MaxWeight
	}

	for _, s := range ordered {
		for _, ref := range s.Refs {
			target, ok := included[ref]
			if !ok || target.ID == s.ID {
				continue
			}
			// penwidth is driven by the edge's target weight, matching
			// bloaty.cc: an edge is thick because it leads somewhere heavy,
			// not because its source is heavy.
			penWidth := math.Pow(float64(target.Weight)*100/float64(maxWeight), opts.EdgeWidthExponent)
			fmt.Fprintf(w, "n%d -> n%d [penwidth=%.2f];\n", s.ID, target.ID, penWidth)
		}
	}
	fmt.Fprintln(w, "}")
}
