// Package report renders a finished symbol graph as text listings, a
// Graphviz .dot file, and an SVG treemap.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/han-qiu/bloaty/graph"
)

// DefaultTopN is the row count used by the weight report unless overridden.
const DefaultTopN = 40

// BySize prints every symbol sorted by size descending, with percent of
// total and running cumulative percent, and a trailing TOTAL row.
func BySize(w io.Writer, p *graph.Program) {
	var syms []*graph.Symbol
	p.ForEachSymbol(func(s *graph.Symbol) { syms = append(syms, s) })
	sort.Slice(syms, func(i, j int) bool { return syms[i].Size > syms[j].Size })

	total := p.TotalSize()
	fmt.Fprintln(w, "Symbols by size")
	fmt.Fprintln(w, "===============")
	var cumulative uint64
	for _, s := range syms {
		cumulative += s.Size
		fmt.Fprintf(w, "%-60s %12s %6s %6s\n",
			truncate(displayName(s), 60), formatBytes(s.Size), pct(s.Size, total), pct(cumulative, total))
	}
	fmt.Fprintf(w, "%-60s %12s\n", "TOTAL", formatBytes(total))
}

// FilesByWeight prints every file sorted by SourceLineWeight descending.
func FilesByWeight(w io.Writer, p *graph.Program) {
	var files []*graph.File
	p.ForEachFile(func(f *graph.File) { files = append(files, f) })
	sort.Slice(files, func(i, j int) bool { return files[i].SourceLineWeight > files[j].SourceLineWeight })

	var total uint64
	for _, f := range files {
		total += f.SourceLineWeight
	}

	fmt.Fprintln(w, "Files by weight")
	fmt.Fprintln(w, "===============")
	var cumulative uint64
	for _, f := range files {
		cumulative += f.SourceLineWeight
		fmt.Fprintf(w, "%-60s %12s %6s %6s\n",
			truncate(f.Name, 60), formatBytes(f.SourceLineWeight), pct(f.SourceLineWeight, total), pct(cumulative, total))
	}
	fmt.Fprintf(w, "%-60s %12s\n", "TOTAL", formatBytes(total))
}

// ByWeight prints the topN symbols by transitive Weight after
// PropagateWeight has run. topN <= 0 uses DefaultTopN.
func ByWeight(w io.Writer, p *graph.Program, topN int) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	var syms []*graph.Symbol
	p.ForEachSymbol(func(s *graph.Symbol) { syms = append(syms, s) })
	sort.Slice(syms, func(i, j int) bool { return syms[i].Weight > syms[j].Weight })
	if len(syms) > topN {
		syms = syms[:topN]
	}

	total := p.TotalSize()
	fmt.Fprintln(w, "Symbols by transitive weight")
	fmt.Fprintln(w, "============================")
	for _, s := range syms {
		fmt.Fprintf(w, "%-60s %12s %6s\n", truncate(displayName(s), 60), formatBytes(s.Weight), pct(s.Weight, total))
	}
}

func displayName(s *graph.Symbol) string {
	if s.PrettyName != "" {
		return s.PrettyName
	}
	return s.Name
}

func truncate(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	if maxLen < 4 {
		return name[:maxLen]
	}
	return name[:maxLen-4] + "...."
}

func pct(part, total uint64) string {
	if total == 0 {
		return "  0.0%"
	}
	return fmt.Sprintf("%5.1f%%", float64(part)/float64(total)*100)
}

func formatBytes(size uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case size >= mb:
		return fmt.Sprintf("%.2f MB", float64(size)/mb)
	case size >= kb:
		return fmt.Sprintf("%.2f KB", float64(size)/kb)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
