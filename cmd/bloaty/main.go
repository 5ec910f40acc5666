// Command bloaty analyzes an executable image's size and weight the way
// Bloaty McBloatface does: symbols, their reference graph, and how much
// binary weight each symbol pulls in transitively.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/han-qiu/bloaty/binfmt"
	"github.com/han-qiu/bloaty/graph"
	"github.com/han-qiu/bloaty/report"
	"github.com/han-qiu/bloaty/store"
	"github.com/han-qiu/bloaty/vtable"
)

func main() {
	var (
		svgPath      = flag.String("svg", "", "write an SVG treemap of the top symbols to this path")
		neo4jURI     = flag.String("neo4j-uri", "", "Neo4j bolt URI; export is skipped when empty")
		neo4jUser    = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass    = flag.String("neo4j-pass", "", "Neo4j password")
		topN         = flag.Int("top", report.DefaultTopN, "number of rows in the weight report and symbols in the SVG treemap")
		pointerSize  = flag.Int("pointer-size", vtable.DefaultPointerSize, "pointer width in bytes used when scanning vtables")
		weightThresh = flag.Uint64("weight-threshold", 30000, "MaxWeight a symbol must exceed to appear in graph.dot")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <binary-file> [name]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	binaryPath := flag.Arg(0)
	var traceName string
	if flag.NArg() >= 2 {
		traceName = flag.Arg(1)
	}

	if err := run(binaryPath, traceName, runOptions{
		svgPath:      *svgPath,
		neo4jURI:     *neo4jURI,
		neo4jUser:    *neo4jUser,
		neo4jPass:    *neo4jPass,
		topN:         *topN,
		pointerSize:  *pointerSize,
		weightThresh: *weightThresh,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "bloaty:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	svgPath      string
	neo4jURI     string
	neo4jUser    string
	neo4jPass    string
	topN         int
	pointerSize  int
	weightThresh uint64
}

func run(binaryPath, traceName string, opts runOptions) error {
	prog, err := binfmt.Load(binaryPath, traceName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", binaryPath, err)
	}

	if err := scanVTables(binaryPath, prog, opts.pointerSize); err != nil {
		return fmt.Errorf("scanning vtables: %w", err)
	}

	if prog.EntryPoint() == nil {
		return fmt.Errorf("%s: no entry point found; size and weight reports need one to root reachability and dominator analysis", binaryPath)
	}

	dom := graph.Dominators(prog)
	graph.PropagateWeight(prog, dom)

	if traceName != "" {
		printPathsToEntry(prog, traceName)
		printDominatorChain(prog, dom, traceName)
	}

	report.BySize(os.Stdout, prog)
	fmt.Fprintln(os.Stdout)
	report.FilesByWeight(os.Stdout, prog)
	fmt.Fprintln(os.Stdout)
	report.ByWeight(os.Stdout, prog, opts.topN)

	if garbage := graph.Garbage(prog); len(garbage) > 0 {
		fmt.Fprintf(os.Stdout, "\n%d symbols unreachable from the entry point\n", len(garbage))
	}

	dotFile, err := os.Create("graph.dot")
	if err != nil {
		return fmt.Errorf("creating graph.dot: %w", err)
	}
	defer dotFile.Close()
	report.WriteDot(dotFile, prog, report.DotOptions{WeightThreshold: opts.weightThresh})

	if opts.svgPath != "" {
		svgFile, err := os.Create(opts.svgPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.svgPath, err)
		}
		defer svgFile.Close()
		report.WriteTreemap(svgFile, prog, report.TreemapOptions{TopN: opts.topN})
	}

	if opts.neo4jURI != "" {
		if err := exportToNeo4j(prog, opts); err != nil {
			return fmt.Errorf("exporting to neo4j: %w", err)
		}
	}

	return nil
}

// printPathsToEntry answers "why is this symbol here" for the traced
// symbol: up to five distinct chains of references leading back to the
// entry point, or a note that none exists.
func printPathsToEntry(prog *graph.Program, name string) {
	sym := prog.FindObjectByName(name)
	if sym == nil {
		fmt.Fprintf(os.Stdout, "\ntrace: no symbol named %q\n", name)
		return
	}
	paths := graph.PathsToEntry(prog, sym.ID, 5)
	if len(paths) == 0 {
		fmt.Fprintf(os.Stdout, "\ntrace: %s is unreachable from the entry point\n", name)
		return
	}
	fmt.Fprintf(os.Stdout, "\ntrace: paths from entry point to %s:\n", name)
	for _, path := range paths {
		for i := len(path.IDs) - 1; i >= 0; i-- {
			if s := prog.Symbol(path.IDs[i]); s != nil {
				fmt.Fprint(os.Stdout, s.PrettyName)
			}
			if i > 0 {
				fmt.Fprint(os.Stdout, " -> ")
			}
		}
		fmt.Fprintln(os.Stdout)
	}
}

// printDominatorChain answers "what does this symbol sit under" for the
// traced symbol: its immediate-dominator chain back to the entry point,
// each link annotated with its depth in the dominator tree.
func printDominatorChain(prog *graph.Program, dom map[graph.SymID]graph.SymID, name string) {
	sym := prog.FindObjectByName(name)
	if sym == nil || dom == nil {
		return
	}
	entry := prog.EntryPoint()
	if entry == nil || !graph.IsDominated(dom, sym.ID, entry.ID) {
		fmt.Fprintf(os.Stdout, "trace: %s is not dominated by the entry point\n", name)
		return
	}

	depth := graph.DominatorDepth(graph.DominatorTree(dom))
	path := graph.DominatorPath(dom, sym.ID)
	fmt.Fprintf(os.Stdout, "trace: dominator chain for %s:\n", name)
	for i := len(path) - 1; i >= 0; i-- {
		id := path[i]
		if id == 0 {
			continue
		}
		if s := prog.Symbol(id); s != nil {
			fmt.Fprintf(os.Stdout, "  [depth %d] %s\n", depth[id], s.PrettyName)
		}
	}
}

func scanVTables(binaryPath string, prog *graph.Program, pointerSize int) error {
	f, err := os.Open(binaryPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return vtable.Scan(f, prog, vtable.Options{PointerSize: pointerSize})
}

func exportToNeo4j(prog *graph.Program, opts runOptions) error {
	ctx := context.Background()
	exporter, err := store.NewNeo4jExporter(ctx, opts.neo4jURI, opts.neo4jUser, opts.neo4jPass)
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.CreateIndexes(); err != nil {
		return err
	}
	return exporter.Export(prog)
}
