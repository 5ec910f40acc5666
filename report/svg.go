package report

import (
	"io"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/han-qiu/bloaty/graph"
)

// TreemapOptions sizes the rendered canvas and bounds how many symbols are
// drawn.
type TreemapOptions struct {
	Width, Height int
	TopN          int
}

func (o TreemapOptions) withDefaults() TreemapOptions {
	if o.Width == 0 {
		o.Width = 1024
	}
	if o.Height == 0 {
		o.Height = 768
	}
	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// WriteTreemap renders a slice-and-dice treemap of the topN symbols by
// size: each rectangle's area is proportional to its symbol's size. This
// is a presentation-only view of the same data BySize prints as text.
func WriteTreemap(w io.Writer, p *graph.Program, opts TreemapOptions) {
	opts = opts.withDefaults()

	var syms []*graph.Symbol
	p.ForEachSymbol(func(s *graph.Symbol) { syms = append(syms, s) })
	sort.Slice(syms, func(i, j int) bool { return syms[i].Size > syms[j].Size })
	if len(syms) > opts.TopN {
		syms = syms[:opts.TopN]
	}

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title("symbol size treemap")
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")

	sliceAndDice(canvas, syms, 0, 0, opts.Width, opts.Height, true)

	canvas.End()
}

// sliceAndDice recursively partitions the rectangle [x,y,w,h) among syms,
// alternating between horizontal and vertical cuts, each symbol's share of
// the area proportional to its size relative to the group's total.
func sliceAndDice(canvas *svg.SVG, syms []*graph.Symbol, x, y, w, h int, horizontal bool) {
	if len(syms) == 0 || w <= 0 || h <= 0 {
		return
	}
	if len(syms) == 1 {
		drawCell(canvas, syms[0], x, y, w, h)
		return
	}

	var total uint64
	for _, s := range syms {
		total += s.Size
	}
	if total == 0 {
		return
	}

	// Split the group roughly in half by cumulative size, then recurse on
	// each half with the perpendicular cut direction.
	var running uint64
	split := len(syms) / 2
	for i, s := range syms {
		running += s.Size
		if running*2 >= total {
			split = i + 1
			break
		}
	}
	if split == 0 {
		split = 1
	}
	if split == len(syms) {
		split = len(syms) - 1
	}

	var firstTotal uint64
	for _, s := range syms[:split] {
		firstTotal += s.Size
	}
	frac := float64(firstTotal) / float64(total)

	if horizontal {
		cut := int(float64(w) * frac)
		sliceAndDice(canvas, syms[:split], x, y, cut, h, false)
		sliceAndDice(canvas, syms[split:], x+cut, y, w-cut, h, false)
	} else {
		cut := int(float64(h) * frac)
		sliceAndDice(canvas, syms[:split], x, y, w, cut, true)
		sliceAndDice(canvas, syms[split:], x, y+cut, w, h-cut, true)
	}
}

func drawCell(canvas *svg.SVG, s *graph.Symbol, x, y, w, h int) {
	canvas.Rect(x, y, w, h, "fill:#4a90d9;stroke:white;stroke-width:1")
	if w > 40 && h > 12 {
		canvas.Text(x+4, y+12, truncate(displayName(s), w/7), "font-size:10px;fill:white;font-family:monospace")
	}
}
