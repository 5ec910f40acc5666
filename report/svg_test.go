package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/han-qiu/bloaty/graph"
)

func TestWriteTreemap(t *testing.T) {
	p := graph.NewProgram(nil, nil)
	p.AddObject("A", 1, 100, false)
	p.AddObject("B", 2, 50, false)
	p.AddObject("C", 3, 25, false)

	var buf bytes.Buffer
	WriteTreemap(&buf, p, TreemapOptions{Width: 200, Height: 100})

	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Errorf("expected a well-formed SVG document:\n%s", out)
	}
	if strings.Count(out, "<rect") < 3 {
		t.Errorf("expected at least 3 rectangles (background + 2+ symbols), got:\n%s", out)
	}
}

func TestWriteTreemapEmptyProgram(t *testing.T) {
	p := graph.NewProgram(nil, nil)
	var buf bytes.Buffer
	WriteTreemap(&buf, p, TreemapOptions{})
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("expected a valid empty SVG, got:\n%s", buf.String())
	}
}
