package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/han-qiu/bloaty/graph"
)

func TestWriteDotExcludesBelowThreshold(t *testing.T) {
	p := graph.NewProgram(nil, nil)
	a := p.AddObject("A", 1, 100000, false)
	b := p.AddObject("B", 2, 1, false)
	p.AddRef(a, b)
	p.SetEntryPoint(a)
	dom := graph.Dominators(p)
	graph.PropagateWeight(p, dom)

	var buf bytes.Buffer
	WriteDot(&buf, p, DotOptions{WeightThreshold: 50})
	out := buf.String()

	if !strings.Contains(out, "digraph bloaty") {
		t.Fatalf("missing digraph header:\n%s", out)
	}
	if !strings.Contains(out, "n1 ") && !strings.Contains(out, "n1[") {
		t.Errorf("expected node for high-weight symbol A:\n%s", out)
	}
	if strings.Contains(out, "n2 ") || strings.Contains(out, "n2[") {
		t.Errorf("symbol B should be excluded below the threshold:\n%s", out)
	}
}

func TestWriteDotEmptyProgram(t *testing.T) {
	p := graph.NewProgram(nil, nil)
	var buf bytes.Buffer
	WriteDot(&buf, p, DotOptions{})
	if !strings.Contains(buf.String(), "digraph bloaty") {
		t.Errorf("expected a valid (empty) digraph, got:\n%s", buf.String())
	}
}
