package cmd

import (
	"strings"
	"testing"

	"github.com/robustnas/robq/internal/diagram"
)

func TestWriteFigureSVG(t *testing.T) {
	cell, err := diagram.Decode("|nor_conv_3x3~0|+|none~0|skip_connect~1|+|avg_pool_3x3~0|nor_conv_1x1~1|skip_connect~2|")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fig := diagram.Layout(cell, "42")

	var b strings.Builder
	if err := writeFigureSVG(&b, fig); err != nil {
		t.Fatalf("writeFigureSVG: %v", err)
	}
	svg := b.String()

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not a well-formed svg document")
	}
	if got := strings.Count(svg, "<circle "); got != 4 {
		t.Fatalf("expected 4 node circles, got %d", got)
	}
	// 6 arrows split between curved paths and straight lines, plus the
	// arrowhead marker path in defs.
	if got := strings.Count(svg, "marker-end"); got != 6 {
		t.Fatalf("expected 6 arrow connectors, got %d", got)
	}
	for _, label := range []string{">3x3<", ">zero<", ">skip<", ">avg<", ">1x1<", "># 42<"} {
		if !strings.Contains(svg, label) {
			t.Fatalf("missing label %s in svg", label)
		}
	}
}

func TestSVGEscape(t *testing.T) {
	if got := svgEscape("a<b&c>d"); got != "a&lt;b&amp;c&gt;d" {
		t.Fatalf("svgEscape: %q", got)
	}
}
