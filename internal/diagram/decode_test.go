package diagram

import (
	"errors"
	"testing"
)

const sampleArch = "|nor_conv_3x3~0|+|none~0|skip_connect~1|+|avg_pool_3x3~0|nor_conv_1x1~1|skip_connect~2|"

func TestDecode(t *testing.T) {
	cell, err := Decode(sampleArch)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cell.Edges) != 6 {
		t.Fatalf("expected 6 edges, got %d", len(cell.Edges))
	}

	want := []Edge{
		{0, 1, "nor_conv_3x3"},
		{0, 2, "none"},
		{1, 2, "skip_connect"},
		{0, 3, "avg_pool_3x3"},
		{1, 3, "nor_conv_1x1"},
		{2, 3, "skip_connect"},
	}
	for i, e := range want {
		if cell.Edges[i] != e {
			t.Fatalf("edge %d: got %v want %v", i, cell.Edges[i], e)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []string{
		"",
		"|none~0|",
		"|none~0|+|none~0|none~1|",
		"|none~0|+|none~0|+|none~0|none~1|none~2|",
		"|bogus_op~0|+|none~0|none~1|+|none~0|none~1|none~2|",
		"|none~3|+|none~0|none~1|+|none~0|none~1|none~2|",
		"|none|+|none~0|none~1|+|none~0|none~1|none~2|",
		"|none~0|+|none~0|none~0|+|none~0|none~1|none~2|",
		"none~0+|none~0|none~1|+|none~0|none~1|none~2|",
	}
	for _, s := range cases {
		if _, err := Decode(s); !errors.Is(err, ErrMalformedArch) {
			t.Fatalf("Decode(%q): expected ErrMalformedArch, got %v", s, err)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cell, err := Decode(sampleArch)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := Encode(cell); got != sampleArch {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, sampleArch)
	}
}

func TestLayout(t *testing.T) {
	cell, err := Decode(sampleArch)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fig := Layout(cell, "7")

	if len(fig.Arrows) != 6 {
		t.Fatalf("expected 6 arrows, got %d", len(fig.Arrows))
	}
	if len(fig.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(fig.Nodes))
	}
	// 4 node labels + 1 id label + 6 op labels.
	if len(fig.Labels) != 11 {
		t.Fatalf("expected 11 labels, got %d", len(fig.Labels))
	}

	var boxed int
	var hasID bool
	for _, l := range fig.Labels {
		if l.Boxed {
			boxed++
		}
		if l.Text == "# 7" {
			hasID = true
		}
	}
	if boxed != 6 {
		t.Fatalf("expected 6 boxed op labels, got %d", boxed)
	}
	if !hasID {
		t.Fatalf("id label missing from figure")
	}

	if fig.Min != (Point{-0.5, -1}) || fig.Max != (Point{2.5, 1.5}) {
		t.Fatalf("unexpected bounds: %v %v", fig.Min, fig.Max)
	}
}

func TestLayout_OpLabels(t *testing.T) {
	cell, err := Decode(sampleArch)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fig := Layout(cell, "")

	labels := map[string]bool{}
	for _, l := range fig.Labels {
		if l.Boxed {
			labels[l.Text] = true
		}
	}
	for _, want := range []string{"3x3", "zero", "skip", "avg", "1x1"} {
		if !labels[want] {
			t.Fatalf("missing op label %q in %v", want, labels)
		}
	}
}
