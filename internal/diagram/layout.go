package diagram

import "fmt"

// Point is a position in figure coordinates.
type Point struct {
	X float64
	Y float64
}

// Arrow is a directed connector between two nodes. Curved arrows bend
// through Ctrl as a quadratic control point; straight arrows ignore it.
type Arrow struct {
	From   Point
	To     Point
	Ctrl   Point
	Curved bool
}

// Node is one cell node drawn as a circle.
type Node struct {
	Center Point
	Radius float64
	Label  string
}

// Label is a piece of text. Boxed labels get an opaque background so they
// stay readable on top of arrows.
type Label struct {
	Pos      Point
	Text     string
	Boxed    bool
	Centered bool
}

// Figure is the complete set of primitives for one cell diagram, plus the
// coordinate bounds a surface should map to its viewport.
type Figure struct {
	Arrows []Arrow
	Nodes  []Node
	Labels []Label
	Min    Point
	Max    Point
}

const nodeRadius = 0.2

// nodePos places the four cell nodes: input, the two intermediates, output.
var nodePos = [4]Point{
	{0, 0}, // in
	{1, 1}, // node 1
	{1, 0}, // node 2
	{2, 0}, // out
}

var nodeNames = [4]string{"in", "1", "2", "out"}

// edgeLabelPos fixes where each edge's operation label sits, keyed by
// (src, dst).
var edgeLabelPos = map[[2]int]Point{
	{0, 1}: {0.25, 0.75},
	{0, 2}: {0.5, 0},
	{0, 3}: {1, -0.75},
	{1, 2}: {1, 0.5},
	{1, 3}: {1.75, 0.75},
	{2, 3}: {1.5, 0},
}

// edgeArrows fixes the connector geometry per (src, dst) pair. Arrow heads
// stop short of the target circle.
var edgeArrows = map[[2]int]Arrow{
	{0, 1}: {From: Point{0, 0}, Ctrl: Point{0, 1}, To: Point{0.8, 1}, Curved: true},
	{0, 2}: {From: Point{0, 0}, To: Point{0.8, 0}},
	{0, 3}: {From: Point{0, 0}, Ctrl: Point{1, -1.5}, To: Point{1.86, -0.14}, Curved: true},
	{1, 2}: {From: Point{1, 1}, To: Point{1, 0.2}},
	{1, 3}: {From: Point{1, 1}, Ctrl: Point{2, 1}, To: Point{2, 0.2}, Curved: true},
	{2, 3}: {From: Point{1, 0}, To: Point{1.8, 0}},
}

// Layout produces the drawable primitives for a cell. It is a pure function
// of the cell and the identifier label; rendering is left to the caller's
// surface.
func Layout(c Cell, id string) Figure {
	fig := Figure{
		Min: Point{-0.5, -1},
		Max: Point{2.5, 1.5},
	}

	for dst := 1; dst < len(nodePos); dst++ {
		for src := 0; src < dst; src++ {
			fig.Arrows = append(fig.Arrows, edgeArrows[[2]int{src, dst}])
		}
	}

	for i, p := range nodePos {
		fig.Nodes = append(fig.Nodes, Node{Center: p, Radius: nodeRadius, Label: nodeNames[i]})
		fig.Labels = append(fig.Labels, Label{Pos: p, Text: nodeNames[i], Centered: true})
	}

	if id != "" {
		fig.Labels = append(fig.Labels, Label{Pos: Point{-0.3, 1.3}, Text: fmt.Sprintf("# %s", id)})
	}

	for _, e := range c.Edges {
		label, ok := OpLabel(e.Op)
		if !ok {
			label = e.Op
		}
		pos, ok := edgeLabelPos[[2]int{e.Src, e.Dst}]
		if !ok {
			continue
		}
		fig.Labels = append(fig.Labels, Label{Pos: pos, Text: label, Boxed: true, Centered: true})
	}

	return fig
}
