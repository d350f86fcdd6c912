// Package diagram decodes NAS-Bench-201 architecture strings into cell
// topologies and lays them out as drawable primitives. It knows nothing about
// any graphics backend; callers render the primitives on their own surface.
package diagram

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedArch is returned when an architecture string does not follow
// the "(op~src|...)+(...)+(...)" form.
var ErrMalformedArch = errors.New("malformed architecture string")

// Operation names of the NAS-Bench-201 search space, with the short labels
// used on diagrams.
var opLabels = map[string]string{
	"avg_pool_3x3": "avg",
	"nor_conv_1x1": "1x1",
	"nor_conv_3x3": "3x3",
	"skip_connect": "skip",
	"none":         "zero",
}

// OpLabel returns the short diagram label for op ("avg", "1x1", "3x3",
// "skip", "zero") and whether op belongs to the search space vocabulary.
func OpLabel(op string) (string, bool) {
	l, ok := opLabels[op]
	return l, ok
}

// Edge is one operation edge of a cell, from node Src to node Dst. Nodes are
// numbered 0 (input), 1, 2 (intermediate), 3 (output).
type Edge struct {
	Src int
	Dst int
	Op  string
}

// Cell is a decoded NAS-Bench-201 cell: one operation per ordered node pair.
type Cell struct {
	Edges []Edge
}

// Decode parses an architecture string such as
//
//	|nor_conv_3x3~0|+|none~0|skip_connect~1|+|avg_pool_3x3~0|none~1|skip_connect~2|
//
// into a Cell. Each "+"-separated group lists the operations entering one
// node; every operation is tagged with its source node index.
func Decode(s string) (Cell, error) {
	groups := strings.Split(s, "+")
	if len(groups) != 3 {
		return Cell{}, fmt.Errorf("%w: expected 3 node groups, got %d", ErrMalformedArch, len(groups))
	}

	var cell Cell
	for gi, g := range groups {
		dst := gi + 1
		if len(g) < 2 || !strings.HasPrefix(g, "|") || !strings.HasSuffix(g, "|") {
			return Cell{}, fmt.Errorf("%w: group %d is not |-delimited: %q", ErrMalformedArch, dst, g)
		}
		ops := strings.Split(g[1:len(g)-1], "|")
		if len(ops) != dst {
			return Cell{}, fmt.Errorf("%w: node %d expects %d incoming ops, got %d", ErrMalformedArch, dst, dst, len(ops))
		}
		seen := make(map[int]bool, len(ops))
		for _, entry := range ops {
			op, srcStr, ok := strings.Cut(entry, "~")
			if !ok {
				return Cell{}, fmt.Errorf("%w: operation %q has no source tag", ErrMalformedArch, entry)
			}
			if _, known := opLabels[op]; !known {
				return Cell{}, fmt.Errorf("%w: unknown operation %q", ErrMalformedArch, op)
			}
			src, err := strconv.Atoi(srcStr)
			if err != nil || src < 0 || src >= dst {
				return Cell{}, fmt.Errorf("%w: invalid source node %q for node %d", ErrMalformedArch, srcStr, dst)
			}
			if seen[src] {
				return Cell{}, fmt.Errorf("%w: duplicate edge %d->%d", ErrMalformedArch, src, dst)
			}
			seen[src] = true
			cell.Edges = append(cell.Edges, Edge{Src: src, Dst: dst, Op: op})
		}
	}

	sort.Slice(cell.Edges, func(i, j int) bool {
		if cell.Edges[i].Dst != cell.Edges[j].Dst {
			return cell.Edges[i].Dst < cell.Edges[j].Dst
		}
		return cell.Edges[i].Src < cell.Edges[j].Src
	})
	return cell, nil
}

// Encode renders a Cell back into its architecture string form.
func Encode(c Cell) string {
	byDst := map[int][]Edge{}
	for _, e := range c.Edges {
		byDst[e.Dst] = append(byDst[e.Dst], e)
	}

	var groups []string
	for dst := 1; dst <= 3; dst++ {
		edges := byDst[dst]
		sort.Slice(edges, func(i, j int) bool { return edges[i].Src < edges[j].Src })
		var b strings.Builder
		b.WriteString("|")
		for _, e := range edges {
			fmt.Fprintf(&b, "%s~%d|", e.Op, e.Src)
		}
		groups = append(groups, b.String())
	}
	return strings.Join(groups, "+")
}
