package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/robustnas/robq/internal/diagram"
	"github.com/spf13/cobra"
)

var flagDrawOut string

var drawCmd = &cobra.Command{
	Use:   "draw <id|string>",
	Short: "Render an architecture cell diagram as SVG",
	Long: `Decode an architecture (by id or NAS-Bench-201 string) and render its
cell as an SVG diagram: the four nodes, the six operation edges, and the
operation assigned to each edge.

Examples:
  robq draw 1462 --out cell.svg
  robq draw "|nor_conv_3x3~0|+|none~0|skip_connect~1|+|avg_pool_3x3~0|none~1|skip_connect~2|"`,
	Args: cobra.ExactArgs(1),
	RunE: runDraw,
}

func init() {
	drawCmd.Flags().StringVar(&flagDrawOut, "out", "", "Write the SVG to a file instead of stdout")
	drawCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(drawCmd)
}

func runDraw(_ *cobra.Command, args []string) error {
	d, err := openDataset()
	if err != nil {
		return err
	}
	idx := d.Index()

	arg := args[0]
	var id, s string
	if looksLikeID(arg) {
		id = arg
		s, err = idx.IDToString(id)
		if err != nil {
			return err
		}
	} else {
		s = arg
		// Best-effort id label; unregistered strings still draw.
		id, _ = idx.StringToID(s)
	}

	cell, err := diagram.Decode(s)
	if err != nil {
		return err
	}
	fig := diagram.Layout(cell, id)

	if flagDrawOut == "" {
		return writeFigureSVG(os.Stdout, fig)
	}
	f, err := os.Create(flagDrawOut)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", flagDrawOut, err)
	}
	if err := writeFigureSVG(f, fig); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Diagram written: %s", flagDrawOut))
	return nil
}

// svgScale maps figure coordinates to SVG pixels.
const svgScale = 100.0

// writeFigureSVG is the drawing surface for diagram figures: it maps the
// figure's primitives onto SVG, flipping the y axis (figure y grows up, SVG
// y grows down).
func writeFigureSVG(w io.Writer, fig diagram.Figure) error {
	width := (fig.Max.X - fig.Min.X) * svgScale
	height := (fig.Max.Y - fig.Min.Y) * svgScale
	tx := func(p diagram.Point) (float64, float64) {
		return (p.X - fig.Min.X) * svgScale, (fig.Max.Y - p.Y) * svgScale
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		width, height, width, height)
	b.WriteString(`<defs><marker id="arrow" markerWidth="8" markerHeight="6" refX="7" refY="3" orient="auto">` +
		`<path d="M0,0 L8,3 L0,6 z" fill="black"/></marker></defs>` + "\n")

	for _, a := range fig.Arrows {
		x1, y1 := tx(a.From)
		x2, y2 := tx(a.To)
		if a.Curved {
			cx, cy := tx(a.Ctrl)
			fmt.Fprintf(&b, `<path d="M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f" fill="none" stroke="black" marker-end="url(#arrow)"/>`+"\n",
				x1, y1, cx, cy, x2, y2)
		} else {
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" marker-end="url(#arrow)"/>`+"\n",
				x1, y1, x2, y2)
		}
	}

	for _, n := range fig.Nodes {
		cx, cy := tx(n.Center)
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="white" stroke="black" stroke-width="2"/>`+"\n",
			cx, cy, n.Radius*svgScale)
	}

	for _, l := range fig.Labels {
		x, y := tx(l.Pos)
		anchor := "start"
		baseline := ""
		if l.Centered {
			anchor = "middle"
			baseline = ` dominant-baseline="central"`
		}
		if l.Boxed {
			// Opaque backing so labels stay readable on top of arrows.
			halfW := float64(len(l.Text))*4.8 + 3
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="18" fill="white"/>`+"\n",
				x-halfW, y-9, 2*halfW)
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" text-anchor="%s"%s>%s</text>`+"\n",
			x, y, anchor, baseline, svgEscape(l.Text))
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func svgEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
