package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
	"github.com/san-kum/mowsim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#5fd068">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func svgPath(t transform, pts []geom.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		x, y := t.apply(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	return sb.String()
}

func svgColor(c telemetry.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WriteSVG draws the trajectory of a run: blade swath underneath, path, the
// renderables of one record and the final pose.
func WriteSVG[D any](w io.Writer, out *sim.Output[D], opts Options) error {
	if len(out.States) == 0 {
		return fmt.Errorf("empty trace")
	}
	s := newScene(out, opts.Frame)
	t := fit(s.points(), opts)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	if opts.Grid {
		lo, hi := t.bounds(opts)
		sb.WriteString(`<g stroke="#1f2f1f" stroke-width="1">` + "\n")
		for x := math.Ceil(lo.X); x <= hi.X; x++ {
			x0, _ := t.apply(geom.Pt(x, 0))
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"0\" x2=\"%.1f\" y2=\"%d\"/>\n", x0, x0, opts.Height)
		}
		for y := math.Ceil(lo.Y); y <= hi.Y; y++ {
			_, y0 := t.apply(geom.Pt(0, y))
			fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\"/>\n", y0, opts.Width, y0)
		}
		sb.WriteString("</g>\n")
	}

	swath := 2 * s.physical.BladeRadius * t.scale
	for _, run := range bladeRuns(s.path, s.blade) {
		fmt.Fprintf(&sb, "<path class=\"swath\" fill=\"none\" stroke=\"#2e7d32\" stroke-opacity=\"0.6\" stroke-linecap=\"round\" stroke-linejoin=\"round\" stroke-width=\"%.1f\" d=\"%s\"/>\n",
			swath, svgPath(t, run))
	}

	if len(s.path) > 1 {
		fmt.Fprintf(&sb, "<path class=\"trajectory\" fill=\"none\" stroke=\"#5fd068\" stroke-width=\"1.5\" d=\"%s\"/>\n", svgPath(t, s.path))
	}

	for _, sh := range s.shapes {
		switch sh := sh.(type) {
		case telemetry.LineShape:
			x0, y0 := t.apply(sh.From)
			x1, y1 := t.apply(sh.To)
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
				x0, y0, x1, y1, svgColor(sh.Color), sh.Width)
		case telemetry.CircleShape:
			cx, cy := t.apply(sh.Center)
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"%s\"/>\n",
				cx, cy, sh.Radius*t.scale, svgColor(sh.Color))
		}
	}

	// final pose: body circle and heading
	cx, cy := t.apply(s.final.Position())
	nose := s.final.Position().Add(geom.Pt(math.Cos(s.final.Theta), math.Sin(s.final.Theta)).Mul(s.physical.WheelDistance))
	nx, ny := t.apply(nose)
	fmt.Fprintf(&sb, "<g class=\"robot\" stroke=\"#ffffff\" fill=\"none\" stroke-width=\"2\">\n<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n</g>\n",
		cx, cy, s.physical.WheelDistance/2*t.scale, cx, cy, nx, ny)

	fmt.Fprintf(&sb, "<text x=\"8\" y=\"20\" fill=\"#aaaaaa\" font-family=\"monospace\" font-size=\"14\">%d ticks, %.2fs</text>\n", s.ticks, s.seconds)
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
