package export

import (
	"math"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// Options controls both image writers.
type Options struct {
	Width, Height int
	// fraction of the larger extent added on every side
	Margin float64
	// record whose renderables are drawn; negative counts from the end
	Frame int
	// draw a 1m grid
	Grid bool
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, Margin: 0.08, Frame: -1, Grid: true}
}

// scene is a trace reduced to what gets drawn, in world coordinates.
type scene struct {
	path     []geom.Point
	blade    []bool
	final    robot.Pose
	physical robot.Physical
	shapes   []telemetry.Renderable
	ticks    int
	seconds  float64
}

func newScene[D any](out *sim.Output[D], frame int) scene {
	s := scene{
		path:     make([]geom.Point, len(out.States)),
		blade:    make([]bool, len(out.States)),
		physical: out.Physical,
		ticks:    out.Ticks(),
	}
	for i, r := range out.States {
		s.path[i] = r.Pose().Position()
		s.blade[i] = r.BladeOn
	}
	if len(out.States) == 0 {
		return s
	}
	s.final = out.Final().Pose()
	s.seconds = float64(s.ticks) * out.DeltaTime.Seconds()

	if frame < 0 {
		frame += len(out.States)
	}
	frame = geom.Clamp(frame, 0, len(out.States)-1)
	for _, d := range out.States[frame].Debug.Renderables {
		if shape, err := telemetry.Parse(d); err == nil {
			s.shapes = append(s.shapes, shape)
		}
	}
	return s
}

func (s scene) points() []geom.Point {
	pts := append([]geom.Point(nil), s.path...)
	for _, sh := range s.shapes {
		switch sh := sh.(type) {
		case telemetry.LineShape:
			pts = append(pts, sh.From, sh.To)
		case telemetry.CircleShape:
			pts = append(pts, sh.Center.Add(geom.Pt(sh.Radius, sh.Radius)), sh.Center.Sub(geom.Pt(sh.Radius, sh.Radius)))
		}
	}
	return pts
}

// transform maps metres to image pixels, y up, with a uniform scale.
type transform struct {
	min        geom.Point
	scale      float64
	offX, offY float64
	height     float64
}

func fit(pts []geom.Point, opts Options) transform {
	min, max := geom.Pt(-1, -1), geom.Pt(1, 1)
	if len(pts) > 0 {
		min, max = pts[0], pts[0]
		for _, p := range pts[1:] {
			min = geom.Pt(math.Min(min.X, p.X), math.Min(min.Y, p.Y))
			max = geom.Pt(math.Max(max.X, p.X), math.Max(max.Y, p.Y))
		}
	}
	span := math.Max(math.Max(max.X-min.X, max.Y-min.Y), 1)
	pad := span * opts.Margin
	min = geom.Pt(min.X-pad, min.Y-pad)
	max = geom.Pt(max.X+pad, max.Y+pad)

	w, h := float64(opts.Width), float64(opts.Height)
	scale := math.Min(w/(max.X-min.X), h/(max.Y-min.Y))
	return transform{
		min:    min,
		scale:  scale,
		offX:   (w - scale*(max.X-min.X)) / 2,
		offY:   (h - scale*(max.Y-min.Y)) / 2,
		height: h,
	}
}

func (t transform) apply(p geom.Point) (float64, float64) {
	return t.offX + (p.X-t.min.X)*t.scale, t.height - t.offY - (p.Y-t.min.Y)*t.scale
}

// bounds is the visible world rectangle.
func (t transform) bounds(opts Options) (geom.Point, geom.Point) {
	lo := geom.Pt(t.min.X-t.offX/t.scale, t.min.Y-t.offY/t.scale)
	return lo, lo.Add(geom.Pt(float64(opts.Width)/t.scale, float64(opts.Height)/t.scale))
}

// bladeRuns splits the path into contiguous stretches driven with the blade on.
func bladeRuns(path []geom.Point, blade []bool) [][]geom.Point {
	var runs [][]geom.Point
	var cur []geom.Point
	for i := 1; i < len(path); i++ {
		if blade[i] {
			if cur == nil {
				cur = []geom.Point{path[i-1]}
			}
			cur = append(cur, path[i])
			continue
		}
		if cur != nil {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if cur != nil {
		runs = append(runs, cur)
	}
	return runs
}
