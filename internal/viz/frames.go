package viz

import (
	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// Frame is one trace record prepared for display.
type Frame struct {
	Time     float64
	Pose     robot.Pose
	Blade    bool
	Left     float64
	Right    float64
	Messages []string
	Shapes   []telemetry.Renderable
	// descriptors telemetry.Parse rejected
	BadShapes int
}

// Frames converts a trace of any controller into display frames.
func Frames[D any](out *sim.Output[D]) []Frame {
	times := out.Times()
	frames := make([]Frame, len(out.States))
	for i, r := range out.States {
		f := Frame{
			Time:     times[i],
			Pose:     r.Pose(),
			Blade:    r.BladeOn,
			Left:     r.MotorLeft,
			Right:    r.MotorRight,
			Messages: r.Debug.Messages,
		}
		for _, s := range r.Debug.Renderables {
			shape, err := telemetry.Parse(s)
			if err != nil {
				f.BadShapes++
				continue
			}
			f.Shapes = append(f.Shapes, shape)
		}
		frames[i] = f
	}
	return frames
}

// extent collects every point the viewport has to show.
func extent(frames []Frame) []geom.Point {
	pts := make([]geom.Point, 0, len(frames))
	for _, f := range frames {
		pts = append(pts, f.Pose.Position())
		for _, s := range f.Shapes {
			switch s := s.(type) {
			case telemetry.LineShape:
				pts = append(pts, s.From, s.To)
			case telemetry.CircleShape:
				pts = append(pts, s.Center)
			}
		}
	}
	return pts
}
