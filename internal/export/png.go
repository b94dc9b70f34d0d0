package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func labelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = truetype.Parse(goregular.TTF)
	})
	return font, fontErr
}

var (
	background = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	gridColor  = color.RGBA{0x1f, 0x2f, 0x1f, 0xff}
	swathColor = color.RGBA{0x2e, 0x7d, 0x32, 0x99}
	pathColor  = color.RGBA{0x5f, 0xd0, 0x68, 0xff}
	labelColor = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
)

// RenderImage rasterizes the same scene WriteSVG draws.
func RenderImage[D any](out *sim.Output[D], opts Options) (image.Image, error) {
	if len(out.States) == 0 {
		return nil, fmt.Errorf("empty trace")
	}
	s := newScene(out, opts.Frame)
	t := fit(s.points(), opts)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()

	if opts.Grid {
		lo, hi := t.bounds(opts)
		dc.SetColor(gridColor)
		dc.SetLineWidth(1)
		for x := math.Ceil(lo.X); x <= hi.X; x++ {
			x0, _ := t.apply(geom.Pt(x, 0))
			dc.DrawLine(x0, 0, x0, float64(opts.Height))
		}
		for y := math.Ceil(lo.Y); y <= hi.Y; y++ {
			_, y0 := t.apply(geom.Pt(0, y))
			dc.DrawLine(0, y0, float64(opts.Width), y0)
		}
		dc.Stroke()
	}

	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, run := range bladeRuns(s.path, s.blade) {
		polyline(dc, t, run)
		dc.SetColor(swathColor)
		dc.SetLineWidth(math.Max(2*s.physical.BladeRadius*t.scale, 1))
		dc.Stroke()
	}

	if len(s.path) > 1 {
		polyline(dc, t, s.path)
		dc.SetColor(pathColor)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	for _, sh := range s.shapes {
		switch sh := sh.(type) {
		case telemetry.LineShape:
			x0, y0 := t.apply(sh.From)
			x1, y1 := t.apply(sh.To)
			dc.DrawLine(x0, y0, x1, y1)
			dc.SetColor(rgb(sh.Color))
			dc.SetLineWidth(sh.Width)
			dc.Stroke()
		case telemetry.CircleShape:
			cx, cy := t.apply(sh.Center)
			dc.DrawCircle(cx, cy, sh.Radius*t.scale)
			dc.SetColor(rgb(sh.Color))
			dc.SetLineWidth(1)
			dc.Stroke()
		}
	}

	pos := s.final.Position()
	cx, cy := t.apply(pos)
	nx, ny := t.apply(pos.Add(geom.Pt(math.Cos(s.final.Theta), math.Sin(s.final.Theta)).Mul(s.physical.WheelDistance)))
	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, math.Max(s.physical.WheelDistance/2*t.scale, 3))
	dc.Stroke()
	dc.DrawLine(cx, cy, nx, ny)
	dc.Stroke()

	f, err := labelFont()
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 14}))
	dc.SetColor(labelColor)
	dc.DrawString(fmt.Sprintf("%d ticks, %.2fs", s.ticks, s.seconds), 8, 20)

	return dc.Image(), nil
}

// WritePNG encodes RenderImage's result.
func WritePNG[D any](w io.Writer, out *sim.Output[D], opts Options) error {
	img, err := RenderImage(out, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

func polyline(dc *gg.Context, t transform, pts []geom.Point) {
	dc.NewSubPath()
	for i, p := range pts {
		x, y := t.apply(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
}

func rgb(c telemetry.Color) color.Color {
	return color.RGBA{c.R, c.G, c.B, 0xff}
}
