package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	charW = 8
	charH = 16
)

// Recorder rasterizes canvas snapshots into an animated GIF.
type Recorder struct {
	Path string
	// hundredths of a second between frames
	Delay  int
	frames []*image.Paletted
}

func NewRecorder(path string, delay int) *Recorder {
	if delay <= 0 {
		delay = 2
	}
	return &Recorder{Path: path, Delay: delay}
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture draws every lit braille dot as a block of pixels.
func (r *Recorder) Capture(c *Canvas) {
	imgW, imgH := c.Width*charW, c.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.RGBA{0x5f, 0xd0, 0x68, 0xff}})
	dotW, dotH := charW/2, charH/4

	w, h := c.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Save() error {
	if len(r.frames) == 0 {
		return errors.New("nothing recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}

	f, err := os.Create(r.Path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecordAll renders the whole replay headless, keeping every n-th frame and
// always the last one.
func RecordAll(m Replay, r *Recorder, every int) error {
	if len(m.frames) == 0 {
		return errors.New("empty trace")
	}
	if every < 1 {
		every = 1
	}
	last := len(m.frames) - 1
	for i := 0; i <= last; i++ {
		if i%every != 0 && i != last {
			continue
		}
		m.head = i
		m.draw()
		r.Capture(m.canvas)
	}
	return r.Save()
}
