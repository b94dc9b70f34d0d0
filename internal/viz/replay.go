package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/models"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

const (
	width        = 72
	height       = 24
	graphHistory = 120
	maxMessages  = 8
	maxSpeed     = 64
)

type TickMsg time.Time

// Replay steps through a recorded trace.
type Replay struct {
	title    string
	frames   []Frame
	physical robot.Physical
	drive    *models.DiffDrive
	canvas   *Canvas
	view     Viewport
	head     int
	playing  bool
	// frames advanced per tick
	speed     int
	fps       int
	theme     Theme
	showHelp  bool
	recorder  *Recorder
	recordErr error
}

// NewReplay builds a replay over a finished run.
func NewReplay[D any](title string, out *sim.Output[D]) Replay {
	frames := Frames(out)
	canvas := NewCanvas(width, height)
	return Replay{
		title:    title,
		frames:   frames,
		physical: out.Physical,
		drive:    models.NewDiffDrive(out.Physical),
		canvas:   canvas,
		view:     FitViewport(canvas, extent(frames), 0.05),
		playing:  true,
		speed:    1,
		fps:      fpsFor(out.DeltaTime.Duration),
		theme:    ThemeLawn,
	}
}

// fpsFor plays back close to real time without exceeding 60 frames a second.
func fpsFor(dt time.Duration) int {
	if dt <= 0 {
		return 30
	}
	fps := int(math.Round(float64(time.Second) / float64(dt)))
	return geom.Clamp(fps, 1, 60)
}

func (m Replay) WithTheme(name string) Replay {
	m.theme = GetTheme(name)
	return m
}

// WithRecorder captures every drawn frame until the replay quits.
func (m Replay) WithRecorder(r *Recorder) Replay {
	m.recorder = r
	return m
}

func (m Replay) Head() int { return m.head }

func (m Replay) Playing() bool { return m.playing }

func (m Replay) Frame() Frame { return m.frames[m.head] }

func (m Replay) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return m.tick()
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.finishRecording()
			return m, tea.Quit
		case " ":
			if m.head == len(m.frames)-1 {
				m.head = 0
			}
			m.playing = !m.playing
		case "r", "home":
			m.head = 0
		case "end":
			m.head = len(m.frames) - 1
			m.playing = false
		case "[", "left", "h":
			m.scrub(-m.speed)
		case "]", "right", "l":
			m.scrub(m.speed)
		case "+", "=", "up", "k":
			m.speed = geom.Clamp(m.speed*2, 1, maxSpeed)
		case "-", "_", "down", "j":
			m.speed = geom.Clamp(m.speed/2, 1, maxSpeed)
		case "t":
			m.theme = nextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		wasPlaying := m.playing
		if m.playing {
			m.advance(m.speed)
		}
		if m.recorder != nil && wasPlaying {
			m.draw()
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Replay) finishRecording() {
	if m.recorder != nil {
		m.recordErr = m.recorder.Save()
	}
}

// Err reports a failure saving the recording.
func (m Replay) Err() error { return m.recordErr }

// advance moves forward and stops on the last frame.
func (m *Replay) advance(n int) {
	m.head += n
	if m.head >= len(m.frames)-1 {
		m.head = len(m.frames) - 1
		m.playing = false
	}
}

// scrub pauses and moves the play head.
func (m *Replay) scrub(n int) {
	m.playing = false
	m.head = geom.Clamp(m.head+n, 0, len(m.frames)-1)
}

func (m *Replay) draw() {
	m.canvas.Clear()
	if len(m.frames) == 0 {
		return
	}

	trail := make([]geom.Point, m.head+1)
	for i := range trail {
		trail[i] = m.frames[i].Pose.Position()
	}
	m.view.Path(m.canvas, trail)

	f := m.frames[m.head]
	for _, s := range f.Shapes {
		switch s := s.(type) {
		case telemetry.LineShape:
			m.view.Line(m.canvas, s.From, s.To)
		case telemetry.CircleShape:
			x, y := m.view.Project(s.Center)
			m.canvas.DrawCircle(x, y, m.view.Dots(s.Radius))
		}
	}

	// body and heading
	pos := f.Pose.Position()
	x, y := m.view.Project(pos)
	r := m.view.Dots(m.physical.WheelDistance / 2)
	m.canvas.DrawCircle(x, y, geom.Clamp(r, 1, 8))
	nose := pos.Add(geom.Pt(math.Cos(f.Pose.Theta), math.Sin(f.Pose.Theta)).Mul(m.physical.WheelDistance))
	m.view.Line(m.canvas, pos, nose)
	if f.Blade {
		m.canvas.DrawCircle(x, y, geom.Clamp(m.view.Dots(m.physical.BladeRadius), 1, 8)+1)
	}
}

func (m Replay) status() string {
	switch {
	case m.recorder != nil:
		return StatusRecording.Render("● REC")
	case m.playing:
		return StatusPlaying.Render(fmt.Sprintf("PLAYING x%d", m.speed))
	case m.head == len(m.frames)-1:
		return StatusPaused.Render("END")
	default:
		return StatusPaused.Render(fmt.Sprintf("PAUSED x%d", m.speed))
	}
}

func (m Replay) View() string {
	if len(m.frames) == 0 {
		return "empty trace\n"
	}
	m.draw()

	canvasView := canvasStyle.Foreground(m.theme.Path).Render(m.canvas.String())
	f := m.frames[m.head]

	var s strings.Builder
	header := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).MarginBottom(1)
	s.WriteString(header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n")
	s.WriteString(ProgressBar(float64(m.head)/float64(max(len(m.frames)-1, 1)), 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d / %d", m.head, len(m.frames)-1))
	row("Time", fmt.Sprintf("%.2fs", f.Time))
	row("Position", fmt.Sprintf("(%.3f, %.3f)", f.Pose.X, f.Pose.Y))
	row("Heading", fmt.Sprintf("%.1f°", geom.Degrees(f.Pose.Theta)))
	row("Blade", map[bool]string{true: "on", false: "off"}[f.Blade])
	row("Motors", fmt.Sprintf("%+5.2f %+5.2f", f.Left, f.Right))
	lin, ang := m.Velocity()
	row("Speed", fmt.Sprintf("%.2f m/s %+.2f rad/s", lin, ang))
	if trail := m.speedTrail(); len(trail) > 1 {
		row("", Sparkline(trail, 30))
	}
	if f.BadShapes > 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(fmt.Sprintf("%d unreadable renderables", f.BadShapes)) + "\n")
	}

	if chart := m.motorChart(); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(Separator(40) + "\n")
	msgs := f.Messages
	if len(msgs) > maxMessages {
		msgs = msgs[:maxMessages]
	}
	for _, msg := range msgs {
		s.WriteString(messageStyle.Render(msg) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("SP:play [ ]:step +/-:speed T:theme ?:help Q:quit"))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

// Velocity is the forward speed and yaw rate the motors command at the head.
func (m Replay) Velocity() (linear, angular float64) {
	f := m.frames[m.head]
	return m.drive.Velocities(robot.Actuation{MotorLeft: f.Left, MotorRight: f.Right})
}

func (m Replay) speedTrail() []float64 {
	lo := max(0, m.head-graphHistory)
	trail := make([]float64, 0, m.head-lo+1)
	for _, f := range m.frames[lo : m.head+1] {
		v, _ := m.drive.Velocities(robot.Actuation{MotorLeft: f.Left, MotorRight: f.Right})
		trail = append(trail, v)
	}
	return trail
}

func (m Replay) motorChart() string {
	lo := max(0, m.head-graphHistory)
	if m.head-lo < 2 {
		return ""
	}
	left := make([]float64, 0, m.head-lo+1)
	right := make([]float64, 0, m.head-lo+1)
	for _, f := range m.frames[lo : m.head+1] {
		left = append(left, f.Left)
		right = append(right, f.Right)
	}
	return asciigraph.PlotMany([][]float64{left, right},
		asciigraph.Height(5),
		asciigraph.Width(30),
		asciigraph.LowerBound(-1),
		asciigraph.UpperBound(1),
		asciigraph.Caption("motor power L/R"))
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  R/Home   - Rewind to start          ║
║  End      - Jump to last tick        ║
║  [ ] ← →  - Step by current speed    ║
║  + -      - Double/halve speed       ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// RunReplay shows the replay full screen until the user quits.
func RunReplay(m Replay) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if r, ok := final.(Replay); ok {
		return r.Err()
	}
	return nil
}
