package viz

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

func trace(n int) *sim.Output[any] {
	out := &sim.Output[any]{
		DeltaTime: sim.Dur(10 * time.Millisecond),
		Physical:  robot.DefaultPhysical(),
	}
	for i := 0; i <= n; i++ {
		d := telemetry.New()
		d.Logf("tick %d", i)
		d.Draw(telemetry.Line(geom.Pt(float64(i)*0.1, 0), geom.Pt(5, 0), 4, telemetry.Red))
		out.States = append(out.States, sim.Record[any]{
			RobotX:    float64(i) * 0.1,
			BladeOn:   i%2 == 1,
			MotorLeft: 1, MotorRight: 1,
			Debug: d,
		})
	}
	out.States[0].Debug.Renderables = append(out.States[0].Debug.Renderables, "Polygon()")
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Replay, msg tea.Msg) Replay {
	next, _ := m.Update(msg)
	return next.(Replay)
}

func TestFrames(t *testing.T) {
	frames := Frames(trace(3))
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	if frames[0].BadShapes != 1 || len(frames[0].Shapes) != 1 {
		t.Errorf("expected one parsed and one bad shape, got %+v", frames[0])
	}
	if frames[2].Time != 0.02 || frames[2].Pose.X != 0.2 {
		t.Errorf("unexpected frame %+v", frames[2])
	}
}

func TestReplayPlayback(t *testing.T) {
	m := NewReplay("square", trace(5))
	if !m.Playing() || m.Head() != 0 {
		t.Fatal("replay should start playing at the first frame")
	}

	m = update(m, TickMsg(time.Now()))
	if m.Head() != 1 {
		t.Errorf("expected head 1, got %d", m.Head())
	}

	m = update(m, key("+"))
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	if m.Head() != 5 || m.Playing() {
		t.Errorf("expected to stop on the last frame, head=%d playing=%v", m.Head(), m.Playing())
	}

	// play again from the end rewinds
	m = update(m, key(" "))
	if m.Head() != 0 || !m.Playing() {
		t.Errorf("expected restart, head=%d playing=%v", m.Head(), m.Playing())
	}
}

func TestReplayScrub(t *testing.T) {
	m := NewReplay("scrub", trace(5))
	m = update(m, key("]"))
	if m.Playing() || m.Head() != 1 {
		t.Errorf("scrub should pause and step, head=%d", m.Head())
	}
	m = update(m, key("["))
	m = update(m, key("["))
	if m.Head() != 0 {
		t.Errorf("scrub must clamp at 0, got %d", m.Head())
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestReplayView(t *testing.T) {
	m := NewReplay("view", trace(3))
	m = update(m, TickMsg(time.Now()))
	view := m.View()

	for _, want := range []string{"VIEW", "tick 1", "(0.100, 0.000)", "on"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(m, key("t"))
	if m.theme.Name != "retro" {
		t.Errorf("expected retro theme, got %s", m.theme.Name)
	}
}

func TestReplayVelocity(t *testing.T) {
	m := NewReplay("speed", trace(4))
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))

	lin, ang := m.Velocity()
	want := robot.DefaultWheelRadius * robot.DefaultMaxMotorSpeed
	if math.Abs(lin-want) > 1e-9 || ang != 0 {
		t.Errorf("expected %.3f m/s straight ahead, got %.3f m/s %.3f rad/s", want, lin, ang)
	}

	view := m.View()
	for _, want := range []string{"6.28 m/s", "+0.00 rad/s", "▁"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRecordAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.gif")
	r := NewRecorder(path, 0)

	if err := RecordAll(NewReplay("gif", trace(10)), r, 3); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	// 0, 3, 6, 9 and the last
	if r.Frames() != 5 {
		t.Errorf("expected 5 frames, got %d", r.Frames())
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected a gif on disk: %v", err)
	}
}

func TestFpsFor(t *testing.T) {
	if got := fpsFor(10 * time.Millisecond); got != 60 {
		t.Errorf("expected cap at 60, got %d", got)
	}
	if got := fpsFor(100 * time.Millisecond); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := fpsFor(0); got != 30 {
		t.Errorf("expected fallback 30, got %d", got)
	}
}
