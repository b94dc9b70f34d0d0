package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

var instructionCmp = cmp.AllowUnexported(robot.Instruction{})

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != "waypoint" {
		t.Errorf("expected controller waypoint, got %s", cfg.Controller)
	}
	if cfg.DeltaTime.Duration <= 0 {
		t.Error("delta_time should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
controller: waypoint
integrator: rk4
delta_time: 5ms
sim_length:
  steps: 300
wheel_distance: 0.5
instructions:
  - BladeOn
  - GotoPoint: [1, 2]
  - Line:
      start: [0, 0]
      end: [3, 0]
  - BladeOff
controller_params:
  correction_gain: 2.5
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.DeltaTime.Duration != 5*time.Millisecond {
		t.Errorf("expected dt 5ms, got %v", cfg.DeltaTime)
	}
	if cfg.SimLength != sim.RunSteps(300) {
		t.Errorf("expected Steps(300), got %v", cfg.SimLength)
	}
	if cfg.WheelDistance != 0.5 {
		t.Errorf("expected wheel distance 0.5, got %f", cfg.WheelDistance)
	}
	// untouched fields keep their defaults
	if cfg.WheelRadius != robot.DefaultWheelRadius {
		t.Errorf("expected default wheel radius, got %f", cfg.WheelRadius)
	}
	if cfg.ControllerParams.CorrectionGain != 2.5 || cfg.ControllerParams.ReachDistance != 0.1 {
		t.Errorf("unexpected controller params %+v", cfg.ControllerParams)
	}

	want := []robot.Instruction{
		robot.NewBladeOn(),
		robot.NewGotoPoint(1, 2),
		robot.NewLine(geom.Pt(0, 0), geom.Pt(3, 0)),
		robot.NewBladeOff(),
	}
	if diff := cmp.Diff(want, cfg.Instructions, instructionCmp); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSimulationInputJSON(t *testing.T) {
	doc := `{
  "instructions": ["BladeOn", {"GotoPoint": [5.0, 0.0]}, {"CubicBezier": {"p0": [0,0], "p1": [1,1], "p2": [2,-1], "p3": [3,0]}}],
  "sim_length": {"Timed": {"secs": 12, "nanos": 0}},
  "delta_time": {"secs": 0, "nanos": 10000000},
  "wheel_distance": 0.65,
  "wheel_radius": 0.2,
  "max_motor_speed": 31.41592653589793,
  "blade_radius": 0.25
}`
	cfg, err := Decode(strings.NewReader(doc), JSON)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if cfg.SimLength != sim.RunFor(12*time.Second) {
		t.Errorf("expected Timed(12s), got %v", cfg.SimLength)
	}
	if len(cfg.Instructions) != 3 || cfg.Instructions[2].Kind() != robot.CubicBezier {
		t.Errorf("unexpected instructions %v", cfg.Instructions)
	}
	if cfg.Controller != DefaultController {
		t.Errorf("expected default controller, got %q", cfg.Controller)
	}
}

func TestValidateCollectsEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeltaTime = sim.Dur(0)
	cfg.WheelRadius = -1
	cfg.BladeRadius = -0.1
	cfg.SimLength = sim.RunSteps(0)
	cfg.ControllerParams.ReachDistance = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	msg := err.Error()
	for _, field := range []string{"delta_time", "wheel_radius", "blade_radius", "steps", "reach_distance"} {
		if !strings.Contains(msg, field) {
			t.Errorf("expected %q in error, got %s", field, msg)
		}
	}
}

func TestValidateRejectsBadLengths(t *testing.T) {
	tests := []struct {
		name   string
		length sim.Length
	}{
		{"negative steps", sim.RunSteps(-3)},
		{"zero steps", sim.RunSteps(0)},
		{"zero duration", sim.RunFor(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SimLength = tt.length
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateNonFinite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instructions = []robot.Instruction{
		robot.NewGotoPoint(1, 1),
		robot.NewGotoPoint(math.Inf(1), 0),
		robot.NewLine(geom.Pt(0, math.NaN()), geom.Pt(1, 0)),
	}

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	for _, want := range []string{"instruction 1", "instruction 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %s", want, err)
		}
	}
	if strings.Contains(err.Error(), "instruction 0") {
		t.Errorf("finite instruction reported: %s", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"instructions": [{"Teleport": [1, 2]}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("expected error naming the file, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"run.yaml", "run.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset("bezier", "compact")
			cfg.Integrator = "rk4"
			cfg.SimLength = sim.RunFor(1500 * time.Millisecond)

			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, cfg); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if diff := cmp.Diff(cfg, got, instructionCmp); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("square", "")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Instructions) != 6 {
		t.Errorf("expected 6 instructions, got %d", len(cfg.Instructions))
	}
	if cfg.Physical != robot.DefaultPhysical() {
		t.Errorf("expected default robot, got %+v", cfg.Physical)
	}

	cfg = GetPreset("", "wide")
	if cfg == nil || cfg.WheelDistance != 1.0 {
		t.Errorf("expected wide robot, got %+v", cfg)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent", ""); cfg != nil {
		t.Error("expected nil for nonexistent script")
	}
	if cfg := GetPreset("square", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent robot")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, script := range ListPresets("scripts") {
		for _, bot := range ListPresets("robots") {
			if err := GetPreset(script, bot).Validate(); err != nil {
				t.Errorf("%s/%s: %v", script, bot, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	scripts := ListPresets("scripts")
	if len(scripts) == 0 {
		t.Error("expected script presets")
	}
	for i := 1; i < len(scripts); i++ {
		if scripts[i-1] > scripts[i] {
			t.Errorf("expected sorted names, got %v", scripts)
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestStripes(t *testing.T) {
	script := stripes(geom.Pt(0, 0), 4, 1, 0.5)

	if len(script) != 5 {
		t.Fatalf("expected blade on, 3 lines, blade off; got %v", script)
	}
	second := script[2].Points()
	if !second[0].Equal(geom.Pt(4, 0.5)) || !second[1].Equal(geom.Pt(0, 0.5)) {
		t.Errorf("expected the second stripe to run backwards, got %v", second)
	}
}
