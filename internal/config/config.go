package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mowsim/internal/controllers"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

const (
	DefaultDt         = 10 * time.Millisecond
	DefaultController = "waypoint"
	DefaultIntegrator = "euler"
	DefaultKp         = 4.0
	DefaultKi         = 0.0
	DefaultKd         = 0.05
	DefaultManualL    = 1.0
	DefaultManualR    = 0.5
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

type Format int

const (
	YAML Format = iota
	JSON
)

// FormatOf picks the encoding from a file extension. Anything that is not
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Config is a run description: the simulation input plus the choice of
// controller and integrator. The input fields sit at the top level, so a
// plain simulation input document is also a valid config.
type Config struct {
	Controller       string             `yaml:"controller" json:"controller,omitempty"`
	Integrator       string             `yaml:"integrator" json:"integrator,omitempty"`
	ControllerParams controllers.Params `yaml:"controller_params" json:"controller_params"`
	PID              PIDConfig          `yaml:"pid" json:"pid"`
	Manual           ManualConfig       `yaml:"manual" json:"manual"`
	sim.Input        `yaml:",inline"`
}

type PIDConfig struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`
}

type ManualConfig struct {
	Left  float64 `yaml:"left" json:"left"`
	Right float64 `yaml:"right" json:"right"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller:       DefaultController,
		Integrator:       DefaultIntegrator,
		ControllerParams: controllers.DefaultParams(),
		PID:              PIDConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		Manual:           ManualConfig{Left: DefaultManualL, Right: DefaultManualR},
		Input: sim.Input{
			Instructions: []robot.Instruction{},
			SimLength:    sim.RunIndefinitely(),
			DeltaTime:    sim.Dur(DefaultDt),
			Physical:     robot.DefaultPhysical(),
		},
	}
}

// Load reads a config file on top of the defaults and validates it. A path of
// "-" reads JSON from stdin.
func Load(path string) (*Config, error) {
	if path == "-" {
		return Decode(os.Stdin, JSON)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Decode(r io.Reader, format Format) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch format {
	case JSON:
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	if FormatOf(path) == JSON {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem at once. The harness itself would run zero
// steps; a config asking for that is almost certainly a mistake.
func (c *Config) Validate() error {
	err := c.Input.Validate()
	if c.SimLength.Kind == sim.Steps && c.SimLength.Steps == 0 {
		err = multierr.Append(err, fmt.Errorf("sim_length: steps must be at least 1"))
	}
	if c.Controller == "" {
		err = multierr.Append(err, fmt.Errorf("controller must not be empty"))
	}
	if c.Integrator == "" {
		err = multierr.Append(err, fmt.Errorf("integrator must not be empty"))
	}
	if e := c.ControllerParams.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("controller_params: %w", e))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Clone returns a deep enough copy that the instruction slice can be edited
// independently.
func (c *Config) Clone() *Config {
	out := *c
	out.Instructions = append([]robot.Instruction(nil), c.Instructions...)
	return &out
}
