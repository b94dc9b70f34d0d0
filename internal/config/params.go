package config

import (
	"fmt"
	"sort"
)

// tunables maps a parameter name to the config field it controls.
var tunables = map[string]func(c *Config) *float64{
	"turn_threshold":     func(c *Config) *float64 { return &c.ControllerParams.TurnThreshold },
	"turn_exponent":      func(c *Config) *float64 { return &c.ControllerParams.TurnExponent },
	"turn_divisor":       func(c *Config) *float64 { return &c.ControllerParams.TurnDivisor },
	"forward_saturation": func(c *Config) *float64 { return &c.ControllerParams.ForwardSaturation },
	"correction_gain":    func(c *Config) *float64 { return &c.ControllerParams.CorrectionGain },
	"reach_distance":     func(c *Config) *float64 { return &c.ControllerParams.ReachDistance },
	"kp":                 func(c *Config) *float64 { return &c.PID.Kp },
	"ki":                 func(c *Config) *float64 { return &c.PID.Ki },
	"kd":                 func(c *Config) *float64 { return &c.PID.Kd },
	"manual_left":        func(c *Config) *float64 { return &c.Manual.Left },
	"manual_right":       func(c *Config) *float64 { return &c.Manual.Right },
	"wheel_distance":     func(c *Config) *float64 { return &c.WheelDistance },
	"wheel_radius":       func(c *Config) *float64 { return &c.WheelRadius },
	"max_motor_speed":    func(c *Config) *float64 { return &c.MaxMotorSpeed },
	"blade_radius":       func(c *Config) *float64 { return &c.BladeRadius },
}

// SetParam sets a numeric parameter by name.
func (c *Config) SetParam(name string, v float64) error {
	field, ok := tunables[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	*field(c) = v
	return nil
}

func (c *Config) GetParam(name string) (float64, error) {
	field, ok := tunables[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	return *field(c), nil
}

// WithParams returns a copy of c with every parameter in params applied.
func (c *Config) WithParams(params map[string]float64) (*Config, error) {
	out := c.Clone()
	for name, v := range params {
		if err := out.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func ParamNames() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
