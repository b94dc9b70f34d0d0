package config

import (
	"math"
	"sort"
	"time"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

// Script is a named instruction list with the run length it is meant for.
type Script struct {
	Description  string
	Length       sim.Length
	Instructions []robot.Instruction
}

var Robots = map[string]robot.Physical{
	"default": robot.DefaultPhysical(),
	"compact": {
		WheelDistance: 0.40,
		WheelRadius:   0.10,
		MaxMotorSpeed: 4 * math.Pi,
		BladeRadius:   0.15,
	},
	"wide": {
		WheelDistance: 1.00,
		WheelRadius:   0.25,
		MaxMotorSpeed: 3 * 2 * math.Pi,
		BladeRadius:   0.50,
	},
}

var Scripts = map[string]Script{
	"idle": {
		Description: "no instructions",
		Length:      sim.RunIndefinitely(),
	},
	"goto": {
		Description: "drive to a single point ahead",
		Length:      sim.RunIndefinitely(),
		Instructions: []robot.Instruction{
			robot.NewGotoPoint(5, 0),
		},
	},
	"square": {
		Description: "cut the outline of a 2m square",
		Length:      sim.RunIndefinitely(),
		Instructions: []robot.Instruction{
			robot.NewBladeOn(),
			robot.NewGotoPoint(2, 0),
			robot.NewGotoPoint(2, 2),
			robot.NewGotoPoint(0, 2),
			robot.NewGotoPoint(0, 0),
			robot.NewBladeOff(),
		},
	},
	"stripes": {
		Description:  "mow a 4x2m patch in back and forth stripes",
		Length:       sim.RunIndefinitely(),
		Instructions: stripes(geom.Pt(0, 0), 4, 2, 0.5),
	},
	"bezier": {
		Description: "follow an S curve with the blade on",
		Length:      sim.RunIndefinitely(),
		Instructions: []robot.Instruction{
			robot.NewBladeOn(),
			robot.NewCubicBezier(geom.Pt(0, 0), geom.Pt(3, 3), geom.Pt(3, -3), geom.Pt(6, 0)),
			robot.NewBladeOff(),
		},
	},
	"blade": {
		Description: "toggle the blade without moving",
		Length:      sim.RunSteps(4),
		Instructions: []robot.Instruction{
			robot.NewBladeOn(),
			robot.NewBladeOff(),
			robot.NewBladeOn(),
			robot.NewBladeOff(),
		},
	},
	"timed": {
		Description: "drive a long line for five seconds only",
		Length:      sim.RunFor(5 * time.Second),
		Instructions: []robot.Instruction{
			robot.NewLine(geom.Pt(0, 0), geom.Pt(50, 0)),
		},
	},
}

// stripes covers a width x height rectangle with horizontal lines spaced
// pitch apart, alternating direction.
func stripes(origin geom.Point, width, height, pitch float64) []robot.Instruction {
	out := []robot.Instruction{robot.NewBladeOn()}
	n := int(math.Floor(height/pitch)) + 1
	for i := 0; i < n; i++ {
		y := origin.Y + float64(i)*pitch
		a, b := geom.Pt(origin.X, y), geom.Pt(origin.X+width, y)
		if i%2 == 1 {
			a, b = b, a
		}
		out = append(out, robot.NewLine(a, b))
	}
	return append(out, robot.NewBladeOff())
}

// GetPreset builds a config from a script and a robot preset. Either name may
// be empty to take the defaults.
func GetPreset(script, bot string) *Config {
	cfg := DefaultConfig()
	if script != "" {
		s, ok := Scripts[script]
		if !ok {
			return nil
		}
		cfg.Instructions = append([]robot.Instruction(nil), s.Instructions...)
		cfg.SimLength = s.Length
	}
	if bot != "" {
		p, ok := Robots[bot]
		if !ok {
			return nil
		}
		cfg.Physical = p
	}
	return cfg
}

// ListPresets returns the sorted preset names of a group: "scripts" or
// "robots".
func ListPresets(group string) []string {
	var names []string
	switch group {
	case "scripts":
		for name := range Scripts {
			names = append(names, name)
		}
	case "robots":
		for name := range Robots {
			names = append(names, name)
		}
	default:
		return nil
	}
	sort.Strings(names)
	return names
}
