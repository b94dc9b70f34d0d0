package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type LengthKind int

const (
	Indefinite LengthKind = iota
	Timed
	Steps
)

func (k LengthKind) String() string {
	switch k {
	case Indefinite:
		return "Indefinite"
	case Timed:
		return "Timed"
	case Steps:
		return "Steps"
	}
	return fmt.Sprintf("LengthKind(%d)", int(k))
}

// Length is the termination policy of a run.
type Length struct {
	Kind     LengthKind
	Duration time.Duration
	Steps    int
}

func RunIndefinitely() Length       { return Length{Kind: Indefinite} }
func RunFor(d time.Duration) Length { return Length{Kind: Timed, Duration: d} }
func RunSteps(n int) Length         { return Length{Kind: Steps, Steps: n} }

// Ticks converts the policy into a tick budget. ok is false for Indefinite,
// where only the controller can end the run.
func (l Length) Ticks(dt time.Duration) (n int, ok bool) {
	switch l.Kind {
	case Timed:
		return int(math.Ceil(l.Duration.Seconds() / dt.Seconds())), true
	case Steps:
		return l.Steps, true
	}
	return 0, false
}

func (l Length) Validate() error {
	switch l.Kind {
	case Indefinite:
		return nil
	case Timed:
		if l.Duration <= 0 {
			return fmt.Errorf("%w: timed duration must be positive, got %v", ErrInvalidLength, l.Duration)
		}
		return nil
	case Steps:
		if l.Steps < 0 {
			return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidLength, l.Steps)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %d", ErrInvalidLength, int(l.Kind))
}

func (l Length) String() string {
	switch l.Kind {
	case Timed:
		return fmt.Sprintf("Timed(%v)", l.Duration)
	case Steps:
		return fmt.Sprintf("Steps(%d)", l.Steps)
	}
	return l.Kind.String()
}

func (l Length) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case Timed:
		return json.Marshal(map[string]Duration{"Timed": {l.Duration}})
	case Steps:
		return json.Marshal(map[string]int{"Steps": l.Steps})
	}
	return json.Marshal("Indefinite")
}

func (l *Length) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return l.set(name, nil)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("sim_length: expected string or object: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("sim_length: expected exactly one tag, got %d", len(obj))
	}
	for name, raw := range obj {
		return l.set(name, func(v interface{}) error { return json.Unmarshal(raw, v) })
	}
	return nil
}

func (l Length) MarshalYAML() (interface{}, error) {
	switch l.Kind {
	case Timed:
		return map[string]string{"timed": l.Duration.String()}, nil
	case Steps:
		return map[string]int{"steps": l.Steps}, nil
	}
	return "indefinite", nil
}

func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return l.set(node.Value, nil)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: sim_length needs exactly one tag", node.Line)
		}
		return l.set(node.Content[0].Value, node.Content[1].Decode)
	}
	return fmt.Errorf("line %d: sim_length must be a name or a single-key map", node.Line)
}

// set fills l from a tag name and an optional payload decoder. Tags are
// matched case-insensitively so YAML files can use lower case.
func (l *Length) set(name string, decode func(v interface{}) error) error {
	switch strings.ToLower(name) {
	case "indefinite":
		*l = RunIndefinitely()
		return nil
	case "timed":
		if decode == nil {
			return fmt.Errorf("%w: Timed needs a duration", ErrInvalidLength)
		}
		var d Duration
		if err := decode(&d); err != nil {
			return fmt.Errorf("Timed: %w", err)
		}
		*l = RunFor(d.Duration)
		return nil
	case "steps":
		if decode == nil {
			return fmt.Errorf("%w: Steps needs a count", ErrInvalidLength)
		}
		var n int
		if err := decode(&n); err != nil {
			return fmt.Errorf("Steps: %w", err)
		}
		*l = RunSteps(n)
		return nil
	}
	return fmt.Errorf("%w: unknown policy %q", ErrInvalidLength, name)
}
