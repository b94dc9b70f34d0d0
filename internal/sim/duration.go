package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that travels as {"secs": N, "nanos": N} in JSON.
// Plain numbers (seconds) and Go duration strings are accepted on input.
type Duration struct {
	time.Duration
}

func Dur(d time.Duration) Duration { return Duration{d} }

func Seconds(s float64) Duration {
	return Duration{time.Duration(math.Round(s * float64(time.Second)))}
}

type wireDuration struct {
	Secs  int64 `json:"secs" yaml:"secs"`
	Nanos int64 `json:"nanos" yaml:"nanos"`
}

func (d Duration) wire() wireDuration {
	return wireDuration{
		Secs:  int64(d.Duration / time.Second),
		Nanos: int64(d.Duration % time.Second),
	}
}

func (w wireDuration) duration() Duration {
	return Duration{time.Duration(w.Secs)*time.Second + time.Duration(w.Nanos)}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var w wireDuration
	if err := json.Unmarshal(data, &w); err == nil {
		*d = w.duration()
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err == nil {
		*d = Seconds(secs)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration: expected {secs, nanos}, seconds or string: %w", err)
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := parseDuration(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = v
		return nil
	case yaml.MappingNode:
		var w wireDuration
		if err := node.Decode(&w); err != nil {
			return err
		}
		*d = w.duration()
		return nil
	}
	return fmt.Errorf("line %d: duration must be a scalar or {secs, nanos}", node.Line)
}

// parseDuration accepts "10ms" style strings and bare numbers of seconds.
func parseDuration(s string) (Duration, error) {
	if v, err := time.ParseDuration(s); err == nil {
		return Duration{v}, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Duration{}, fmt.Errorf("duration %q: not a duration or number of seconds", s)
	}
	return Seconds(secs), nil
}
