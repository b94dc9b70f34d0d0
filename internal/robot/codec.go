package robot

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/mowsim/internal/geom"
	"gopkg.in/yaml.v3"
)

// Wire shapes, shared by JSON and YAML:
//
//	BladeOn
//	GotoPoint: [x, y]
//	Line: {start: [x, y], end: [x, y]}
//	CubicBezier: {p0: [x, y], p1: ..., p2: ..., p3: ...}

type linePayload struct {
	Start geom.Point `json:"start" yaml:"start"`
	End   geom.Point `json:"end" yaml:"end"`
}

type bezierPayload struct {
	P0 geom.Point `json:"p0" yaml:"p0"`
	P1 geom.Point `json:"p1" yaml:"p1"`
	P2 geom.Point `json:"p2" yaml:"p2"`
	P3 geom.Point `json:"p3" yaml:"p3"`
}

func (i Instruction) payload() interface{} {
	switch i.kind {
	case GotoPoint:
		return i.pts[0]
	case Line:
		return linePayload{Start: i.pts[0], End: i.pts[1]}
	case CubicBezier:
		return bezierPayload{P0: i.pts[0], P1: i.pts[1], P2: i.pts[2], P3: i.pts[3]}
	}
	return nil
}

// build turns a decoded tag and a payload decoder into an Instruction.
func build(name string, decode func(v interface{}) error) (Instruction, error) {
	kind, err := parseKind(name)
	if err != nil {
		return Instruction{}, err
	}
	if decode == nil {
		if pointCount[kind] > 0 {
			return Instruction{}, fmt.Errorf("%s needs a payload", kind)
		}
		return Instruction{kind: kind}, nil
	}

	switch kind {
	case GotoPoint:
		var p geom.Point
		if err := decode(&p); err != nil {
			return Instruction{}, fmt.Errorf("GotoPoint: %w", err)
		}
		return NewGotoPoint(p.X, p.Y), nil
	case Line:
		var l linePayload
		if err := decode(&l); err != nil {
			return Instruction{}, fmt.Errorf("Line: %w", err)
		}
		return NewLine(l.Start, l.End), nil
	case CubicBezier:
		var b bezierPayload
		if err := decode(&b); err != nil {
			return Instruction{}, fmt.Errorf("CubicBezier: %w", err)
		}
		return NewCubicBezier(b.P0, b.P1, b.P2, b.P3), nil
	}
	return Instruction{kind: kind}, nil
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	if !i.IsMotion() {
		return json.Marshal(i.kind.String())
	}
	return json.Marshal(map[string]interface{}{i.kind.String(): i.payload()})
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, err := build(name, nil)
		if err != nil {
			return err
		}
		*i = v
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("instruction: expected string or object: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("instruction: expected exactly one tag, got %d", len(obj))
	}
	for name, raw := range obj {
		v, err := build(name, func(v interface{}) error { return json.Unmarshal(raw, v) })
		if err != nil {
			return err
		}
		*i = v
	}
	return nil
}

func (i Instruction) MarshalYAML() (interface{}, error) {
	if !i.IsMotion() {
		return i.kind.String(), nil
	}
	return map[string]interface{}{i.kind.String(): i.payload()}, nil
}

func (i *Instruction) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := build(node.Value, nil)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*i = v
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: instruction needs exactly one tag", node.Line)
		}
		tag, body := node.Content[0], node.Content[1]
		v, err := build(tag.Value, body.Decode)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*i = v
		return nil
	}
	return fmt.Errorf("line %d: instruction must be a name or a single-key map", node.Line)
}
