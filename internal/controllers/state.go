package controllers

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/mowsim/internal/geom"
)

type StateKind int

const (
	Idle StateKind = iota
	SetBlade
	GotoPoints
)

func (k StateKind) String() string {
	switch k {
	case Idle:
		return "Idle"
	case SetBlade:
		return "SetBlade"
	case GotoPoints:
		return "GotoPoints"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// State is the waypoint controller's state machine value. Blade is only
// meaningful for SetBlade, Points only for GotoPoints.
type State struct {
	Kind   StateKind
	Blade  bool
	Points []geom.Point
}

func IdleState() State                       { return State{Kind: Idle} }
func SetBladeState(on bool) State            { return State{Kind: SetBlade, Blade: on} }
func GotoPointsState(pts []geom.Point) State { return State{Kind: GotoPoints, Points: pts} }

func (s State) String() string {
	switch s.Kind {
	case SetBlade:
		return fmt.Sprintf("SetBlade(%t)", s.Blade)
	case GotoPoints:
		return fmt.Sprintf("GotoPoints(%d remaining)", len(s.Points))
	}
	return s.Kind.String()
}

func (s State) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SetBlade:
		return json.Marshal(map[string]bool{"SetBlade": s.Blade})
	case GotoPoints:
		pts := s.Points
		if pts == nil {
			pts = []geom.Point{}
		}
		return json.Marshal(map[string][]geom.Point{"GotoPoints": pts})
	}
	return json.Marshal("Idle")
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "Idle" {
			return fmt.Errorf("control state: unknown unit variant %q", name)
		}
		*s = IdleState()
		return nil
	}

	var obj struct {
		SetBlade   *bool         `json:"SetBlade"`
		GotoPoints *[]geom.Point `json:"GotoPoints"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("control state: %w", err)
	}
	switch {
	case obj.SetBlade != nil && obj.GotoPoints == nil:
		*s = SetBladeState(*obj.SetBlade)
	case obj.GotoPoints != nil && obj.SetBlade == nil:
		*s = GotoPointsState(*obj.GotoPoints)
	default:
		return fmt.Errorf("control state: expected exactly one of SetBlade, GotoPoints")
	}
	return nil
}
