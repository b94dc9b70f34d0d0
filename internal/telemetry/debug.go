// Package telemetry holds the per-tick diagnostic payload a controller emits:
// free-form messages and renderable shape descriptors for viewers.
package telemetry

import "fmt"

// Debug is rebuilt from scratch every tick. Nothing in the simulation reads it
// back.
type Debug struct {
	Messages    []string `json:"messages"`
	Renderables []string `json:"renderables"`
}

func New() Debug {
	return Debug{Messages: []string{}, Renderables: []string{}}
}

func (d *Debug) Logf(format string, args ...interface{}) {
	d.Messages = append(d.Messages, fmt.Sprintf(format, args...))
}

func (d *Debug) Draw(r Renderable) {
	d.Renderables = append(d.Renderables, r.String())
}
