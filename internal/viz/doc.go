// Package viz replays recorded mower runs in the terminal.
//
// A [Replay] is a Bubble Tea model that draws the travelled path, the robot
// body and the controller's renderables on a braille [Canvas], next to a
// telemetry panel with the per-tick debug messages and a motor power chart.
//
// # Key Bindings
//
//	Space - Play/Pause
//	R     - Rewind
//	[ ]   - Step backwards/forwards
//	+ -   - Playback speed
//	T     - Cycle color themes
//	?     - Show help overlay
//
// A [Recorder] turns the same canvas into an animated GIF, either while
// watching or headless through [RecordAll].
package viz
