// Package controllers implements the control strategies the harness can
// drive: the waypoint interpreter for instruction scripts, its PID-steered
// variant, and the trivial manual and none strategies.
package controllers
