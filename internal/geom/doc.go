// Package geom provides the numeric helpers shared by the controller, the
// kinematics model and the renderers:
//
//   - [Clamp], [Lerp], [InvLerp], [MapRange]: scalar range helpers
//   - [SignedAngleDifference]: shortest signed rotation between headings
//   - [CubicBezier]: Bézier evaluation over [Point]
//
// Everything here is pure and allocation free.
package geom
