// Package robot defines the vocabulary shared by every layer of the
// simulator: the motion [Instruction] set a script is made of, the robot
// [Pose], the drive train [Physical] constants and the per-tick [Actuation].
package robot
