package sim

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate collects every problem with the input rather than stopping at the
// first one.
func (in Input) Validate() error {
	var err error
	if in.DeltaTime.Duration <= 0 {
		err = multierr.Append(err, fmt.Errorf("delta_time must be positive, got %v", in.DeltaTime.Duration))
	}
	err = multierr.Append(err, in.SimLength.Validate())
	if in.WheelDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("wheel_distance must be positive, got %g", in.WheelDistance))
	}
	if in.WheelRadius <= 0 {
		err = multierr.Append(err, fmt.Errorf("wheel_radius must be positive, got %g", in.WheelRadius))
	}
	if in.MaxMotorSpeed <= 0 {
		err = multierr.Append(err, fmt.Errorf("max_motor_speed must be positive, got %g", in.MaxMotorSpeed))
	}
	if in.BladeRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("blade_radius must not be negative, got %g", in.BladeRadius))
	}
	for i, instr := range in.Instructions {
		if e := instr.Validate(); e != nil {
			err = multierr.Append(err, fmt.Errorf("instruction %d: %w", i, e))
		}
	}
	return err
}
