package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

var csvHeader = []string{"time", "x", "y", "theta", "blade_on", "motor_left", "motor_right"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSV writes one row per trace record.
func WriteCSV[D any](w io.Writer, out *sim.Output[D]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	times := out.Times()
	for i, r := range out.States {
		row := []string{
			formatFloat(times[i]),
			formatFloat(r.RobotX),
			formatFloat(r.RobotY),
			formatFloat(r.RobotTheta),
			strconv.FormatBool(r.BladeOn),
			formatFloat(r.MotorLeft),
			formatFloat(r.MotorRight),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV produced. Only time, x, y and theta are
// required; extra columns are ignored.
func ReadCSV(r io.Reader) ([]robot.Pose, []float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []robot.Pose{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	poses := make([]robot.Pose, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			return nil, nil, fmt.Errorf("row %d: expected at least 4 columns, got %d", i, len(record))
		}
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d, column %s: %w", i, csvHeader[j], err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		poses = append(poses, robot.Pose{X: vals[1], Y: vals[2], Theta: vals[3]})
	}
	return poses, times, nil
}

// WriteJSON writes the trace in the interchange format.
func WriteJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
