package calibration

import "fmt"

// InsufficientPointsError reports a matched set below the minimum
// point count. Recoverable by supplying more common points.
type InsufficientPointsError struct {
	Got int
	Min int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("found only %d common points, minimum %d are required", e.Got, e.Min)
}

// DegenerateGeometryError reports a control configuration too close to
// a line (or a single cluster) for a stable similarity fit.
type DegenerateGeometryError struct {
	Ratio     float64
	Threshold float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("control points are collinear or coincident (eigenvalue ratio %.3g below %.3g), preventing a stable transformation", e.Ratio, e.Threshold)
}

// NotTrainedError reports a Transform call on an untrained model.
type NotTrainedError struct{}

func (e *NotTrainedError) Error() string {
	return "the calibration model has not been trained"
}

// NumericalError wraps a failure of an underlying solver or
// decomposition. Fatal to the call; retrying with the same input
// cannot succeed.
type NumericalError struct {
	Op  string
	Err error
}

func (e *NumericalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }
