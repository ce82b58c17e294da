// Package calibration fits a planar similarity transform plus an
// inclined-plane height correction from control points matched between
// a global (projected GNSS) frame and a local site frame, and applies
// the trained transform to new points.
package calibration

import (
	"fmt"

	"github.com/geosurv/sitecal/internal/points"
)

// Method names a calibration algorithm. Both named methods map to the
// one similarity-plus-plane fit; the tag exists so callers can select
// the matching projection and label reports.
type Method string

const (
	MethodTBC Method = "tbc"
	MethodLTM Method = "ltm"
)

// ParseMethod validates a method name from config, flags or forms.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodTBC, MethodLTM:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown calibration method: %q", s)
	}
}

// Residual is the signed model-minus-observed difference at one
// training point, in the local frame. Diagnostics only; never fed back
// into the fit.
type Residual struct {
	ID string
	DE float64
	DN float64
	DH float64
}

// Model is a trained calibration. It is immutable once produced by
// Train and safe for concurrent readers; retraining requires a fresh
// Model.
type Model struct {
	trained    bool
	horizontal Horizontal
	vertical   Vertical
	residuals  []Residual
}

// Horizontal returns the fitted similarity parameters.
func (m *Model) Horizontal() Horizontal { return m.horizontal }

// Vertical returns the fitted inclined-plane parameters.
func (m *Model) Vertical() Vertical { return m.vertical }

// Residuals returns a copy of the training residuals in match order.
func (m *Model) Residuals() []Residual {
	out := make([]Residual, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// Train fits horizontal and vertical parameters from a matched set and
// computes the training residuals. The set must already have passed
// Validate; Train does not re-validate. The returned model is populated
// atomically: on error no partially trained model exists.
func Train(set points.MatchedSet) (*Model, error) {
	horizontal, err := fitHorizontal(set)
	if err != nil {
		return nil, err
	}

	_, _, ec, nc := centroids(set)
	vertical, err := fitVertical(set, ec, nc)
	if err != nil {
		return nil, err
	}

	m := &Model{trained: true, horizontal: horizontal, vertical: vertical}

	// Residuals come from running the freshly trained transform over
	// the training rows themselves, so they report how well the whole
	// pipeline reproduces local truth.
	transformed, err := m.TransformMatched(set)
	if err != nil {
		return nil, err
	}
	m.residuals = make([]Residual, len(set))
	for i, p := range set {
		m.residuals[i] = Residual{
			ID: p.ID,
			DE: transformed[i].Easting - p.LocalE,
			DN: transformed[i].Northing - p.LocalN,
			DH: transformed[i].Height - p.LocalH,
		}
	}
	return m, nil
}

// Transform maps projected global points into the local grid. The
// vertical correction is evaluated at the transformed coordinates: the
// plane lives in local-grid space and the true local position of a new
// point is unknown, so the estimate stands in for it, consistent with
// training. Output height is input height minus the correction
// (Zerr = global − local, hence local = global − Zerr). Identifiers
// pass through unchanged, order is preserved.
func (m *Model) Transform(in points.Set) (points.Set, error) {
	if m == nil || !m.trained {
		return nil, &NotTrainedError{}
	}
	out := make(points.Set, len(in))
	for i, p := range in {
		out[i] = m.apply(p.ID, p.Easting, p.Northing, p.Height)
	}
	return out, nil
}

// TransformMatched applies the transform to merged training rows,
// reading the global planar pair and preferring the global height.
func (m *Model) TransformMatched(set points.MatchedSet) (points.Set, error) {
	if m == nil || !m.trained {
		return nil, &NotTrainedError{}
	}
	out := make(points.Set, len(set))
	for i, p := range set {
		out[i] = m.apply(p.ID, p.GlobalE, p.GlobalN, p.GlobalH)
	}
	return out, nil
}

func (m *Model) apply(id string, x, y, h float64) points.ControlPoint {
	e := m.horizontal.A*x - m.horizontal.B*y + m.horizontal.TE
	n := m.horizontal.B*x + m.horizontal.A*y + m.horizontal.TN
	dz := m.vertical.Shift +
		m.vertical.SlopeNorth*(n-m.vertical.CentroidNorth) +
		m.vertical.SlopeEast*(e-m.vertical.CentroidEast)
	return points.ControlPoint{ID: id, Easting: e, Northing: n, Height: h - dz}
}
