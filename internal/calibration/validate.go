package calibration

import (
	"gonum.org/v1/gonum/mat"

	"github.com/geosurv/sitecal/internal/points"
)

const (
	// MinPoints is the system-wide floor on matched control points.
	// The horizontal fit alone is solvable from 2, but the vertical
	// plane has 3 unknowns, so 3 is the rule everywhere.
	MinPoints = 3

	// collinearityThreshold is the minimum λmin/λmax ratio of the
	// global-coordinate covariance below which the configuration is
	// treated as collinear. Roughly "3+ orders of magnitude flatter
	// than round".
	collinearityThreshold = 1e-4
)

// Validate decides whether a matched set is numerically safe to train
// on: enough points, and a global-frame spread that is not degenerate.
// It is a pure predicate and must be called before Train.
func Validate(set points.MatchedSet) error {
	if len(set) < MinPoints {
		return &InsufficientPointsError{Got: len(set), Min: MinPoints}
	}

	n := float64(len(set))
	var meanE, meanN float64
	for _, p := range set {
		meanE += p.GlobalE
		meanN += p.GlobalN
	}
	meanE /= n
	meanN /= n

	// Sample covariance of the centered global planar coordinates.
	var cee, cnn, cen float64
	for _, p := range set {
		de := p.GlobalE - meanE
		dn := p.GlobalN - meanN
		cee += de * de
		cnn += dn * dn
		cen += de * dn
	}
	cee /= n - 1
	cnn /= n - 1
	cen /= n - 1

	cov := mat.NewSymDense(2, []float64{cee, cen, cen, cnn})

	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return &NumericalError{Op: "eigenvalue decomposition of the point covariance"}
	}
	vals := eig.Values(nil) // ascending
	lmin, lmax := vals[0], vals[1]

	if lmax == 0 {
		return &DegenerateGeometryError{Ratio: 0, Threshold: collinearityThreshold}
	}
	if ratio := lmin / lmax; ratio < collinearityThreshold {
		return &DegenerateGeometryError{Ratio: ratio, Threshold: collinearityThreshold}
	}
	return nil
}
