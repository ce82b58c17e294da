package calibration

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/geosurv/sitecal/internal/points"
)

// Horizontal holds the four coefficients of the 2D conformal map
// (x,y) -> (a·x − b·y + tE, b·x + a·y + tN) from the global planar
// frame to the local grid.
type Horizontal struct {
	A  float64
	B  float64
	TE float64
	TN float64
}

// Scale returns the uniform scale factor implied by a and b.
func (h Horizontal) Scale() float64 { return math.Hypot(h.A, h.B) }

// Rotation returns the rotation angle in radians implied by a and b.
func (h Horizontal) Rotation() float64 { return math.Atan2(h.B, h.A) }

// centroids of a matched set: global (x̄, ȳ) and local (Ē, N̄).
func centroids(set points.MatchedSet) (xc, yc, ec, nc float64) {
	n := float64(len(set))
	for _, p := range set {
		xc += p.GlobalE
		yc += p.GlobalN
		ec += p.LocalE
		nc += p.LocalN
	}
	return xc / n, yc / n, ec / n, nc / n
}

// fitHorizontal solves the centered conformal equations stacked for all
// points (one Easting row and one Northing row per point) for [a b] by
// ordinary least squares, then recovers the translations from the
// centroid identities. Centering decouples the translation from
// rotation and scale, which is why it is derived algebraically instead
// of fit jointly.
func fitHorizontal(set points.MatchedSet) (Horizontal, error) {
	n := len(set)
	xc, yc, ec, nc := centroids(set)

	design := mat.NewDense(2*n, 2, nil)
	obs := mat.NewVecDense(2*n, nil)
	for i, p := range set {
		xp := p.GlobalE - xc
		yp := p.GlobalN - yc
		design.Set(i, 0, xp)
		design.Set(i, 1, -yp)
		design.Set(n+i, 0, yp)
		design.Set(n+i, 1, xp)
		obs.SetVec(i, p.LocalE-ec)
		obs.SetVec(n+i, p.LocalN-nc)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(design, obs); err != nil {
		// A Condition error still carries a usable solution; the
		// validator keeps genuinely flat configurations out.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Horizontal{}, &NumericalError{Op: "horizontal least-squares solve", Err: err}
		}
	}

	a := sol.AtVec(0)
	b := sol.AtVec(1)
	return Horizontal{
		A:  a,
		B:  b,
		TE: ec - a*xc + b*yc,
		TN: nc - b*xc - a*yc,
	}, nil
}
