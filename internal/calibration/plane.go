package calibration

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/geosurv/sitecal/internal/points"
)

// Vertical is the inclined-plane height-correction model
// dZ(N,E) = Shift + SlopeNorth·(N − CentroidNorth) + SlopeEast·(E − CentroidEast),
// evaluated in the local-grid frame.
type Vertical struct {
	Shift         float64
	SlopeNorth    float64
	SlopeEast     float64
	CentroidNorth float64
	CentroidEast  float64
}

// fitVertical fits the per-point height error hGlobal − hLocal with an
// inclined plane over the centered local coordinates. The centroids are
// the ones computed by the horizontal step, not recomputed. Below 3
// points it degrades to a constant shift; the validator makes that
// branch unreachable in practice, it is kept as a fallback.
func fitVertical(set points.MatchedSet, ec, nc float64) (Vertical, error) {
	n := len(set)

	zerr := make([]float64, n)
	for i, p := range set {
		zerr[i] = p.GlobalH - p.LocalH
	}

	if n < MinPoints {
		var mean float64
		for _, z := range zerr {
			mean += z
		}
		if n > 0 {
			mean /= float64(n)
		}
		return Vertical{Shift: mean, CentroidNorth: nc, CentroidEast: ec}, nil
	}

	design := mat.NewDense(n, 3, nil)
	obs := mat.NewVecDense(n, zerr)
	for i, p := range set {
		design.Set(i, 0, 1)
		design.Set(i, 1, p.LocalN-nc)
		design.Set(i, 2, p.LocalE-ec)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(design, obs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Vertical{}, &NumericalError{Op: "vertical plane least-squares solve", Err: err}
		}
	}

	return Vertical{
		Shift:         sol.AtVec(0),
		SlopeNorth:    sol.AtVec(1),
		SlopeEast:     sol.AtVec(2),
		CentroidNorth: nc,
		CentroidEast:  ec,
	}, nil
}
