// Package testutil provides synthetic control-point fixtures shared by
// calibration, report and server tests.
package testutil

import (
	"fmt"
	"math"

	"github.com/geosurv/sitecal/internal/points"
)

// Grid returns an nx-by-ny grid of planar points with the given spacing,
// anchored at the origin. IDs are "G<row>-<col>".
func Grid(nx, ny int, spacing float64) points.Set {
	set := make(points.Set, 0, nx*ny)
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			set = append(set, points.ControlPoint{
				ID:       fmt.Sprintf("G%d-%d", r, c),
				Easting:  float64(c) * spacing,
				Northing: float64(r) * spacing,
			})
		}
	}
	return set
}

// TransformSet applies the conformal map (a, b, tE, tN) to the planar
// coordinates of a set, leaving heights untouched.
func TransformSet(in points.Set, a, b, tE, tN float64) points.Set {
	out := make(points.Set, len(in))
	for i, p := range in {
		out[i] = points.ControlPoint{
			ID:       p.ID,
			Easting:  a*p.Easting - b*p.Northing + tE,
			Northing: b*p.Easting + a*p.Northing + tN,
			Height:   p.Height,
		}
	}
	return out
}

// Conformal converts scale and rotation (radians) into the a, b
// coefficients of the conformal map.
func Conformal(scale, rotation float64) (a, b float64) {
	return scale * math.Cos(rotation), scale * math.Sin(rotation)
}

// BuildMatched builds a matched set from a global planar set: the local
// frame is the conformal image of the global one and the local height
// is the global height minus zerr evaluated at the local position.
// Passing a nil zerr keeps the heights equal in both frames.
func BuildMatched(global points.Set, a, b, tE, tN float64, zerr func(e, n float64) float64) points.MatchedSet {
	local := TransformSet(global, a, b, tE, tN)
	matched := make(points.MatchedSet, len(global))
	for i, gp := range global {
		lh := gp.Height
		if zerr != nil {
			lh -= zerr(local[i].Easting, local[i].Northing)
		}
		matched[i] = points.MatchedPoint{
			ID:      gp.ID,
			LocalE:  local[i].Easting,
			LocalN:  local[i].Northing,
			LocalH:  lh,
			GlobalE: gp.Easting,
			GlobalN: gp.Northing,
			GlobalH: gp.Height,
		}
	}
	return matched
}
