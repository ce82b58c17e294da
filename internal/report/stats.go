package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/geosurv/sitecal/internal/calibration"
)

// Stats summarizes a residual table for reporting. All magnitudes are
// in meters; the planar error of a point is hypot(dE, dN).
type Stats struct {
	WorstID    string
	WorstError float64
	BestID     string
	BestError  float64
	StdDE      float64
	StdDN      float64
	StdDH      float64
	P99        float64
}

// Statistics computes the derived diagnostics over a residual table
// exactly as defined: worst/best point by planar error magnitude,
// per-axis sample standard deviation and the empirical 99th percentile
// of the planar error. No smoothing or trimming.
func Statistics(residuals []calibration.Residual) Stats {
	if len(residuals) == 0 {
		return Stats{}
	}

	de := make([]float64, len(residuals))
	dn := make([]float64, len(residuals))
	dh := make([]float64, len(residuals))
	planar := make([]float64, len(residuals))

	s := Stats{WorstError: math.Inf(-1), BestError: math.Inf(1)}
	for i, r := range residuals {
		de[i] = r.DE
		dn[i] = r.DN
		dh[i] = r.DH
		planar[i] = math.Hypot(r.DE, r.DN)
		if planar[i] > s.WorstError {
			s.WorstError = planar[i]
			s.WorstID = r.ID
		}
		if planar[i] < s.BestError {
			s.BestError = planar[i]
			s.BestID = r.ID
		}
	}

	s.StdDE = stat.StdDev(de, nil)
	s.StdDN = stat.StdDev(dn, nil)
	s.StdDH = stat.StdDev(dh, nil)

	sort.Float64s(planar)
	s.P99 = stat.Quantile(0.99, stat.Empirical, planar, nil)
	return s
}
