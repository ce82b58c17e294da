// Package report renders calibration results: a markdown report with
// parameters, residuals and summary statistics, and the transformed
// coordinate CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/geosurv/sitecal/internal/calibration"
	"github.com/geosurv/sitecal/internal/points"
)

// Markdown renders the calibration report. Residuals and statistics
// are reported in millimeters, parameters in their natural units.
func Markdown(model *calibration.Model, method calibration.Method, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Site Calibration Report\n")
	fmt.Fprintf(&b, "Report generated on: %s\n\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "## Calibration Method: %s\n\n", strings.ToUpper(string(method)))

	h := model.Horizontal()
	v := model.Vertical()
	b.WriteString("### Calculated Parameters\n")
	fmt.Fprintf(&b, "- **a:** `%.12g`\n", h.A)
	fmt.Fprintf(&b, "- **b:** `%.12g`\n", h.B)
	fmt.Fprintf(&b, "- **tE:** `%.12g`\n", h.TE)
	fmt.Fprintf(&b, "- **tN:** `%.12g`\n", h.TN)
	fmt.Fprintf(&b, "- **scale:** `%.12g`\n", h.Scale())
	fmt.Fprintf(&b, "- **rotation (rad):** `%.12g`\n", h.Rotation())
	fmt.Fprintf(&b, "- **vertical_shift:** `%.12g`\n", v.Shift)
	fmt.Fprintf(&b, "- **slope_north:** `%.12g`\n", v.SlopeNorth)
	fmt.Fprintf(&b, "- **slope_east:** `%.12g`\n", v.SlopeEast)
	fmt.Fprintf(&b, "- **centroid_north:** `%.12g`\n", v.CentroidNorth)
	fmt.Fprintf(&b, "- **centroid_east:** `%.12g`\n\n", v.CentroidEast)

	residuals := model.Residuals()
	b.WriteString("### Residuals (mm)\n")
	if len(residuals) == 0 {
		b.WriteString("No residuals were calculated.\n\n")
	} else {
		b.WriteString("| Point | dE (mm) | dN (mm) | dH (mm) |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, r := range residuals {
			fmt.Fprintf(&b, "| %s | %.1f | %.1f | %.1f |\n", r.ID, r.DE*1000, r.DN*1000, r.DH*1000)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Statistics\n")
	if len(residuals) == 0 {
		b.WriteString("Statistics could not be calculated.\n")
		return b.String()
	}
	s := Statistics(residuals)
	fmt.Fprintf(&b, "- **Worst Point:** `%s` (Error: %.1f mm)\n", s.WorstID, s.WorstError*1000)
	fmt.Fprintf(&b, "- **Best Point:** `%s` (Error: %.1f mm)\n", s.BestID, s.BestError*1000)
	b.WriteString("- **Standard Deviations (mm):**\n")
	fmt.Fprintf(&b, "  - `dE`: %.1f mm\n", s.StdDE*1000)
	fmt.Fprintf(&b, "  - `dN`: %.1f mm\n", s.StdDN*1000)
	fmt.Fprintf(&b, "  - `dH`: %.1f mm\n", s.StdDH*1000)
	fmt.Fprintf(&b, "- **99th Percentile of Horizontal Errors:** %.1f mm\n", s.P99*1000)

	return b.String()
}

// WriteCSV writes transformed coordinates as Point,Easting,Northing,h.
func WriteCSV(set points.Set, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Point", "Easting", "Northing", "h"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range set {
		record := []string{
			p.ID,
			strconv.FormatFloat(p.Easting, 'f', -1, 64),
			strconv.FormatFloat(p.Northing, 'f', -1, 64),
			strconv.FormatFloat(p.Height, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
