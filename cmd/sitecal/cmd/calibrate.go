package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geosurv/sitecal/internal/calibration"
	"github.com/geosurv/sitecal/internal/config"
	"github.com/geosurv/sitecal/internal/ingest"
	"github.com/geosurv/sitecal/internal/points"
	"github.com/geosurv/sitecal/internal/projection"
	"github.com/geosurv/sitecal/internal/report"
)

// calibrateCmd trains a site calibration from two control CSVs.
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Fit a site calibration from matched control points",
	Long: `Fit a site calibration by projecting global geodetic control points
into a planar frame and least-squares fitting a 2D similarity transform
plus an inclined-plane vertical correction against the local grid.

Writes a markdown report and, optionally, the transformed global points
as CSV.

Examples:
  sitecal calibrate --global-csv gnss.csv --local-csv site.csv
  sitecal calibrate --global-csv gnss.csv --local-csv site.csv \
    --method ltm --central-meridian -72 --latitude-of-origin 0 \
    --scale-factor 0.9996 --false-easting 500000 --false-northing 10000000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		globalPath, _ := cmd.Flags().GetString("global-csv")
		localPath, _ := cmd.Flags().GetString("local-csv")
		reportPath, _ := cmd.Flags().GetString("report")
		outputCSV, _ := cmd.Flags().GetString("output-csv")

		model, method, projected, err := trainFromFiles(cmd, globalPath, localPath)
		if err != nil {
			return err
		}
		slog.Info("calibration training completed", "points", len(model.Residuals()), "method", method)

		md := report.Markdown(model, method, time.Now())
		if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Calibration report generated at: %s\n", reportPath)

		if outputCSV != "" {
			transformed, err := model.Transform(projected)
			if err != nil {
				return err
			}
			if err := writeTransformedCSV(transformed, outputCSV); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transformed coordinates saved to: %s\n", outputCSV)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().String("global-csv", "", "CSV with global geodetic coordinates (Point,Latitude,Longitude,EllipsoidalHeight)")
	calibrateCmd.Flags().String("local-csv", "", "CSV with local grid coordinates (Point,Easting,Northing,Elevation)")
	calibrateCmd.Flags().String("report", "calibration_report.md", "output report in markdown format")
	calibrateCmd.Flags().String("output-csv", "", "optional output CSV with transformed coordinates")
	_ = calibrateCmd.MarkFlagRequired("global-csv")
	_ = calibrateCmd.MarkFlagRequired("local-csv")

	addMethodFlags(calibrateCmd)
}

// addMethodFlags registers the method selection and LTM projection
// flags shared by calibrate and transform.
func addMethodFlags(cmd *cobra.Command) {
	cmd.Flags().String("method", "", "calibration method (tbc, ltm; default from config)")
	cmd.Flags().Float64("central-meridian", 0, "LTM central meridian (degrees)")
	cmd.Flags().Float64("latitude-of-origin", 0, "LTM latitude of origin (degrees)")
	cmd.Flags().Float64("scale-factor", 0, "LTM scale factor")
	cmd.Flags().Float64("false-easting", 0, "LTM false easting (m)")
	cmd.Flags().Float64("false-northing", 0, "LTM false northing (m)")
}

// trainFromFiles runs the full pipeline on two control CSVs and
// returns the trained model together with the projected global set.
func trainFromFiles(cmd *cobra.Command, globalPath, localPath string) (*calibration.Model, calibration.Method, points.Set, error) {
	cfg := GetConfig()

	methodName := cfg.Calibration.Method
	if cmd.Flags().Changed("method") {
		methodName, _ = cmd.Flags().GetString("method")
	}
	method, err := calibration.ParseMethod(methodName)
	if err != nil {
		return nil, "", nil, err
	}

	ltm, err := ltmParams(cmd, cfg, method)
	if err != nil {
		return nil, "", nil, err
	}
	proj, err := projection.ForMethod(string(method), ltm)
	if err != nil {
		return nil, "", nil, err
	}

	global, err := ingest.ReadGlobalFile(globalPath)
	if err != nil {
		return nil, "", nil, err
	}
	local, err := ingest.ReadLocalFile(localPath)
	if err != nil {
		return nil, "", nil, err
	}
	slog.Debug("control files read", "global_points", len(global), "local_points", len(local))

	projected, err := proj.Project(global)
	if err != nil {
		return nil, "", nil, err
	}

	matched := points.Match(local, projected)
	if err := calibration.Validate(matched); err != nil {
		return nil, "", nil, err
	}

	model, err := calibration.Train(matched)
	if err != nil {
		return nil, "", nil, err
	}
	return model, method, projected, nil
}

// ltmParams assembles the LTM projection parameters from flags, with
// the config file as fallback. For the ltm method all five values are
// required: either every flag is set, or the config carries a complete
// LTM block (recognized by a non-zero scale factor).
func ltmParams(cmd *cobra.Command, cfg *config.Config, method calibration.Method) (*projection.LTMParams, error) {
	flagNames := []string{"central-meridian", "latitude-of-origin", "scale-factor", "false-easting", "false-northing"}
	var changed int
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			changed++
		}
	}

	if changed > 0 {
		if changed < len(flagNames) {
			return nil, fmt.Errorf("for LTM method, all LTM parameters are required")
		}
		cm, _ := cmd.Flags().GetFloat64("central-meridian")
		lat, _ := cmd.Flags().GetFloat64("latitude-of-origin")
		scale, _ := cmd.Flags().GetFloat64("scale-factor")
		fe, _ := cmd.Flags().GetFloat64("false-easting")
		fn, _ := cmd.Flags().GetFloat64("false-northing")
		return &projection.LTMParams{
			CentralMeridian:  cm,
			LatitudeOfOrigin: lat,
			ScaleFactor:      scale,
			FalseEasting:     fe,
			FalseNorthing:    fn,
		}, nil
	}

	if method != calibration.MethodLTM {
		return nil, nil
	}
	if cfg.Calibration.LTM.ScaleFactor == 0 {
		return nil, fmt.Errorf("for LTM method, all LTM parameters are required")
	}
	return &projection.LTMParams{
		CentralMeridian:  cfg.Calibration.LTM.CentralMeridian,
		LatitudeOfOrigin: cfg.Calibration.LTM.LatitudeOfOrigin,
		ScaleFactor:      cfg.Calibration.LTM.ScaleFactor,
		FalseEasting:     cfg.Calibration.LTM.FalseEasting,
		FalseNorthing:    cfg.Calibration.LTM.FalseNorthing,
	}, nil
}

func writeTransformedCSV(set points.Set, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output csv: %w", err)
	}
	defer f.Close()
	if err := report.WriteCSV(set, f); err != nil {
		return fmt.Errorf("writing output csv: %w", err)
	}
	return nil
}
