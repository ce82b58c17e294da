package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/geosurv/sitecal/internal/ingest"
)

// transformCmd applies a calibration to already-projected points.
var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform projected global points into the local grid",
	Long: `Train a calibration from two control CSVs, then apply it to a third
CSV of already-projected planar global points (Point,Easting,Northing,h)
and write the local-grid result.

The calibration state lives only for the duration of the command; pass
the control files on every invocation.

Example:
  sitecal transform --global-csv gnss.csv --local-csv site.csv \
    --points-csv new_points.csv --output-csv transformed.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		globalPath, _ := cmd.Flags().GetString("global-csv")
		localPath, _ := cmd.Flags().GetString("local-csv")
		pointsPath, _ := cmd.Flags().GetString("points-csv")
		outputCSV, _ := cmd.Flags().GetString("output-csv")

		model, method, _, err := trainFromFiles(cmd, globalPath, localPath)
		if err != nil {
			return err
		}
		slog.Info("calibration training completed", "points", len(model.Residuals()), "method", method)

		input, err := ingest.ReadProjectedFile(pointsPath)
		if err != nil {
			return err
		}

		transformed, err := model.Transform(input)
		if err != nil {
			return err
		}
		if err := writeTransformedCSV(transformed, outputCSV); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Transformed coordinates saved to: %s\n", outputCSV)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().String("global-csv", "", "CSV with global geodetic control coordinates")
	transformCmd.Flags().String("local-csv", "", "CSV with local grid control coordinates")
	transformCmd.Flags().String("points-csv", "", "CSV with projected planar points to transform (Point,Easting,Northing,h)")
	transformCmd.Flags().String("output-csv", "", "output CSV with transformed coordinates")
	_ = transformCmd.MarkFlagRequired("global-csv")
	_ = transformCmd.MarkFlagRequired("local-csv")
	_ = transformCmd.MarkFlagRequired("points-csv")
	_ = transformCmd.MarkFlagRequired("output-csv")

	addMethodFlags(transformCmd)
}
