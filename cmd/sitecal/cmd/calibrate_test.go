package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdGlobalCSV = `Point,Latitude,Longitude,EllipsoidalHeight
P1,10.0000,10.0000,100.0
P2,10.0010,10.0000,101.0
P3,10.0000,10.0010,102.0
`

const cmdLocalCSV = `Point,Easting,Northing,Elevation
P1,1000.0,2000.0,50.0
P2,1000.0,2110.6,51.0
P3,1109.4,2000.0,52.0
`

const cmdCollinearGlobalCSV = `Point,Latitude,Longitude,EllipsoidalHeight
P1,10.0000,10.0000,100.0
P2,10.0010,10.0000,101.0
P3,10.0020,10.0000,102.0
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCalibrateMissingRequiredFlags(t *testing.T) {
	_, err := executeCommand(t, "calibrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global-csv")
}

func TestCalibrateCollinearControl(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdCollinearGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)

	_, err := executeCommand(t, "calibrate",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--report", filepath.Join(dir, "report.md"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collinear")
}

func TestCalibrateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)
	reportPath := filepath.Join(dir, "report.md")
	outputPath := filepath.Join(dir, "transformed.csv")

	out, err := executeCommand(t, "calibrate",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--report", reportPath,
		"--output-csv", outputPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Calibration report generated at:")
	assert.Contains(t, out, "Transformed coordinates saved to:")

	md, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Site Calibration Report")
	assert.Contains(t, string(md), "P1")
	assert.Contains(t, string(md), "### Calculated Parameters")

	csvOut, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvOut)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Point,Easting,Northing,h", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "P1,"))
}

func TestCalibrateLTMWithoutParameters(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)

	// No LTM flags and no config file: the ltm method must refuse to
	// train rather than project with implicit parameters.
	_, err := executeCommand(t, "calibrate",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--report", filepath.Join(dir, "report.md"),
		"--method", "ltm",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all LTM parameters are required")
}

func TestCalibratePartialLTMFlags(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)

	_, err := executeCommand(t, "calibrate",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--report", filepath.Join(dir, "report.md"),
		"--method", "ltm",
		"--central-meridian", "10",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all LTM parameters are required")
}
