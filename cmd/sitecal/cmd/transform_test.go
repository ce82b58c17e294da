package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdPointsCSV = `Point,Easting,Northing,h
N1,50.0,50.0,100.5
N2,10.0,90.0,101.5
`

func TestTransformEndToEnd(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)
	pointsPath := writeFixture(t, dir, "points.csv", cmdPointsCSV)
	outputPath := filepath.Join(dir, "out.csv")

	out, err := executeCommand(t, "transform",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--points-csv", pointsPath,
		"--output-csv", outputPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Transformed coordinates saved to:")

	csvOut, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvOut)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Point,Easting,Northing,h", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "N1,"))
	assert.True(t, strings.HasPrefix(lines[2], "N2,"))
}

func TestTransformMissingPointsFile(t *testing.T) {
	dir := t.TempDir()
	globalPath := writeFixture(t, dir, "global.csv", cmdGlobalCSV)
	localPath := writeFixture(t, dir, "local.csv", cmdLocalCSV)

	_, err := executeCommand(t, "transform",
		"--global-csv", globalPath,
		"--local-csv", localPath,
		"--points-csv", filepath.Join(dir, "does_not_exist.csv"),
		"--output-csv", filepath.Join(dir, "out.csv"),
	)
	assert.Error(t, err)
}
