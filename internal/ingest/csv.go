// Package ingest reads control-point CSV files and normalizes their
// headers into the point schema used by the rest of the tool.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/geosurv/sitecal/internal/points"
)

// MissingColumnError reports a required column absent from the header.
type MissingColumnError struct {
	Column  string
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q (accepted headers: %s)", e.Column, strings.Join(e.Aliases, ", "))
}

// DuplicateIDError reports a point identifier appearing twice in one file.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate point identifier %q", e.ID)
}

// Header aliases are matched case-insensitively; point IDs never are.
var (
	idAliases        = []string{"Point", "id", "name"}
	eastingAliases   = []string{"Easting", "E", "East"}
	northingAliases  = []string{"Northing", "N", "North"}
	elevationAliases = []string{"Elevation", "z", "h", "M"}
	latitudeAliases  = []string{"Latitude", "Lat"}
	longitudeAliases = []string{"Longitude", "Lon", "Long"}
	ellHeightAliases = []string{"EllipsoidalHeight", "Ellipsoidal Height", "h", "height"}
)

type header struct {
	columns map[string]int
}

func newHeader(record []string) header {
	columns := make(map[string]int, len(record))
	for i, name := range record {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[strings.ToLower(name)] = i
	}
	return header{columns: columns}
}

// index resolves the first matching alias, or -1.
func (h header) index(aliases []string) int {
	for _, alias := range aliases {
		if i, ok := h.columns[strings.ToLower(alias)]; ok {
			return i
		}
	}
	return -1
}

func (h header) require(name string, aliases []string) (int, error) {
	i := h.index(aliases)
	if i < 0 {
		return 0, &MissingColumnError{Column: name, Aliases: aliases}
	}
	return i, nil
}

func parseFloat(record []string, idx int, column string, line int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("line %d: missing value for column %q", line, column)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s value %q: %w", line, column, record[idx], err)
	}
	return v, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}
	return records, nil
}

func readID(record []string, idx, line int, seen map[string]struct{}) (string, error) {
	if idx >= len(record) {
		return "", fmt.Errorf("line %d: missing point identifier", line)
	}
	id := strings.TrimSpace(record[idx])
	if id == "" {
		return "", fmt.Errorf("line %d: empty point identifier", line)
	}
	if _, dup := seen[id]; dup {
		return "", &DuplicateIDError{ID: id}
	}
	seen[id] = struct{}{}
	return id, nil
}

// ReadLocal parses a local-frame CSV: Point, Easting, Northing and an
// optional Elevation column (missing elevations default to 0).
func ReadLocal(r io.Reader) (points.Set, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	hdr := newHeader(records[0])

	idIdx, err := hdr.require("Point", idAliases)
	if err != nil {
		return nil, err
	}
	eIdx, err := hdr.require("Easting", eastingAliases)
	if err != nil {
		return nil, err
	}
	nIdx, err := hdr.require("Northing", northingAliases)
	if err != nil {
		return nil, err
	}
	hIdx := hdr.index(elevationAliases)

	seen := make(map[string]struct{}, len(records)-1)
	set := make(points.Set, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		id, err := readID(record, idIdx, line, seen)
		if err != nil {
			return nil, err
		}
		east, err := parseFloat(record, eIdx, "Easting", line)
		if err != nil {
			return nil, err
		}
		north, err := parseFloat(record, nIdx, "Northing", line)
		if err != nil {
			return nil, err
		}
		var height float64
		if hIdx >= 0 {
			height, err = parseFloat(record, hIdx, "Elevation", line)
			if err != nil {
				return nil, err
			}
		}
		set = append(set, points.ControlPoint{ID: id, Easting: east, Northing: north, Height: height})
	}
	return set, nil
}

// ReadGlobal parses a geodetic CSV: Point, Latitude, Longitude and an
// optional EllipsoidalHeight column (missing heights default to 0).
func ReadGlobal(r io.Reader) (points.GeodeticSet, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	hdr := newHeader(records[0])

	idIdx, err := hdr.require("Point", idAliases)
	if err != nil {
		return nil, err
	}
	latIdx, err := hdr.require("Latitude", latitudeAliases)
	if err != nil {
		return nil, err
	}
	lonIdx, err := hdr.require("Longitude", longitudeAliases)
	if err != nil {
		return nil, err
	}
	hIdx := hdr.index(ellHeightAliases)

	seen := make(map[string]struct{}, len(records)-1)
	set := make(points.GeodeticSet, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		id, err := readID(record, idIdx, line, seen)
		if err != nil {
			return nil, err
		}
		lat, err := parseFloat(record, latIdx, "Latitude", line)
		if err != nil {
			return nil, err
		}
		lon, err := parseFloat(record, lonIdx, "Longitude", line)
		if err != nil {
			return nil, err
		}
		var height float64
		if hIdx >= 0 {
			height, err = parseFloat(record, hIdx, "EllipsoidalHeight", line)
			if err != nil {
				return nil, err
			}
		}
		set = append(set, points.GeodeticPoint{ID: id, Latitude: lat, Longitude: lon, Height: height})
	}
	return set, nil
}

// ReadProjected parses an already-planar global CSV with the same
// shape as a local file: Point, Easting, Northing, optional height.
func ReadProjected(r io.Reader) (points.Set, error) {
	return ReadLocal(r)
}

// ReadLocalFile is ReadLocal over a file path.
func ReadLocalFile(path string) (points.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening local csv: %w", err)
	}
	defer f.Close()
	set, err := ReadLocal(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ReadGlobalFile is ReadGlobal over a file path.
func ReadGlobalFile(path string) (points.GeodeticSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening global csv: %w", err)
	}
	defer f.Close()
	set, err := ReadGlobal(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ReadProjectedFile is ReadProjected over a file path.
func ReadProjectedFile(path string) (points.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening projected csv: %w", err)
	}
	defer f.Close()
	set, err := ReadProjected(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
