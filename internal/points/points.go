// Package points holds the control-point types shared by ingestion,
// projection and the calibration engine, plus the identifier join that
// pairs a local survey with its global (GNSS) counterpart.
package points

// ControlPoint is a surveyed point in one planar frame. Easting and
// Northing are in meters; Height is the ellipsoidal height for global
// points and the site elevation for local points.
type ControlPoint struct {
	ID       string
	Easting  float64
	Northing float64
	Height   float64
}

// GeodeticPoint is a raw GNSS observation before projection.
// Latitude and Longitude are WGS84 decimal degrees, Height is
// ellipsoidal and in meters.
type GeodeticPoint struct {
	ID        string
	Latitude  float64
	Longitude float64
	Height    float64
}

// Set is an ordered collection of planar control points for one frame.
type Set []ControlPoint

// GeodeticSet is an ordered collection of geodetic points.
type GeodeticSet []GeodeticPoint

// MatchedPoint carries one control point in both frames after the join.
type MatchedPoint struct {
	ID      string
	LocalE  float64
	LocalN  float64
	LocalH  float64
	GlobalE float64
	GlobalN float64
	GlobalH float64
}

// MatchedSet is the inner join of a local and a global set.
type MatchedSet []MatchedPoint

// Match joins local and global sets on the point identifier (exact,
// case-sensitive match). Points present in only one frame are dropped
// silently; the result follows the order of the local set and may be
// smaller than either input.
func Match(local, global Set) MatchedSet {
	byID := make(map[string]ControlPoint, len(global))
	for _, p := range global {
		byID[p.ID] = p
	}

	matched := make(MatchedSet, 0, len(local))
	for _, lp := range local {
		gp, ok := byID[lp.ID]
		if !ok {
			continue
		}
		matched = append(matched, MatchedPoint{
			ID:      lp.ID,
			LocalE:  lp.Easting,
			LocalN:  lp.Northing,
			LocalH:  lp.Height,
			GlobalE: gp.Easting,
			GlobalN: gp.Northing,
			GlobalH: gp.Height,
		})
	}
	return matched
}

// IDs returns the identifiers of the set in order.
func (s Set) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}
