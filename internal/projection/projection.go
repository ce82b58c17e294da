// Package projection converts geodetic WGS84 coordinates into the
// planar global frame consumed by the calibration engine. Three
// projections are supported: a local transverse Mercator centered on
// the first point (the default), auto-zoned UTM, and a fully
// parametrized local transverse Mercator (LTM).
package projection

import (
	"errors"
	"fmt"

	"github.com/wroge/wgs84"

	"github.com/geosurv/sitecal/internal/points"
)

// Kind selects one of the closed set of projection variants.
type Kind string

const (
	KindDefault Kind = "default"
	KindUTM     Kind = "utm"
	KindLTM     Kind = "ltm"
)

// ErrEmptySet is returned when a projection is asked to project zero
// points; the default variant needs at least one point for its origin.
var ErrEmptySet = errors.New("cannot project an empty point set: need at least one point to define the origin")

// LTMParams parametrizes the custom local transverse Mercator.
type LTMParams struct {
	CentralMeridian  float64
	LatitudeOfOrigin float64
	ScaleFactor      float64
	FalseEasting     float64
	FalseNorthing    float64
}

// Projection is a configured projection variant.
type Projection struct {
	kind Kind
	ltm  LTMParams
}

// New builds a projection of the given kind. LTM parameters are
// required for KindLTM and ignored otherwise.
func New(kind Kind, ltm *LTMParams) (Projection, error) {
	switch kind {
	case KindDefault, KindUTM:
		return Projection{kind: kind}, nil
	case KindLTM:
		if ltm == nil {
			return Projection{}, errors.New("ltm projection requires central meridian, latitude of origin, scale factor, false easting and false northing")
		}
		return Projection{kind: kind, ltm: *ltm}, nil
	default:
		return Projection{}, fmt.Errorf("unknown projection method: %q", kind)
	}
}

// ForMethod maps a calibration method name onto the projection variant
// the original tool pairs it with: "ltm" uses the parametrized LTM,
// everything else the default local tangent-plane projection.
func ForMethod(method string, ltm *LTMParams) (Projection, error) {
	if method == string(KindLTM) {
		return New(KindLTM, ltm)
	}
	return New(KindDefault, nil)
}

// Kind returns the configured variant.
func (p Projection) Kind() Kind { return p.kind }

// Project converts a geodetic set to planar Easting/Northing in meters.
// Heights pass through unchanged (ellipsoidal in, ellipsoidal out).
func (p Projection) Project(set points.GeodeticSet) (points.Set, error) {
	if len(set) == 0 {
		return nil, ErrEmptySet
	}

	var crs wgs84.CoordinateReferenceSystem
	switch p.kind {
	case KindDefault:
		// Transverse Mercator with the first point as origin, scale 1
		// and zero false origin: a site-centered tangent plane.
		crs = wgs84.WGS84().TransverseMercator(set[0].Longitude, set[0].Latitude, 1, 0, 0)
	case KindUTM:
		lon, lat := meanLonLat(set)
		crs = wgs84.UTM(utmZone(lon), lat >= 0)
	case KindLTM:
		crs = wgs84.WGS84().TransverseMercator(
			p.ltm.CentralMeridian,
			p.ltm.LatitudeOfOrigin,
			p.ltm.ScaleFactor,
			p.ltm.FalseEasting,
			p.ltm.FalseNorthing,
		)
	default:
		return nil, fmt.Errorf("unknown projection method: %q", p.kind)
	}

	project := wgs84.LonLat().To(crs)
	out := make(points.Set, len(set))
	for i, gp := range set {
		// The library round-trips heights through geocentric XYZ,
		// picking up nanometer noise; the input height is the output.
		east, north, _ := project(gp.Longitude, gp.Latitude, gp.Height)
		out[i] = points.ControlPoint{
			ID:       gp.ID,
			Easting:  east,
			Northing: north,
			Height:   gp.Height,
		}
	}
	return out, nil
}

func meanLonLat(set points.GeodeticSet) (lon, lat float64) {
	for _, p := range set {
		lon += p.Longitude
		lat += p.Latitude
	}
	n := float64(len(set))
	return lon / n, lat / n
}

// utmZone computes the standard 6-degree UTM zone for a longitude.
func utmZone(lon float64) float64 {
	zone := int((lon+180)/6) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return float64(zone)
}
