package geo

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// Coordinates are stored with 8 fractional digits and displayed with 4.
	storePrecision   = 8
	displayPrecision = 4
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	maxLat = decimal.NewFromInt(90)
	maxLon = decimal.NewFromInt(180)
)

// Point is a latitude/longitude pair held as fixed-point decimals.
type Point struct {
	Lat decimal.Decimal
	Lon decimal.Decimal
}

// ParsePoint validates a pair of decimal-string coordinates. Inputs may carry
// at most 8 fractional digits and must fall inside the WGS84 bounds.
func ParsePoint(lat, lon string) (Point, error) {
	latDec, err := parseCoordinate(lat, maxLat)
	if err != nil {
		return Point{}, err
	}
	lonDec, err := parseCoordinate(lon, maxLon)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: latDec, Lon: lonDec}, nil
}

func parseCoordinate(s string, bound decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, ErrInvalidCoordinate
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidCoordinate
	}
	if d.Exponent() < -storePrecision {
		return decimal.Decimal{}, ErrInvalidCoordinate
	}
	if d.Abs().GreaterThan(bound) {
		return decimal.Decimal{}, ErrInvalidCoordinate
	}
	return d, nil
}

// StoreLat renders the latitude at full storage precision.
func (p Point) StoreLat() string { return p.Lat.StringFixed(storePrecision) }

// StoreLon renders the longitude at full storage precision.
func (p Point) StoreLon() string { return p.Lon.StringFixed(storePrecision) }

func (p Point) DisplayLat() string { return p.Lat.StringFixed(displayPrecision) }

func (p Point) DisplayLon() string { return p.Lon.StringFixed(displayPrecision) }

// Display rounds a stored coordinate string down to display precision.
// Values that do not parse are passed through untouched.
func Display(stored string) string {
	d, err := decimal.NewFromString(stored)
	if err != nil {
		return stored
	}
	return d.StringFixed(displayPrecision)
}

// MapLink builds a shareable map URL from stored coordinate strings.
func MapLink(lat, lon string) string {
	return "https://maps.google.com/?q=" + Display(lat) + "," + Display(lon)
}
