// Package geo implements the position codec, the radius coverage generator
// and the bucketed spatial index used to find good curb spots near an
// address.
//
// Go Learning Note — What is a Geohash?
// A geohash is a way to encode a latitude/longitude pair into a short string.
// The key property is that nearby locations share a common prefix. For example,
// two curbs 100m apart might both start with "9q8yyk", while a curb 10km away
// might start with "9q8yz". This lets the index group records by prefix and
// only look at the prefixes that cover a search circle.
//
// Precision determines the cell size:
//
//	1 → ~5000 km    4 → ~39 km     7 → ~153 m    10 → ~1.2 m
//	2 → ~1250 km    5 → ~5 km      8 → ~19 m     11 → ~15 cm
//	3 → ~156 km     6 → ~1.2 km    9 → ~2.4 m    12 → ~1.9 cm
//
// Curb records are stored at precision 12 and bucketed at a much coarser
// precision (4 by default, see config.IndexConfig).
package geo

import (
	"strings"

	"curbfinder/internal/domain/entities"

	"github.com/mmcloughlin/geohash"
	"github.com/rotisserie/eris"
	"github.com/umahmood/haversine"
)

const (
	// base32 is the geohash character set (32 characters). Note that 'a', 'i',
	// 'l', and 'o' are excluded to avoid confusion with digits 0/1.
	base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

	// MaxPrecision is the longest geohash the codec accepts.
	MaxPrecision = 12
)

// Box is the latitude/longitude footprint of a geohash cell.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Height returns the cell height in degrees of latitude.
func (b Box) Height() float64 { return b.MaxLat - b.MinLat }

// Width returns the cell width in degrees of longitude.
func (b Box) Width() float64 { return b.MaxLon - b.MinLon }

// Normalize trims whitespace and lower-cases a position code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Validate reports whether code is a well-formed geohash: non-empty, at most
// MaxPrecision characters and drawn from the geohash alphabet. Codes are
// expected to be normalized.
func Validate(code string) error {
	if code == "" {
		return eris.Wrap(entities.ErrInvalidPositionCode, "empty geohash")
	}
	if len(code) > MaxPrecision {
		return eris.Wrapf(entities.ErrInvalidPositionCode, "geohash %q longer than %d characters", code, MaxPrecision)
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(base32, code[i]) < 0 {
			return eris.Wrapf(entities.ErrInvalidPositionCode, "geohash %q has invalid character %q at %d", code, code[i], i)
		}
	}
	return nil
}

// Encode converts latitude and longitude to a geohash string with the given
// precision. Precision is clamped to [1, MaxPrecision].
func Encode(lat, lon float64, precision int) string {
	return geohash.EncodeWithPrecision(lat, lon, uint(clampPrecision(precision)))
}

// Decode returns the centre of the cell a geohash denotes.
//
// Go Learning Note — Named Return Values:
// The signature `(lat, lon float64, err error)` documents which float64 is
// latitude and which is longitude at the call site.
func Decode(code string) (lat, lon float64, err error) {
	code = Normalize(code)
	if err := Validate(code); err != nil {
		return 0, 0, err
	}
	lat, lon = geohash.DecodeCenter(code)
	return lat, lon, nil
}

// BoundingBox returns the footprint of a geohash cell.
func BoundingBox(code string) (Box, error) {
	code = Normalize(code)
	if err := Validate(code); err != nil {
		return Box{}, err
	}
	b := geohash.BoundingBox(code)
	return Box{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLon: b.MinLng, MaxLon: b.MaxLng}, nil
}

// Neighbors returns the 8 cells surrounding code at the same precision.
func Neighbors(code string) ([]string, error) {
	code = Normalize(code)
	if err := Validate(code); err != nil {
		return nil, err
	}
	return geohash.Neighbors(code), nil
}

// AllNeighbors returns the centre cell followed by its 8 neighbours, a 3x3
// grid. Cells near the poles can repeat; duplicates are removed.
func AllNeighbors(code string) ([]string, error) {
	around, err := Neighbors(code)
	if err != nil {
		return nil, err
	}
	code = Normalize(code)
	cells := make([]string, 0, len(around)+1)
	seen := map[string]bool{code: true}
	cells = append(cells, code)
	for _, n := range around {
		if !seen[n] {
			seen[n] = true
			cells = append(cells, n)
		}
	}
	return cells, nil
}

// DistanceKm returns the great-circle distance in kilometres between the
// centres of two geohash cells. Identical codes are exactly 0 apart.
func DistanceKm(a, b string) (float64, error) {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 0, Validate(a)
	}
	latA, lonA, err := Decode(a)
	if err != nil {
		return 0, err
	}
	latB, lonB, err := Decode(b)
	if err != nil {
		return 0, err
	}
	return HaversineKm(latA, lonA, latB, lonB), nil
}

// HaversineKm calculates the distance between two points in kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km
}

func clampPrecision(precision int) int {
	if precision < 1 {
		return 1
	}
	if precision > MaxPrecision {
		return MaxPrecision
	}
	return precision
}
