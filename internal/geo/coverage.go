package geo

import (
	"math"
	"sort"

	"curbfinder/internal/domain/entities"

	"github.com/rotisserie/eris"
)

const (
	// earthRadiusKm matches the sphere github.com/umahmood/haversine uses, so
	// the enclosing box and the per-cell distance test agree.
	earthRadiusKm = 6371.0

	// DefaultMaxCoverageCells bounds the grid a single coverage may scan.
	DefaultMaxCoverageCells = 1 << 16

	// distanceToleranceKm absorbs float rounding in the edge test.
	distanceToleranceKm = 1e-6
)

// CoverageGenerator finds the geohash cells that intersect a search circle.
//
// When the circle is smaller than a cell it cannot reach past the 3x3 block
// around the cell it is centred in, so Coverage filters AllNeighbors.
// Larger circles walk every cell of the box enclosing the circle. Either
// way a cell is kept only if its nearest point lies within the radius.
type CoverageGenerator struct {
	MaxCells int
}

// NewCoverageGenerator creates a generator that refuses coverages larger
// than maxCells cells. Non-positive values use DefaultMaxCoverageCells.
func NewCoverageGenerator(maxCells int) *CoverageGenerator {
	if maxCells <= 0 {
		maxCells = DefaultMaxCoverageCells
	}
	return &CoverageGenerator{MaxCells: maxCells}
}

// Coverage returns the sorted set of precision-length geohash prefixes
// whose cells intersect the circle of radiusMeters around (lat, lon).
//
// No cell touching the circle is ever left out; cells that merely touch the
// enclosing box are filtered by an exact point-to-cell distance. With
// mergeAdjacent, any parent whose 32 children are all present is returned
// in their place, repeatedly, so keys may be shorter than precision.
func (g *CoverageGenerator) Coverage(lat, lon, radiusMeters float64, precision int, mergeAdjacent bool) ([]string, error) {
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters < 0 {
		return nil, eris.Wrapf(entities.ErrInvalidRadius, "radius %v", radiusMeters)
	}
	if precision < 1 || precision > MaxPrecision {
		return nil, eris.Errorf("coverage: precision %d out of range [1, %d]", precision, MaxPrecision)
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil, eris.Wrapf(entities.ErrInvalidPositionCode, "coordinate (%v, %v)", lat, lon)
	}
	lon = wrapLon(lon)

	radiusKm := radiusMeters / 1000
	h, w := cellSize(precision)
	dLat, dLon := capExtent(lat, radiusKm)

	var cells []string
	if fitsNeighbourBlock(lon, dLat, dLon, h, w) {
		cells = neighbourCells(lat, lon, radiusKm, precision)
	} else {
		var err error
		cells, err = g.gridCells(lat, lon, radiusKm, dLat, dLon, precision)
		if err != nil {
			return nil, eris.Wrapf(err, "radius %vm at precision %d, limit %d cells", radiusMeters, precision, g.MaxCells)
		}
	}

	if mergeAdjacent {
		cells = MergeCells(cells)
	}
	sort.Strings(cells)
	return cells, nil
}

// fitsNeighbourBlock reports whether a circle with the given half-extents
// stays inside the 3x3 block around its cell without crossing the
// antimeridian or a pole.
func fitsNeighbourBlock(lon, dLat, dLon, h, w float64) bool {
	return dLat < h && dLon < w && lon-dLon > -180 && lon+dLon < 180
}

// neighbourCells filters the 3x3 block around the cell holding (lat, lon).
// Only valid when the circle spans less than one cell in each direction.
func neighbourCells(lat, lon, radiusKm float64, precision int) []string {
	block, _ := AllNeighbors(Encode(lat, lon, precision))
	cells := make([]string, 0, len(block))
	for _, code := range block {
		box, _ := BoundingBox(code)
		if cellDistanceKm(lat, lon, box) <= radiusKm+distanceToleranceKm {
			cells = append(cells, code)
		}
	}
	return cells
}

// gridCells walks the cells of the box spanning dLat and dLon around
// (lat, lon). The result is unsorted.
func (g *CoverageGenerator) gridCells(lat, lon, radiusKm, dLat, dLon float64, precision int) ([]string, error) {
	h, w := cellSize(precision)
	rows := int(math.Round(180 / h))
	cols := int(math.Round(360 / w))

	minLat := math.Max(lat-dLat, -90)
	maxLat := math.Min(lat+dLat, 90)
	iStart := clampInt(int(math.Floor((minLat+90)/h)), 0, rows-1)
	iEnd := clampInt(int(math.Floor((maxLat+90)/h)), 0, rows-1)

	jStart, jEnd := 0, cols-1
	s := int(math.Floor((lon - dLon + 180) / w))
	e := int(math.Floor((lon + dLon + 180) / w))
	if e-s+1 < cols {
		jStart, jEnd = s, e
	}

	total := (iEnd - iStart + 1) * (jEnd - jStart + 1)
	if total > g.MaxCells {
		return nil, eris.Wrapf(entities.ErrCoverageTooLarge, "grid of %d", total)
	}

	seen := make(map[string]bool)
	for i := iStart; i <= iEnd; i++ {
		cellMinLat := -90 + float64(i)*h
		for j := jStart; j <= jEnd; j++ {
			col := ((j % cols) + cols) % cols
			box := Box{
				MinLat: cellMinLat,
				MaxLat: cellMinLat + h,
				MinLon: -180 + float64(col)*w,
			}
			box.MaxLon = box.MinLon + w
			if cellDistanceKm(lat, lon, box) > radiusKm+distanceToleranceKm {
				continue
			}
			centerLat, centerLon := (box.MinLat+box.MaxLat)/2, (box.MinLon+box.MaxLon)/2
			seen[Encode(centerLat, centerLon, precision)] = true
		}
	}

	cells := make([]string, 0, len(seen))
	for c := range seen {
		cells = append(cells, c)
	}
	return cells, nil
}

// cellSize returns the height and width in degrees shared by every cell of
// one precision.
func cellSize(precision int) (h, w float64) {
	cell, _ := BoundingBox(Encode(0, 0, precision))
	return cell.Height(), cell.Width()
}

// capExtent returns the latitude and longitude half-extents in degrees of
// the spherical cap of radiusKm centred at lat. A cap reaching a pole spans
// every longitude, reported as 360.
func capExtent(lat, radiusKm float64) (dLat, dLon float64) {
	angular := radiusKm / earthRadiusKm
	dLat = angular * 180 / math.Pi
	if lat+dLat >= 90 || lat-dLat <= -90 {
		return dLat, 360
	}
	dLon = math.Asin(math.Sin(angular)/math.Cos(lat*math.Pi/180)) * 180 / math.Pi
	return dLat, dLon
}

// MergeCells replaces every complete set of 32 sibling cells by their
// parent until no complete set remains. The input is not modified.
func MergeCells(cells []string) []string {
	set := make(map[string]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}

	for {
		children := make(map[string]int)
		for c := range set {
			if len(c) > 1 {
				children[c[:len(c)-1]]++
			}
		}

		merged := false
		for parent, n := range children {
			if n < len(base32) {
				continue
			}
			for k := 0; k < len(base32); k++ {
				delete(set, parent+string(base32[k]))
			}
			set[parent] = true
			merged = true
		}
		if !merged {
			break
		}
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// cellDistanceKm returns the great-circle distance from (lat, lon) to the
// nearest point of box, 0 when the point lies inside it.
func cellDistanceKm(lat, lon float64, box Box) float64 {
	// Shift lon next to the box so the clamp works across the antimeridian.
	mid := (box.MinLon + box.MaxLon) / 2
	lon = mid + wrapLon(lon-mid)

	if lat >= box.MinLat && lat <= box.MaxLat && lon >= box.MinLon && lon <= box.MaxLon {
		return 0
	}

	// Along a parallel, distance grows with |Δlon|, so the clamped
	// longitude is the nearest point on the two horizontal edges.
	clampedLon := math.Max(box.MinLon, math.Min(lon, box.MaxLon))
	best := math.Min(
		HaversineKm(lat, lon, box.MinLat, clampedLon),
		HaversineKm(lat, lon, box.MaxLat, clampedLon),
	)
	for _, edgeLon := range []float64{box.MinLon, box.MaxLon} {
		edgeLat := meridianClosestLat(lat, lon, edgeLon)
		edgeLat = math.Max(box.MinLat, math.Min(edgeLat, box.MaxLat))
		best = math.Min(best, HaversineKm(lat, lon, edgeLat, edgeLon))
	}
	return best
}

// meridianClosestLat returns the latitude on meridian mLon closest to the
// point (lat, lon).
func meridianClosestLat(lat, lon, mLon float64) float64 {
	phi := lat * math.Pi / 180
	cosDLon := math.Cos((mLon - lon) * math.Pi / 180)
	if cosDLon <= 0 {
		// The meridian lies on the far hemisphere; the nearest pole wins.
		if lat < 0 {
			return -90
		}
		return 90
	}
	return math.Atan2(math.Sin(phi), math.Cos(phi)*cosDLon) * 180 / math.Pi
}

// wrapLon maps a longitude into [-180, 180).
func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
