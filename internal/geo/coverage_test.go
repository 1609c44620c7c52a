package geo

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"curbfinder/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// destination returns the point distKm away from (lat, lon) along bearing
// (degrees), on the same sphere the coverage uses.
func destination(lat, lon, bearing, distKm float64) (float64, float64) {
	phi1 := lat * math.Pi / 180
	lambda1 := lon * math.Pi / 180
	theta := bearing * math.Pi / 180
	delta := distKm / earthRadiusKm

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	return phi2 * 180 / math.Pi, wrapLon(lambda2 * 180 / math.Pi)
}

func TestCoverage_TwinPeaks(t *testing.T) {
	lat, lon, err := Decode("9q8ytwheyxsh")
	require.NoError(t, err)

	cells, err := NewCoverageGenerator(0).Coverage(lat, lon, 500, 4, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"9q8y"}, cells)
}

func TestCoverage_ZeroRadiusIsContainingCell(t *testing.T) {
	lat, lon, err := Decode("9q8yykvq6nhv")
	require.NoError(t, err)

	cells, err := NewCoverageGenerator(0).Coverage(lat, lon, 0, 6, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"9q8yyk"}, cells)
}

func TestCoverage_NoFalseNegatives(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  float64
		radiusM   float64
		precision int
	}{
		{name: "San Francisco p6", lat: 37.7387, lon: -122.4471, radiusM: 2000, precision: 6},
		{name: "San Francisco p7", lat: 37.7387, lon: -122.4471, radiusM: 500, precision: 7},
		{name: "San Francisco p5 within one cell", lat: 37.7387, lon: -122.4471, radiusM: 3000, precision: 5},
		{name: "Cell corner p6", lat: 37.7490234375, lon: -122.431640625, radiusM: 600, precision: 6},
		{name: "Antimeridian", lat: 0.5, lon: 179.999, radiusM: 5000, precision: 5},
		{name: "Southern hemisphere", lat: -33.8688, lon: 151.2093, radiusM: 3000, precision: 6},
		{name: "Near the pole", lat: 89.99, lon: 10, radiusM: 3000, precision: 3},
	}

	rng := rand.New(rand.NewSource(42))
	gen := NewCoverageGenerator(0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, err := gen.Coverage(tt.lat, tt.lon, tt.radiusM, tt.precision, false)
			require.NoError(t, err)

			covered := make(map[string]bool, len(cells))
			for _, c := range cells {
				assert.Len(t, c, tt.precision)
				covered[c] = true
			}

			for i := 0; i < 2000; i++ {
				d := rng.Float64() * tt.radiusM / 1000 * 0.999
				lat, lon := destination(tt.lat, tt.lon, rng.Float64()*360, d)
				cell := Encode(lat, lon, tt.precision)
				if !covered[cell] {
					t.Fatalf("point (%v, %v) %.3f km away lies in %s, not in coverage %v", lat, lon, d, cell, cells)
				}
			}
		})
	}
}

func TestCoverage_NeighbourBlockMatchesGridWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	gen := NewCoverageGenerator(0)

	checked := 0
	for i := 0; i < 3000; i++ {
		lat := rng.Float64()*170 - 85
		lon := rng.Float64()*360 - 180
		precision := 3 + rng.Intn(6)
		h, w := cellSize(precision)
		radiusKm := rng.Float64() * h * 111
		dLat, dLon := capExtent(lat, radiusKm)
		if !fitsNeighbourBlock(lon, dLat, dLon, h, w) {
			continue
		}
		checked++

		block := neighbourCells(lat, lon, radiusKm, precision)
		grid, err := gen.gridCells(lat, lon, radiusKm, dLat, dLon, precision)
		require.NoError(t, err)
		sort.Strings(block)
		sort.Strings(grid)
		require.Equal(t, grid, block, "(%v, %v) radius %.3f km precision %d", lat, lon, radiusKm, precision)
	}
	assert.Greater(t, checked, 300)
}

func TestFitsNeighbourBlock(t *testing.T) {
	h, w := cellSize(5)

	assert.True(t, fitsNeighbourBlock(-122.44, h/2, w/2, h, w))
	assert.False(t, fitsNeighbourBlock(-122.44, h, w/2, h, w), "taller than a cell")
	assert.False(t, fitsNeighbourBlock(-122.44, h/2, w, h, w), "wider than a cell")
	assert.False(t, fitsNeighbourBlock(179.99, h/2, w/2, h, w), "crosses the antimeridian")
	assert.False(t, fitsNeighbourBlock(0, h/2, 360, h, w), "reaches a pole")
}

func TestCoverage_PrunesCellsOutsideCircle(t *testing.T) {
	lat, lon, err := Decode("9q8yykvq6nhv")
	require.NoError(t, err)

	cells, err := NewCoverageGenerator(0).Coverage(lat, lon, 1500, 7, false)
	require.NoError(t, err)

	for _, c := range cells {
		box, err := BoundingBox(c)
		require.NoError(t, err)
		assert.LessOrEqual(t, cellDistanceKm(lat, lon, box), 1.5+1e-6, "cell %s", c)
	}
}

func TestCoverage_MergeAdjacent(t *testing.T) {
	box, err := BoundingBox("9q8y")
	require.NoError(t, err)
	lat, lon := (box.MinLat+box.MaxLat)/2, (box.MinLon+box.MaxLon)/2

	cells, err := NewCoverageGenerator(0).Coverage(lat, lon, 25000, 5, true)
	require.NoError(t, err)

	assert.Contains(t, cells, "9q8y")
	for _, c := range cells {
		if c != "9q8y" {
			assert.False(t, strings.HasPrefix(c, "9q8y"), "child %s should have been merged", c)
		}
	}
}

func TestCoverage_InvalidInput(t *testing.T) {
	gen := NewCoverageGenerator(0)

	_, err := gen.Coverage(37.7, -122.4, -1, 5, false)
	assert.ErrorIs(t, err, entities.ErrInvalidRadius)

	_, err = gen.Coverage(37.7, -122.4, math.NaN(), 5, false)
	assert.ErrorIs(t, err, entities.ErrInvalidRadius)

	_, err = gen.Coverage(91, -122.4, 500, 5, false)
	assert.ErrorIs(t, err, entities.ErrInvalidPositionCode)

	_, err = gen.Coverage(37.7, -122.4, 500, 0, false)
	assert.Error(t, err)
}

func TestCoverage_TooLarge(t *testing.T) {
	_, err := NewCoverageGenerator(100).Coverage(37.7, -122.4, 50000, 8, false)
	assert.ErrorIs(t, err, entities.ErrCoverageTooLarge)
}

func TestMergeCells(t *testing.T) {
	var cells []string
	for i := 0; i < len(base32); i++ {
		cells = append(cells, "9q8y"+string(base32[i]))
	}
	cells = append(cells, "9q8z0")

	assert.Equal(t, []string{"9q8y", "9q8z0"}, MergeCells(cells))
}

func TestMergeCells_Cascades(t *testing.T) {
	var cells []string
	for i := 0; i < len(base32); i++ {
		for j := 0; j < len(base32); j++ {
			cells = append(cells, "9q8"+string(base32[i])+string(base32[j]))
		}
	}

	assert.Equal(t, []string{"9q8"}, MergeCells(cells))
}

func TestMergeCells_IncompleteSetUntouched(t *testing.T) {
	cells := []string{"9q8yb", "9q8yc", "9q8yf"}
	assert.Equal(t, cells, MergeCells(cells))
}

func TestWrapLon(t *testing.T) {
	assert.InDelta(t, -179.0, wrapLon(181), 1e-9)
	assert.InDelta(t, 179.0, wrapLon(-181), 1e-9)
	assert.InDelta(t, -180.0, wrapLon(180), 1e-9)
	assert.InDelta(t, 10.0, wrapLon(10), 1e-9)
}

func BenchmarkCoverage(b *testing.B) {
	gen := NewCoverageGenerator(0)
	for i := 0; i < b.N; i++ {
		_, _ = gen.Coverage(37.7387, -122.4471, 500, 7, true)
	}
}
