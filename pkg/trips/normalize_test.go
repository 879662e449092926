package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdeck/tripdeck/pkg/uberdriver"
)

func TestNormalizeTitledDuplicateWins(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"named":   {Latitude: 1, Longitude: 1, Title: "Home", Subtitle: "1 Main St"},
		"unnamed": {Latitude: 1, Longitude: 1},
	}

	stops := NormalizeLocations(locationMap, []string{"unnamed"})

	require.Len(t, stops, 1)
	assert.Equal(t, "unnamed", stops[0].ID)
	assert.Equal(t, "Home", stops[0].Name)
	assert.Equal(t, "Home, 1 Main St", stops[0].Text)
	assert.Equal(t, 0, stops[0].Order)
}

func TestNormalizeOneStopPerCoordinatePair(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"a": {Latitude: 1, Longitude: 1, Title: "Depot"},
		"b": {Latitude: 1, Longitude: 1},
		"c": {Latitude: 2, Longitude: 2},
	}

	stops := NormalizeLocations(locationMap, []string{"a", "b", "c"})

	require.Len(t, stops, 2)
	for _, stop := range stops {
		if stop.Latitude == 1 {
			assert.Equal(t, "Depot", stop.Name)
		}
	}
}

func TestNormalizePreservesStopOrder(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"start": {Latitude: 1, Longitude: 1},
		"via1":  {Latitude: 2, Longitude: 2},
		"via2":  {Latitude: 3, Longitude: 3},
		"end":   {Latitude: 4, Longitude: 4},
	}

	stops := NormalizeLocations(locationMap, []string{"start", "via1", "via2", "end"})

	require.Len(t, stops, 4)
	assert.Equal(t, []string{"start", "via1", "via2", "end"}, []string{stops[0].ID, stops[1].ID, stops[2].ID, stops[3].ID})
	assert.Equal(t, []int{0, 1, 2, 3}, []int{stops[0].Order, stops[1].Order, stops[2].Order, stops[3].Order})
}

func TestNormalizeEmptyMap(t *testing.T) {
	stops := NormalizeLocations(map[string]uberdriver.Location{}, []string{"start", "end"})

	assert.Empty(t, stops)
}

func TestNormalizeFallsBackToFullMap(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"a": {Latitude: 1, Longitude: 1},
		"b": {Latitude: 2, Longitude: 2},
	}

	stops := NormalizeLocations(locationMap, []string{"missing"})

	require.Len(t, stops, 2)
	assert.Equal(t, -1, stops[0].Order)
	assert.Equal(t, -1, stops[1].Order)
}

func TestNormalizeFallbackOrderIsDeterministic(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"delta": {Latitude: 9, Longitude: 9},
		"alpha": {Latitude: 1, Longitude: 1},
		"bravo": {Latitude: 2, Longitude: 2},
	}

	// nothing in the visiting order matches, so every entry is unranked and
	// ties fall back to lexical key order
	stops := NormalizeLocations(locationMap, []string{"missing"})

	require.Len(t, stops, 3)
	assert.Equal(t, []string{"alpha", "bravo", "delta"}, []string{stops[0].ID, stops[1].ID, stops[2].ID})
}

func TestNormalizeDisplayFields(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"plain": {Latitude: 1.5, Longitude: -2.25},
	}

	stops := NormalizeLocations(locationMap, []string{"plain"})

	require.Len(t, stops, 1)
	assert.Equal(t, "1.5, -2.25", stops[0].Text)
	assert.Equal(t, "1.5, -2.25", stops[0].Name)
	assert.Equal(t, "https://maps.google.com/?q=1.5,-2.25", stops[0].Maps)
	assert.Equal(t, "Point", stops[0].Location.Type)
	assert.Equal(t, []float64{-2.25, 1.5}, stops[0].Location.Coordinates)
}

func TestNormalizeTitleWithoutSubtitle(t *testing.T) {
	locationMap := map[string]uberdriver.Location{
		"x": {Latitude: 2, Longitude: 2, Title: "Depot"},
	}

	stops := NormalizeLocations(locationMap, []string{"x"})

	require.Len(t, stops, 1)
	assert.Equal(t, "Depot", stops[0].Name)
	assert.Equal(t, "2, 2", stops[0].Text)
}
