package trips

import (
	"fmt"
	"sort"

	"github.com/tripdeck/tripdeck/pkg/uberdriver"
)

// NormalizeLocations flattens an offer's location map into an ordered,
// deduplicated list of stops.
//
// stopOrder is the canonical visiting order (start, vias, end). Candidate
// stops are the map entries referenced by it; when none of the references
// match the map falls back to every entry. For each candidate the full map is
// scanned for a titled variant at the same coordinates, which wins over an
// untitled one. At most one stop survives per distinct coordinate pair.
func NormalizeLocations(locationMap map[string]uberdriver.Location, stopOrder []string) []Stop {
	route := map[string]uberdriver.Location{}
	for _, key := range stopOrder {
		if location, ok := locationMap[key]; ok {
			route[key] = location
		}
	}

	if len(route) == 0 {
		route = locationMap
	}

	// Visit stop-order keys first, then any remaining keys in lexical order,
	// so duplicate resolution is deterministic.
	var candidateKeys []string
	visited := map[string]bool{}
	for _, key := range stopOrder {
		if _, ok := route[key]; ok && !visited[key] {
			candidateKeys = append(candidateKeys, key)
			visited[key] = true
		}
	}
	var remainingKeys []string
	for key := range route {
		if !visited[key] {
			remainingKeys = append(remainingKeys, key)
		}
	}
	sort.Strings(remainingKeys)
	candidateKeys = append(candidateKeys, remainingKeys...)

	stops := []Stop{}
	coordinateSlots := map[string]int{}

	for _, key := range candidateKeys {
		record := route[key]

		// A titled variant of the same point anywhere in the original map
		// takes precedence over an untitled one
		if record.Title == "" {
			if titled, ok := findTitledVariant(locationMap, record); ok {
				record = titled
			}
		}

		text := displayText(record)
		name := record.Title
		if name == "" {
			name = text
		}

		stop := Stop{
			ID:        key,
			Latitude:  record.Latitude,
			Longitude: record.Longitude,

			Name: name,
			Text: text,
			Maps: fmt.Sprintf("https://maps.google.com/?q=%v,%v", record.Latitude, record.Longitude),

			Order: stopRank(stopOrder, key),

			Location: NewGeoJSONPoint(record.Latitude, record.Longitude),
		}

		coordinateKey := fmt.Sprintf("%v,%v", record.Latitude, record.Longitude)
		if slot, ok := coordinateSlots[coordinateKey]; ok {
			stops[slot] = stop
		} else {
			coordinateSlots[coordinateKey] = len(stops)
			stops = append(stops, stop)
		}
	}

	SortStops(stops)

	return stops
}

// SortStops orders stops ascending by rank. Unranked stops (order -1) sort
// before ranked ones; ties keep their existing relative order.
func SortStops(stops []Stop) {
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].Order < stops[j].Order
	})
}

func findTitledVariant(locationMap map[string]uberdriver.Location, record uberdriver.Location) (uberdriver.Location, bool) {
	var keys []string
	for key := range locationMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		other := locationMap[key]
		if other.Latitude == record.Latitude && other.Longitude == record.Longitude && other.Title != "" {
			return other, true
		}
	}

	return uberdriver.Location{}, false
}

func displayText(location uberdriver.Location) string {
	if location.Title != "" && location.Subtitle != "" {
		return fmt.Sprintf("%s, %s", location.Title, location.Subtitle)
	}

	return fmt.Sprintf("%v, %v", location.Latitude, location.Longitude)
}

func stopRank(stopOrder []string, key string) int {
	for index, orderKey := range stopOrder {
		if orderKey == key {
			return index
		}
	}

	return -1
}
