package config

import (
	"regexp"
	"strings"
)

// City represents a destination guests can search around
type City struct {
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedCities is the list of destinations offered as search shortcuts
var SupportedCities = []City{
	{
		Name:      "amsterdam",
		Country:   "Netherlands",
		Center:    []float64{52.3676, 4.9041},
		ZoomLevel: 13,
	},
	{
		Name:      "lisbon",
		Country:   "Portugal",
		Center:    []float64{38.7223, -9.1393},
		ZoomLevel: 13,
	},
	{
		Name:      "barcelona",
		Country:   "Spain",
		Center:    []float64{41.3874, 2.1686},
		ZoomLevel: 13,
	},
	{
		Name:      "new-york",
		Country:   "United States",
		Center:    []float64{40.7128, -74.0060},
		ZoomLevel: 12,
	},
	{
		Name:      "cape-town",
		Country:   "South Africa",
		Center:    []float64{-33.9249, 18.4241},
		ZoomLevel: 12,
	},
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeCity turns a display name into the slug used for lookups,
// e.g. "New  York" becomes "new-york".
func NormalizeCity(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	slug := strings.Join(fields, "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	return strings.Trim(slug, "-")
}

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name, or nil
func GetCityByName(name string) *City {
	slug := NormalizeCity(name)
	for i := range SupportedCities {
		if SupportedCities[i].Name == slug {
			city := SupportedCities[i]
			return &city
		}
	}
	return nil
}
