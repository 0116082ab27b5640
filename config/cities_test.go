package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCityNames(t *testing.T) {
	names := GetCityNames()

	require.Len(t, names, len(SupportedCities))
	assert.Contains(t, names, "amsterdam")
	assert.Contains(t, names, "new-york")
	for _, name := range names {
		assert.Equal(t, NormalizeCity(name), name, "city names should already be normalized")
	}
}

func TestGetCityByName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expectCity string
		expectNil  bool
	}{
		{
			name:       "Exact slug",
			input:      "amsterdam",
			expectCity: "amsterdam",
		},
		{
			name:       "Display name with spaces",
			input:      "New York",
			expectCity: "new-york",
		},
		{
			name:       "Mixed case",
			input:      "LisBon",
			expectCity: "lisbon",
		},
		{
			name:      "Unsupported city",
			input:     "Utrecht",
			expectNil: true,
		},
		{
			name:      "Empty input",
			input:     "",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := GetCityByName(tt.input)
			if tt.expectNil {
				assert.Nil(t, city)
				return
			}
			require.NotNil(t, city)
			assert.Equal(t, tt.expectCity, city.Name)
			assert.Len(t, city.Center, 2)
		})
	}
}

func TestGetCityByNameReturnsCopy(t *testing.T) {
	city := GetCityByName("amsterdam")
	require.NotNil(t, city)
	city.ZoomLevel = 99

	again := GetCityByName("amsterdam")
	require.NotNil(t, again)
	assert.Equal(t, 13, again.ZoomLevel)
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple city name",
			input:    "Amsterdam",
			expected: "amsterdam",
		},
		{
			name:     "City name with spaces",
			input:    "Den Haag",
			expected: "den-haag",
		},
		{
			name:     "City name with apostrophe",
			input:    "'s-Hertogenbosch",
			expected: "s-hertogenbosch",
		},
		{
			name:     "Mixed case with spaces",
			input:    "Alphen aan den Rijn",
			expected: "alphen-aan-den-rijn",
		},
		{
			name:     "Already normalized",
			input:    "utrecht",
			expected: "utrecht",
		},
		{
			name:     "Multiple spaces",
			input:    "Bergen  op  Zoom",
			expected: "bergen-op-zoom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeCity(tt.input)
			assert.Equal(t, tt.expected, result,
				"NormalizeCity(%q) = %q, want %q", tt.input, result, tt.expected)
		})
	}
}
