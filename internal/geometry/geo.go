package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"staybook/server/internal/models"
)

// PointOf returns the listing location as an orb point (lon, lat).
// ok is false when the listing has no coordinates.
func PointOf(loc models.Location) (orb.Point, bool) {
	if !loc.HasCoordinates() {
		return orb.Point{}, false
	}
	return orb.Point{*loc.Longitude, *loc.Latitude}, true
}

// DistanceKm is the great-circle distance between two points
func DistanceKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// Radius is a precomputed circle used to test many listings against the
// same search center.
type Radius struct {
	center   orb.Point
	radiusKm float64
	bound    orb.Bound

	// boxed is false when the bound crosses the antimeridian and cannot
	// be used as a pre-check
	boxed bool
}

func NewRadius(r models.GeoRadius) Radius {
	center := orb.Point{r.Longitude, r.Latitude}
	bound := geo.NewBoundAroundPoint(center, r.RadiusKm*1000)
	return Radius{
		center:   center,
		radiusKm: r.RadiusKm,
		bound:    bound,
		boxed:    bound.Min[0] >= -180 && bound.Max[0] <= 180,
	}
}

// Contains reports whether the location lies within the circle.
// Listings without coordinates are never inside.
func (r Radius) Contains(loc models.Location) bool {
	p, ok := PointOf(loc)
	if !ok {
		return false
	}
	// cheap box test first, the bound is slightly larger than the circle
	if r.boxed && !r.bound.Contains(p) {
		return false
	}
	return DistanceKm(r.center, p) <= r.radiusKm
}

// Bounds returns the smallest box holding every located listing
func Bounds(properties []models.Property) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, p := range properties {
		pt, ok := PointOf(p.Location)
		if !ok {
			continue
		}
		if !found {
			bound = orb.Bound{Min: pt, Max: pt}
			found = true
			continue
		}
		bound = bound.Extend(pt)
	}
	return bound, found
}

// FeatureCollection renders listings as GeoJSON points for the map view.
// Listings without coordinates are left out.
func FeatureCollection(properties []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range properties {
		pt, ok := PointOf(p.Location)
		if !ok {
			continue
		}

		feature := geojson.NewFeature(pt)
		feature.ID = p.ID
		feature.Properties = geojson.Properties{
			"title":        p.Title,
			"type":         p.Type.String(),
			"type_label":   p.Type.Label(),
			"icon":         p.Type.Icon(),
			"city":         p.Location.City,
			"base_price":   p.Pricing.BasePrice,
			"rating":       p.Rating,
			"instant_book": p.Availability.InstantBook,
		}
		fc.Append(feature)
	}

	if bound, ok := Bounds(properties); ok {
		fc.BBox = geojson.NewBBox(bound)
	}
	fc.ExtraMembers = geojson.Properties{
		"count": len(fc.Features),
	}
	return fc
}
