package search

import (
	"strings"

	"staybook/server/internal/geometry"
	"staybook/server/internal/models"
)

type listingPredicate func(p *models.Property) bool

// Listings runs the listing search: filter, optional sort, then paginate
func (m *Matcher) Listings(catalog []models.Property, f models.SearchFilters) models.Page[models.Property] {
	matched := m.MatchListings(catalog, f)
	return paginate(matched, f.Page, m.PageSize(f.PageSize))
}

// MatchListings returns every matching listing in result order, unpaginated.
// The map view uses it to plot all matches at once.
func (m *Matcher) MatchListings(catalog []models.Property, f models.SearchFilters) []models.Property {
	predicates := listingPredicates(f)
	matched := filterItems(m, catalog, func(p *models.Property) bool {
		for _, pred := range predicates {
			if !pred(p) {
				return false
			}
		}
		return true
	})
	sortItems(matched, listingLess(f.SortBy), f.Descending)
	return matched
}

// listingPredicates builds one predicate per active filter
func listingPredicates(f models.SearchFilters) []listingPredicate {
	var preds []listingPredicate

	if q := strings.ToLower(strings.TrimSpace(f.TextQuery)); q != "" {
		preds = append(preds, func(p *models.Property) bool {
			return containsFold(q, p.Title, p.Location.City, p.Location.State, p.HostName)
		})
	}

	if f.Status != nil {
		status := *f.Status
		preds = append(preds, func(p *models.Property) bool {
			return p.Status == status
		})
	}

	if len(f.PropertyTypes) > 0 {
		types := make(map[models.PropertyType]struct{}, len(f.PropertyTypes))
		for _, t := range f.PropertyTypes {
			types[t] = struct{}{}
		}
		preds = append(preds, func(p *models.Property) bool {
			_, ok := types[p.Type]
			return ok
		})
	}

	if len(f.Amenities) > 0 {
		amenities := f.Amenities
		preds = append(preds, func(p *models.Property) bool {
			return p.HasAmenities(amenities)
		})
	}

	if f.PriceRange != nil {
		lo, hi := f.PriceRange.Min, f.PriceRange.Max
		preds = append(preds, func(p *models.Property) bool {
			return p.Pricing.BasePrice >= lo && p.Pricing.BasePrice <= hi
		})
	}

	if f.MinRating != nil {
		minRating := *f.MinRating
		preds = append(preds, func(p *models.Property) bool {
			return p.Rating >= minRating
		})
	}

	if f.InstantBook {
		preds = append(preds, func(p *models.Property) bool {
			return p.Availability.InstantBook
		})
	}

	if f.MinGuests != nil {
		guests := *f.MinGuests
		preds = append(preds, func(p *models.Property) bool {
			return p.Capacity.Guests >= guests
		})
	}

	if f.MinBedrooms != nil {
		bedrooms := *f.MinBedrooms
		preds = append(preds, func(p *models.Property) bool {
			return p.Capacity.Bedrooms >= bedrooms
		})
	}

	if f.Near != nil {
		radius := geometry.NewRadius(*f.Near)
		preds = append(preds, func(p *models.Property) bool {
			return radius.Contains(p.Location)
		})
	}

	return preds
}

func listingLess(key models.ListingSort) func(a, b *models.Property) bool {
	switch key {
	case models.ListingSortPrice:
		return func(a, b *models.Property) bool { return a.Pricing.BasePrice < b.Pricing.BasePrice }
	case models.ListingSortRating:
		return func(a, b *models.Property) bool { return a.Rating < b.Rating }
	case models.ListingSortNewest:
		return func(a, b *models.Property) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return nil
	}
}

// containsFold reports whether any field contains the lower-cased query
func containsFold(lowerQuery string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}
