package api

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"staybook/server/config"
	"staybook/server/internal/models"
)

var (
	ErrInvalidOrder       = errors.New("order must be asc or desc")
	ErrInvalidPriceRange  = errors.New("min_price must not exceed max_price")
	ErrIncompleteLocation = errors.New("lat and lng must be given together")
	ErrUnknownDestination = errors.New("unknown destination")
	ErrUnknownTimeZone    = errors.New("unknown time zone")
	ErrInvalidCheckIn     = errors.New("check_in must be a date (YYYY-MM-DD)")
	ErrInvalidCheckOut    = errors.New("check_out must be a date (YYYY-MM-DD)")
)

// ListingQuery is the query string of the listing search and map endpoints
type ListingQuery struct {
	Query       string   `form:"q"`
	Status      string   `form:"status"`
	Types       []string `form:"type"`
	Amenities   []string `form:"amenity"`
	MinPrice    *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" binding:"omitempty,gte=0"`
	MinRating   *float64 `form:"min_rating" binding:"omitempty,gte=0,lte=5"`
	InstantBook bool     `form:"instant_book"`
	Guests      *int     `form:"guests" binding:"omitempty,gte=1"`
	Bedrooms    *int     `form:"bedrooms" binding:"omitempty,gte=0"`
	Destination string   `form:"near"`
	Lat         *float64 `form:"lat" binding:"omitempty,latitude"`
	Lng         *float64 `form:"lng" binding:"omitempty,longitude"`
	RadiusKm    *float64 `form:"radius_km" binding:"omitempty,gt=0"`
	Sort        string   `form:"sort"`
	Order       string   `form:"order"`
	Page        int      `form:"page"`
	PageSize    int      `form:"page_size"`
}

// ToFilters converts the query into search filters. defaultRadiusKm is
// used when a location is given without a radius.
func (q ListingQuery) ToFilters(defaultRadiusKm float64) (models.SearchFilters, error) {
	f := models.SearchFilters{
		TextQuery:   q.Query,
		MinRating:   q.MinRating,
		InstantBook: q.InstantBook,
		MinGuests:   q.Guests,
		MinBedrooms: q.Bedrooms,
		Amenities:   splitList(q.Amenities),
		Page:        q.Page,
		PageSize:    q.PageSize,
	}

	if q.Status != "" {
		status, err := models.ParseListingStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	for _, name := range splitList(q.Types) {
		t, err := models.ParsePropertyType(name)
		if err != nil {
			return f, err
		}
		f.PropertyTypes = append(f.PropertyTypes, t)
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		// an open upper bound must stay JSON encodable for cache keys
		r := models.PriceRange{Min: 0, Max: math.MaxFloat64}
		if q.MinPrice != nil {
			r.Min = *q.MinPrice
		}
		if q.MaxPrice != nil {
			r.Max = *q.MaxPrice
		}
		if r.Min > r.Max {
			return f, ErrInvalidPriceRange
		}
		f.PriceRange = &r
	}

	near, err := q.location(defaultRadiusKm)
	if err != nil {
		return f, err
	}
	f.Near = near

	sortBy, err := models.ParseListingSort(q.Sort)
	if err != nil {
		return f, err
	}
	f.SortBy = sortBy

	// price sorts cheapest first, the other keys best or newest first
	f.Descending, err = parseOrder(q.Order, sortBy == models.ListingSortRating || sortBy == models.ListingSortNewest)
	if err != nil {
		return f, err
	}

	return f, nil
}

func (q ListingQuery) location(defaultRadiusKm float64) (*models.GeoRadius, error) {
	radius := defaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}

	switch {
	case q.Lat != nil && q.Lng != nil:
		return &models.GeoRadius{Latitude: *q.Lat, Longitude: *q.Lng, RadiusKm: radius}, nil
	case q.Lat != nil || q.Lng != nil:
		return nil, ErrIncompleteLocation
	case q.Destination != "":
		city := config.GetCityByName(q.Destination)
		if city == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDestination, q.Destination)
		}
		return &models.GeoRadius{Latitude: city.Center[0], Longitude: city.Center[1], RadiusKm: radius}, nil
	default:
		return nil, nil
	}
}

// BookingQuery is the query string of the bookings dashboard
type BookingQuery struct {
	Query      string `form:"q"`
	Status     string `form:"status"`
	PropertyID string `form:"property_id"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

func (q BookingQuery) ToFilters() (models.BookingFilters, error) {
	f := models.BookingFilters{
		TextQuery:  q.Query,
		PropertyID: q.PropertyID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}

	if q.Status != "" {
		status, err := models.ParseBookingStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}

	sortBy, err := models.ParseBookingSort(q.Sort)
	if err != nil {
		return f, err
	}
	f.SortBy = sortBy

	f.Descending, err = parseOrder(q.Order, sortBy == models.BookingSortRecent)
	if err != nil {
		return f, err
	}
	return f, nil
}

// ReviewQuery is the query string of a listing's review panel
type ReviewQuery struct {
	Query     string `form:"q"`
	MinRating *int   `form:"min_rating" binding:"omitempty,gte=1,lte=5"`
	Sort      string `form:"sort"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

func (q ReviewQuery) ToFilters(propertyID string) (models.ReviewFilters, error) {
	sortBy, err := models.ParseReviewSort(q.Sort)
	if err != nil {
		return models.ReviewFilters{}, err
	}

	return models.ReviewFilters{
		TextQuery:  q.Query,
		PropertyID: propertyID,
		MinRating:  q.MinRating,
		SortBy:     sortBy,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

// QuoteRequest is the body of a quote request. Dates are YYYY-MM-DD in
// the guest's time zone TZ (an IANA name), UTC when TZ is empty.
type QuoteRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Guests   int    `json:"guests"`
	TZ       string `json:"tz,omitempty"`
}

// Stay parses the request into calendar dates at local midnight
func (r QuoteRequest) Stay() (models.StayRequest, error) {
	loc := time.UTC
	if r.TZ != "" {
		var err error
		if loc, err = time.LoadLocation(r.TZ); err != nil {
			return models.StayRequest{}, fmt.Errorf("%w: %q", ErrUnknownTimeZone, r.TZ)
		}
	}

	checkIn, err := time.ParseInLocation(dateLayout, r.CheckIn, loc)
	if err != nil {
		return models.StayRequest{}, ErrInvalidCheckIn
	}
	checkOut, err := time.ParseInLocation(dateLayout, r.CheckOut, loc)
	if err != nil {
		return models.StayRequest{}, ErrInvalidCheckOut
	}

	return models.StayRequest{CheckIn: checkIn, CheckOut: checkOut, Guests: r.Guests}, nil
}

func parseOrder(order string, defaultDescending bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "":
		return defaultDescending, nil
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}
}

// splitList accepts both repeated parameters and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
