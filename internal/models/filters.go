package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// PriceRange bounds the nightly base price, both ends inclusive
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GeoRadius restricts results to listings within RadiusKm of a point
type GeoRadius struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
}

type ListingSort string

const (
	ListingSortDefault ListingSort = ""
	ListingSortPrice   ListingSort = "price"
	ListingSortRating  ListingSort = "rating"
	ListingSortNewest  ListingSort = "newest"
)

func ParseListingSort(s string) (ListingSort, error) {
	switch key := ListingSort(strings.ToLower(strings.TrimSpace(s))); key {
	case ListingSortDefault, ListingSortPrice, ListingSortRating, ListingSortNewest:
		return key, nil
	default:
		return ListingSortDefault, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// SearchFilters is the listing search query. Nil pointers and empty
// slices mean "no constraint".
type SearchFilters struct {
	TextQuery     string         `json:"text_query"`
	Status        *ListingStatus `json:"status"`
	PropertyTypes []PropertyType `json:"property_types"`
	Amenities     []string       `json:"amenities"`
	PriceRange    *PriceRange    `json:"price_range"`
	MinRating     *float64       `json:"min_rating"`
	InstantBook   bool           `json:"instant_book"`
	MinGuests     *int           `json:"min_guests"`
	MinBedrooms   *int           `json:"min_bedrooms"`
	Near          *GeoRadius     `json:"near"`
	SortBy        ListingSort    `json:"sort_by"`
	Descending    bool           `json:"descending"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

type BookingSort string

const (
	BookingSortDefault BookingSort = ""
	BookingSortRecent  BookingSort = "recent"
	BookingSortCheckIn BookingSort = "check_in"
)

func ParseBookingSort(s string) (BookingSort, error) {
	switch key := BookingSort(strings.ToLower(strings.TrimSpace(s))); key {
	case BookingSortDefault, BookingSortRecent, BookingSortCheckIn:
		return key, nil
	default:
		return BookingSortDefault, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// BookingFilters is the query for the bookings dashboard
type BookingFilters struct {
	TextQuery  string         `json:"text_query"`
	Status     *BookingStatus `json:"status"`
	PropertyID string         `json:"property_id"`
	SortBy     BookingSort    `json:"sort_by"`
	Descending bool           `json:"descending"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

type ReviewSort string

const (
	ReviewSortDefault ReviewSort = ""
	ReviewSortHelpful ReviewSort = "helpful"
	ReviewSortRecent  ReviewSort = "recent"
	ReviewSortRating  ReviewSort = "rating"
)

func ParseReviewSort(s string) (ReviewSort, error) {
	switch key := ReviewSort(strings.ToLower(strings.TrimSpace(s))); key {
	case ReviewSortDefault, ReviewSortHelpful, ReviewSortRecent, ReviewSortRating:
		return key, nil
	default:
		return ReviewSortDefault, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// ReviewFilters is the query for a listing's review panel. Helpful, recent
// and rating sorts are always descending.
type ReviewFilters struct {
	TextQuery  string     `json:"text_query"`
	PropertyID string     `json:"property_id"`
	MinRating  *int       `json:"min_rating"`
	SortBy     ReviewSort `json:"sort_by"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// Page is one page of a filtered, ordered result set
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}
