package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPropertyType  = errors.New("unknown property type")
	ErrUnknownListingStatus = errors.New("unknown listing status")
	ErrUnknownBookingStatus = errors.New("unknown booking status")
)

// PropertyType enumerates the kinds of place a host can list
type PropertyType int

const (
	PropertyTypeUnknown PropertyType = iota
	PropertyTypeApartment
	PropertyTypeHouse
	PropertyTypeVilla
	PropertyTypeCabin
	PropertyTypeCondo
	PropertyTypeStudio
)

var propertyTypeNames = map[PropertyType]string{
	PropertyTypeApartment: "apartment",
	PropertyTypeHouse:     "house",
	PropertyTypeVilla:     "villa",
	PropertyTypeCabin:     "cabin",
	PropertyTypeCondo:     "condo",
	PropertyTypeStudio:    "studio",
}

func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Label is the human readable name shown on listing cards
func (t PropertyType) Label() string {
	switch t {
	case PropertyTypeApartment:
		return "Apartment"
	case PropertyTypeHouse:
		return "Entire house"
	case PropertyTypeVilla:
		return "Villa"
	case PropertyTypeCabin:
		return "Cabin"
	case PropertyTypeCondo:
		return "Condo"
	case PropertyTypeStudio:
		return "Studio"
	default:
		return "Other"
	}
}

// Icon names the UI glyph for the type
func (t PropertyType) Icon() string {
	switch t {
	case PropertyTypeApartment, PropertyTypeCondo, PropertyTypeStudio:
		return "building"
	case PropertyTypeHouse:
		return "home"
	case PropertyTypeVilla:
		return "palm-tree"
	case PropertyTypeCabin:
		return "trees"
	default:
		return "map-pin"
	}
}

// ParsePropertyType converts strings such as "villa" to the enum
func ParsePropertyType(s string) (PropertyType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range propertyTypeNames {
		if name == key {
			return t, nil
		}
	}
	return PropertyTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownPropertyType, s)
}

func (t PropertyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText maps unrecognised names to PropertyTypeUnknown instead of
// failing, so one odd listing does not break a whole import batch.
func (t *PropertyType) UnmarshalText(text []byte) error {
	parsed, err := ParsePropertyType(string(text))
	if err != nil {
		*t = PropertyTypeUnknown
		return nil
	}
	*t = parsed
	return nil
}

// ListingStatus is the host-side publication state of a listing
type ListingStatus int

const (
	ListingStatusUnknown ListingStatus = iota
	ListingStatusActive
	ListingStatusInactive
	ListingStatusDraft
)

func (s ListingStatus) String() string {
	switch s {
	case ListingStatusActive:
		return "active"
	case ListingStatusInactive:
		return "inactive"
	case ListingStatusDraft:
		return "draft"
	default:
		return "unknown"
	}
}

func ParseListingStatus(s string) (ListingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return ListingStatusActive, nil
	case "inactive":
		return ListingStatusInactive, nil
	case "draft":
		return ListingStatusDraft, nil
	default:
		return ListingStatusUnknown, fmt.Errorf("%w: %q", ErrUnknownListingStatus, s)
	}
}

func (s ListingStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ListingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseListingStatus(string(text))
	if err != nil {
		*s = ListingStatusUnknown
		return nil
	}
	*s = parsed
	return nil
}

// BookingStatus is the lifecycle state of a reservation
type BookingStatus int

const (
	BookingStatusUnknown BookingStatus = iota
	BookingStatusPending
	BookingStatusConfirmed
	BookingStatusCancelled
	BookingStatusCompleted
)

func (s BookingStatus) String() string {
	switch s {
	case BookingStatusPending:
		return "pending"
	case BookingStatusConfirmed:
		return "confirmed"
	case BookingStatusCancelled:
		return "cancelled"
	case BookingStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Badge returns the colour variant used to render the status pill
func (s BookingStatus) Badge() string {
	switch s {
	case BookingStatusPending:
		return "warning"
	case BookingStatusConfirmed:
		return "success"
	case BookingStatusCancelled:
		return "danger"
	case BookingStatusCompleted:
		return "info"
	default:
		return "neutral"
	}
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return BookingStatusPending, nil
	case "confirmed":
		return BookingStatusConfirmed, nil
	case "cancelled", "canceled":
		return BookingStatusCancelled, nil
	case "completed":
		return BookingStatusCompleted, nil
	default:
		return BookingStatusUnknown, fmt.Errorf("%w: %q", ErrUnknownBookingStatus, s)
	}
}

func (s BookingStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BookingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBookingStatus(string(text))
	if err != nil {
		*s = BookingStatusUnknown
		return nil
	}
	*s = parsed
	return nil
}
