package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidProperty marks a listing that breaks the catalog invariants
var ErrInvalidProperty = errors.New("invalid property")

var validate = validator.New()

type Location struct {
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// HasCoordinates reports whether both latitude and longitude are known
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

type Pricing struct {
	BasePrice   float64 `json:"base_price" validate:"gt=0"`
	CleaningFee float64 `json:"cleaning_fee" validate:"gte=0"`
	// ServiceFee is the host-entered flat fee. It is shown to guests but
	// never added to a quote; quotes use the platform fee rate instead.
	ServiceFee float64 `json:"service_fee" validate:"gte=0"`
}

type Capacity struct {
	Guests    int `json:"guests" validate:"gte=1"`
	Bedrooms  int `json:"bedrooms" validate:"gte=0"`
	Beds      int `json:"beds" validate:"gte=0"`
	Bathrooms int `json:"bathrooms" validate:"gte=0"`
}

type Availability struct {
	MinStay     int  `json:"min_stay" validate:"gte=1"`
	MaxStay     int  `json:"max_stay" validate:"gte=1,gtefield=MinStay"`
	InstantBook bool `json:"instant_book"`
}

type Property struct {
	ID           string        `json:"id" validate:"required"`
	Title        string        `json:"title" validate:"required"`
	HostName     string        `json:"host_name"`
	Type         PropertyType  `json:"type"`
	Status       ListingStatus `json:"status"`
	Location     Location      `json:"location"`
	Pricing      Pricing       `json:"pricing"`
	Capacity     Capacity      `json:"capacity"`
	Availability Availability  `json:"availability"`
	Rating       float64       `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount  int           `json:"review_count" validate:"gte=0"`
	Amenities    []string      `json:"amenities"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ValidateProperty checks the invariants every catalog record must satisfy:
// min stay not above max stay, a positive nightly price and room for at
// least one guest, along with the field ranges declared on the struct.
func ValidateProperty(p *Property) error {
	if p == nil {
		return fmt.Errorf("%w: nil property", ErrInvalidProperty)
	}
	return checkStruct(ErrInvalidProperty, p)
}

// checkStruct runs the struct tag rules and wraps failures in kind
func checkStruct(kind error, v any) error {
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", kind, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", kind, err)
	}
	return nil
}

// NormalizeAmenity folds an amenity name so that "Wi-Fi " and "wi-fi" compare equal
func NormalizeAmenity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AmenitySet returns the listing's amenities as a set of normalized names
func (p *Property) AmenitySet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Amenities))
	for _, a := range p.Amenities {
		if n := NormalizeAmenity(a); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// HasAmenities reports whether every requested amenity is offered
func (p *Property) HasAmenities(requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	set := p.AmenitySet()
	for _, r := range requested {
		n := NormalizeAmenity(r)
		if n == "" {
			continue
		}
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
