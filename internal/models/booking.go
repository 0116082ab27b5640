package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidBooking = errors.New("invalid booking")
	ErrInvalidReview  = errors.New("invalid review")
)

// Booking is a reservation row as shown on the host and guest dashboards
type Booking struct {
	ID            string        `json:"id"`
	PropertyID    string        `json:"property_id" validate:"required"`
	PropertyTitle string        `json:"property_title"`
	GuestName     string        `json:"guest_name" validate:"required"`
	Status        BookingStatus `json:"status"`
	CheckIn       time.Time     `json:"check_in" validate:"required"`
	CheckOut      time.Time     `json:"check_out" validate:"required,gtfield=CheckIn"`
	Guests        int           `json:"guests" validate:"gte=1"`
	TotalCost     float64       `json:"total_cost" validate:"gte=0"`
	CreatedAt     time.Time     `json:"created_at"`
}

// MarshalJSON adds the status badge variant used by the dashboards
func (b Booking) MarshalJSON() ([]byte, error) {
	type booking Booking
	return json.Marshal(struct {
		booking
		StatusBadge string `json:"status_badge"`
	}{booking(b), b.Status.Badge()})
}

// Review is a guest review attached to a listing
type Review struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id" validate:"required"`
	AuthorName   string    `json:"author_name" validate:"required"`
	Rating       int       `json:"rating" validate:"gte=1,lte=5"`
	Body         string    `json:"body"`
	HelpfulCount int       `json:"helpful_count" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidateBooking checks a booking before it is stored: a guest, at least
// one night and at least one guest.
func ValidateBooking(b *Booking) error {
	if b == nil {
		return fmt.Errorf("%w: nil booking", ErrInvalidBooking)
	}
	return checkStruct(ErrInvalidBooking, b)
}

func ValidateReview(r *Review) error {
	if r == nil {
		return fmt.Errorf("%w: nil review", ErrInvalidReview)
	}
	return checkStruct(ErrInvalidReview, r)
}
