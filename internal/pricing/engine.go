// Package pricing turns a listing's pricing and stay rules plus a guest's
// requested dates into a quote. Everything here is a pure function of its
// inputs and the injected clock.
package pricing

import (
	"math"
	"time"

	"staybook/server/internal/models"
)

// DefaultPlatformFeeRate is the share of the base total charged as service fee
const DefaultPlatformFeeRate = 0.03

const day = 24 * time.Hour

type Engine struct {
	feeRate float64
	now     func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine charging feeRate of the base total as service fee
func NewEngine(feeRate float64, opts ...Option) *Engine {
	e := &Engine{
		feeRate: feeRate,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FeeRate returns the configured platform fee rate
func (e *Engine) FeeRate() float64 {
	return e.feeRate
}

// Nights counts the nights between check-in and check-out, rounding a
// partial day up. It is zero when check-out is not after check-in.
func Nights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	return int(math.Ceil(float64(checkOut.Sub(checkIn)) / float64(day)))
}

// ComputeQuote prices the stay and checks it against the listing's rules.
// It never fails: anything wrong with the request shows up as
// IsBookable == false plus the matching violations.
func (e *Engine) ComputeQuote(property models.Property, stay models.StayRequest) models.Quote {
	nights := Nights(stay.CheckIn, stay.CheckOut)

	baseTotal := float64(nights) * property.Pricing.BasePrice
	serviceFee := math.Round(baseTotal * e.feeRate)
	total := math.Round(baseTotal + property.Pricing.CleaningFee + serviceFee)

	quote := models.Quote{
		Nights:           nights,
		BaseTotal:        baseTotal,
		ServiceFeeAmount: serviceFee,
		CleaningFee:      property.Pricing.CleaningFee,
		TotalCost:        total,
		InstantBook:      property.Availability.InstantBook,
		Violations:       e.violations(&property, stay, nights),
	}
	quote.IsBookable = len(quote.Violations) == 0
	return quote
}

// violations lists every broken stay rule in a fixed order
func (e *Engine) violations(property *models.Property, stay models.StayRequest, nights int) []models.Violation {
	out := []models.Violation{}

	if err := models.ValidateProperty(property); err != nil {
		out = append(out, models.ViolationInvalidProperty)
	}
	if nights <= 0 {
		out = append(out, models.ViolationNoNights)
	}
	if e.isPast(stay.CheckIn) {
		out = append(out, models.ViolationCheckInPast)
	}
	if stay.Guests < 1 {
		out = append(out, models.ViolationNoGuests)
	} else if stay.Guests > property.Capacity.Guests {
		out = append(out, models.ViolationTooManyGuests)
	}
	if nights > 0 {
		if nights < property.Availability.MinStay {
			out = append(out, models.ViolationBelowMinStay)
		}
		if nights > property.Availability.MaxStay {
			out = append(out, models.ViolationAboveMaxStay)
		}
	}
	return out
}

// isPast reports whether the check-in falls on a calendar day before today.
// "Today" is taken in the check-in's own location so a guest's local date
// is compared with a local date.
func (e *Engine) isPast(checkIn time.Time) bool {
	now := e.now().In(checkIn.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, checkIn.Location())
	return checkIn.Before(today)
}
