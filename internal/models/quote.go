package models

import "time"

// StayRequest is a guest's candidate stay, built per quote attempt
type StayRequest struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Guests   int       `json:"guests"`
}

// Violation identifies a stay rule that a request breaks
type Violation int

const (
	ViolationInvalidProperty Violation = iota + 1
	ViolationNoNights
	ViolationCheckInPast
	ViolationNoGuests
	ViolationTooManyGuests
	ViolationBelowMinStay
	ViolationAboveMaxStay
)

func (v Violation) String() string {
	switch v {
	case ViolationInvalidProperty:
		return "invalid_property"
	case ViolationNoNights:
		return "check_out_not_after_check_in"
	case ViolationCheckInPast:
		return "check_in_in_past"
	case ViolationNoGuests:
		return "no_guests"
	case ViolationTooManyGuests:
		return "too_many_guests"
	case ViolationBelowMinStay:
		return "below_min_stay"
	case ViolationAboveMaxStay:
		return "above_max_stay"
	default:
		return "unknown"
	}
}

func (v Violation) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText leaves v at zero for names it does not know
func (v *Violation) UnmarshalText(text []byte) error {
	*v = 0
	for candidate := ViolationInvalidProperty; candidate <= ViolationAboveMaxStay; candidate++ {
		if candidate.String() == string(text) {
			*v = candidate
			return nil
		}
	}
	return nil
}

// Quote is the priced outcome of a stay request. Amounts share the
// currency of the property's pricing and are whole units where rounded.
type Quote struct {
	Nights           int         `json:"nights"`
	BaseTotal        float64     `json:"base_total"`
	ServiceFeeAmount float64     `json:"service_fee_amount"`
	CleaningFee      float64     `json:"cleaning_fee"`
	TotalCost        float64     `json:"total_cost"`
	IsBookable       bool        `json:"is_bookable"`
	InstantBook      bool        `json:"instant_book"`
	Violations       []Violation `json:"violations"`
}

// HasViolation reports whether the quote was rejected for the given rule
func (q Quote) HasViolation(v Violation) bool {
	for _, got := range q.Violations {
		if got == v {
			return true
		}
	}
	return false
}
