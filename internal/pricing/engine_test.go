package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/server/internal/models"
)

var fixedNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(DefaultPlatformFeeRate, WithClock(func() time.Time { return fixedNow }))
}

func testProperty() models.Property {
	return models.Property{
		ID:    "p-1",
		Title: "Canal house",
		Pricing: models.Pricing{
			BasePrice:   2000,
			CleaningFee: 500,
			ServiceFee:  75,
		},
		Capacity:     models.Capacity{Guests: 4, Bedrooms: 2, Beds: 2, Bathrooms: 1},
		Availability: models.Availability{MinStay: 2, MaxStay: 30, InstantBook: true},
		Rating:       4.8,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(checkIn time.Time, nights, guests int) models.StayRequest {
	return models.StayRequest{
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, nights),
		Guests:   guests,
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		expected int
	}{
		{
			name:     "Three whole days",
			checkIn:  date(2026, 4, 1),
			checkOut: date(2026, 4, 4),
			expected: 3,
		},
		{
			name:     "Same day",
			checkIn:  date(2026, 4, 1),
			checkOut: date(2026, 4, 1),
			expected: 0,
		},
		{
			name:     "Check-out before check-in",
			checkIn:  date(2026, 4, 4),
			checkOut: date(2026, 4, 1),
			expected: 0,
		},
		{
			name:     "Partial day rounds up",
			checkIn:  date(2026, 4, 1),
			checkOut: date(2026, 4, 2).Add(3 * time.Hour),
			expected: 2,
		},
		{
			name:     "Across month boundary",
			checkIn:  date(2026, 4, 29),
			checkOut: date(2026, 5, 2),
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestComputeQuote_ReferenceScenario(t *testing.T) {
	quote := testEngine().ComputeQuote(testProperty(), stay(date(2026, 4, 1), 3, 2))

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, 6000.0, quote.BaseTotal)
	assert.Equal(t, 180.0, quote.ServiceFeeAmount)
	assert.Equal(t, 500.0, quote.CleaningFee)
	assert.Equal(t, 6680.0, quote.TotalCost)
	assert.True(t, quote.IsBookable)
	assert.True(t, quote.InstantBook)
	assert.Empty(t, quote.Violations)
}

func TestComputeQuote_FlatServiceFeeIsIgnored(t *testing.T) {
	p := testProperty()
	withoutFlat := p
	withoutFlat.Pricing.ServiceFee = 0

	req := stay(date(2026, 4, 1), 3, 2)
	assert.Equal(t, testEngine().ComputeQuote(withoutFlat, req).TotalCost, testEngine().ComputeQuote(p, req).TotalCost)
}

func TestComputeQuote_TotalFormula(t *testing.T) {
	engine := testEngine()
	prices := []float64{49.99, 120, 333.33, 2000}
	cleaning := []float64{0, 15.5, 500}

	for _, price := range prices {
		for _, fee := range cleaning {
			for nights := 1; nights <= 30; nights++ {
				p := testProperty()
				p.Pricing.BasePrice = price
				p.Pricing.CleaningFee = fee
				p.Availability.MinStay = 1

				quote := engine.ComputeQuote(p, stay(date(2026, 4, 1), nights, 1))

				base := float64(nights) * price
				expected := math.Round(base + fee + math.Round(base*DefaultPlatformFeeRate))
				require.Equal(t, expected, quote.TotalCost, "price=%v fee=%v nights=%d", price, fee, nights)
			}
		}
	}
}

func TestComputeQuote_NoNightsIsNeverBookable(t *testing.T) {
	engine := testEngine()
	p := testProperty()
	p.Availability.MinStay = 1

	for _, offset := range []int{0, -1, -5} {
		checkIn := date(2026, 4, 10)
		quote := engine.ComputeQuote(p, models.StayRequest{
			CheckIn:  checkIn,
			CheckOut: checkIn.AddDate(0, 0, offset),
			Guests:   1,
		})
		assert.Equal(t, 0, quote.Nights)
		assert.False(t, quote.IsBookable)
		assert.True(t, quote.HasViolation(models.ViolationNoNights))
		assert.Equal(t, 0.0, quote.BaseTotal)
	}
}

func TestComputeQuote_Monotonic(t *testing.T) {
	engine := testEngine()
	p := testProperty()
	p.Pricing.BasePrice = 87.5
	p.Pricing.CleaningFee = 33

	prev := -1.0
	for nights := 0; nights <= 60; nights++ {
		quote := engine.ComputeQuote(p, stay(date(2026, 4, 1), nights, 2))
		assert.GreaterOrEqual(t, quote.TotalCost, prev, "nights=%d", nights)
		prev = quote.TotalCost
	}
}

func TestComputeQuote_Idempotent(t *testing.T) {
	engine := testEngine()
	p := testProperty()
	req := stay(date(2026, 4, 1), 5, 3)

	first := engine.ComputeQuote(p, req)
	second := engine.ComputeQuote(p, req)
	assert.Equal(t, first, second)

	invalid := stay(date(2026, 4, 1), 1, 9)
	assert.Equal(t, engine.ComputeQuote(p, invalid), engine.ComputeQuote(p, invalid))
}

func TestComputeQuote_StayRules(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *models.Property)
		request    models.StayRequest
		bookable   bool
		violations []models.Violation
	}{
		{
			name:       "Too many guests",
			request:    stay(date(2026, 4, 1), 3, 5),
			violations: []models.Violation{models.ViolationTooManyGuests},
		},
		{
			name:     "Exactly at capacity",
			request:  stay(date(2026, 4, 1), 3, 4),
			bookable: true,
		},
		{
			name:       "Zero guests",
			request:    stay(date(2026, 4, 1), 3, 0),
			violations: []models.Violation{models.ViolationNoGuests},
		},
		{
			name:       "Below min stay",
			request:    stay(date(2026, 4, 1), 1, 2),
			violations: []models.Violation{models.ViolationBelowMinStay},
		},
		{
			name:     "At min stay",
			request:  stay(date(2026, 4, 1), 2, 2),
			bookable: true,
		},
		{
			name:     "At max stay",
			request:  stay(date(2026, 4, 1), 30, 2),
			bookable: true,
		},
		{
			name:       "Above max stay",
			request:    stay(date(2026, 4, 1), 31, 2),
			violations: []models.Violation{models.ViolationAboveMaxStay},
		},
		{
			name:       "Check-in yesterday",
			request:    stay(date(2026, 3, 9), 3, 2),
			violations: []models.Violation{models.ViolationCheckInPast},
		},
		{
			name:     "Check-in today",
			request:  stay(date(2026, 3, 10), 3, 2),
			bookable: true,
		},
		{
			name:    "Too many guests regardless of dates",
			request: stay(date(2026, 3, 1), 0, 5),
			violations: []models.Violation{
				models.ViolationNoNights,
				models.ViolationCheckInPast,
				models.ViolationTooManyGuests,
			},
		},
		{
			name: "Malformed property",
			mutate: func(p *models.Property) {
				p.Availability.MinStay = 10
				p.Availability.MaxStay = 5
			},
			request: stay(date(2026, 4, 1), 7, 2),
			violations: []models.Violation{
				models.ViolationInvalidProperty,
				models.ViolationBelowMinStay,
				models.ViolationAboveMaxStay,
			},
		},
		{
			name: "Non-positive base price",
			mutate: func(p *models.Property) {
				p.Pricing.BasePrice = 0
			},
			request:    stay(date(2026, 4, 1), 3, 2),
			violations: []models.Violation{models.ViolationInvalidProperty},
		},
	}

	engine := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProperty()
			if tt.mutate != nil {
				tt.mutate(&p)
			}

			quote := engine.ComputeQuote(p, tt.request)

			assert.Equal(t, tt.bookable, quote.IsBookable)
			if tt.bookable {
				assert.Empty(t, quote.Violations)
			} else {
				assert.Equal(t, tt.violations, quote.Violations)
			}
		})
	}
}

func TestComputeQuote_PastCheckInUsesLocalDay(t *testing.T) {
	// 23:30 UTC on March 9 is already March 10 in Amsterdam.
	loc := time.FixedZone("CET", 3600)
	engine := NewEngine(DefaultPlatformFeeRate, WithClock(func() time.Time {
		return time.Date(2026, time.March, 9, 23, 30, 0, 0, time.UTC)
	}))

	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)
	quote := engine.ComputeQuote(testProperty(), models.StayRequest{
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 2),
		Guests:   2,
	})
	assert.True(t, quote.IsBookable)

	earlier := checkIn.AddDate(0, 0, -1)
	quote = engine.ComputeQuote(testProperty(), models.StayRequest{
		CheckIn:  earlier,
		CheckOut: earlier.AddDate(0, 0, 2),
		Guests:   2,
	})
	assert.True(t, quote.HasViolation(models.ViolationCheckInPast))
}

func TestComputeQuote_CustomFeeRate(t *testing.T) {
	engine := NewEngine(0.1, WithClock(func() time.Time { return fixedNow }))
	quote := engine.ComputeQuote(testProperty(), stay(date(2026, 4, 1), 3, 2))

	assert.Equal(t, 0.1, engine.FeeRate())
	assert.Equal(t, 600.0, quote.ServiceFeeAmount)
	assert.Equal(t, 7100.0, quote.TotalCost)
}
