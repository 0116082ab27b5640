package search

import (
	"strings"

	"staybook/server/internal/models"
)

// Bookings filters the booking dashboard by text, status and listing
func (m *Matcher) Bookings(bookings []models.Booking, f models.BookingFilters) models.Page[models.Booking] {
	q := strings.ToLower(strings.TrimSpace(f.TextQuery))

	matched := filterItems(m, bookings, func(b *models.Booking) bool {
		if q != "" && !containsFold(q, b.PropertyTitle, b.GuestName) {
			return false
		}
		if f.Status != nil && b.Status != *f.Status {
			return false
		}
		if f.PropertyID != "" && b.PropertyID != f.PropertyID {
			return false
		}
		return true
	})
	sortItems(matched, bookingLess(f.SortBy), f.Descending)

	return paginate(matched, f.Page, m.PageSize(f.PageSize))
}

func bookingLess(key models.BookingSort) func(a, b *models.Booking) bool {
	switch key {
	case models.BookingSortRecent:
		return func(a, b *models.Booking) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.BookingSortCheckIn:
		return func(a, b *models.Booking) bool { return a.CheckIn.Before(b.CheckIn) }
	default:
		return nil
	}
}
