package database

import (
	"time"

	"staybook/server/internal/models"
)

// propertyRecord is the flattened row layout of a listing
type propertyRecord struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	HostName    string
	Type        string `gorm:"index"`
	Status      string `gorm:"index"`
	City        string `gorm:"index"`
	State       string
	Country     string
	Latitude    *float64
	Longitude   *float64
	BasePrice   float64 `gorm:"not null"`
	CleaningFee float64
	ServiceFee  float64
	Guests      int
	Bedrooms    int
	Beds        int
	Bathrooms   int
	MinStay     int
	MaxStay     int
	InstantBook bool
	Rating      float64
	ReviewCount int
	Amenities   []string `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (propertyRecord) TableName() string { return "properties" }

type bookingRecord struct {
	ID            string `gorm:"primaryKey"`
	PropertyID    string `gorm:"index"`
	PropertyTitle string
	GuestName     string
	Status        string `gorm:"index"`
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	TotalCost     float64
	CreatedAt     time.Time
}

func (bookingRecord) TableName() string { return "bookings" }

type reviewRecord struct {
	ID           string `gorm:"primaryKey"`
	PropertyID   string `gorm:"index"`
	AuthorName   string
	Rating       int
	Body         string `gorm:"type:text"`
	HelpfulCount int
	CreatedAt    time.Time
}

func (reviewRecord) TableName() string { return "reviews" }

func toPropertyRecord(p models.Property) propertyRecord {
	return propertyRecord{
		ID:          p.ID,
		Title:       p.Title,
		HostName:    p.HostName,
		Type:        p.Type.String(),
		Status:      p.Status.String(),
		City:        p.Location.City,
		State:       p.Location.State,
		Country:     p.Location.Country,
		Latitude:    p.Location.Latitude,
		Longitude:   p.Location.Longitude,
		BasePrice:   p.Pricing.BasePrice,
		CleaningFee: p.Pricing.CleaningFee,
		ServiceFee:  p.Pricing.ServiceFee,
		Guests:      p.Capacity.Guests,
		Bedrooms:    p.Capacity.Bedrooms,
		Beds:        p.Capacity.Beds,
		Bathrooms:   p.Capacity.Bathrooms,
		MinStay:     p.Availability.MinStay,
		MaxStay:     p.Availability.MaxStay,
		InstantBook: p.Availability.InstantBook,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Amenities:   p.Amenities,
		CreatedAt:   p.CreatedAt,
	}
}

func (r propertyRecord) toModel() models.Property {
	// unknown names stay at the zero variant
	propertyType, _ := models.ParsePropertyType(r.Type)
	status, _ := models.ParseListingStatus(r.Status)

	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return models.Property{
		ID:       r.ID,
		Title:    r.Title,
		HostName: r.HostName,
		Type:     propertyType,
		Status:   status,
		Location: models.Location{
			City:      r.City,
			State:     r.State,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		},
		Pricing: models.Pricing{
			BasePrice:   r.BasePrice,
			CleaningFee: r.CleaningFee,
			ServiceFee:  r.ServiceFee,
		},
		Capacity: models.Capacity{
			Guests:    r.Guests,
			Bedrooms:  r.Bedrooms,
			Beds:      r.Beds,
			Bathrooms: r.Bathrooms,
		},
		Availability: models.Availability{
			MinStay:     r.MinStay,
			MaxStay:     r.MaxStay,
			InstantBook: r.InstantBook,
		},
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Amenities:   amenities,
		CreatedAt:   r.CreatedAt,
	}
}

func toBookingRecord(b models.Booking) bookingRecord {
	return bookingRecord{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		PropertyTitle: b.PropertyTitle,
		GuestName:     b.GuestName,
		Status:        b.Status.String(),
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Guests:        b.Guests,
		TotalCost:     b.TotalCost,
		CreatedAt:     b.CreatedAt,
	}
}

func (r bookingRecord) toModel() models.Booking {
	status, _ := models.ParseBookingStatus(r.Status)
	return models.Booking{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		PropertyTitle: r.PropertyTitle,
		GuestName:     r.GuestName,
		Status:        status,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Guests:        r.Guests,
		TotalCost:     r.TotalCost,
		CreatedAt:     r.CreatedAt,
	}
}

func toReviewRecord(r models.Review) reviewRecord {
	return reviewRecord{
		ID:           r.ID,
		PropertyID:   r.PropertyID,
		AuthorName:   r.AuthorName,
		Rating:       r.Rating,
		Body:         r.Body,
		HelpfulCount: r.HelpfulCount,
		CreatedAt:    r.CreatedAt,
	}
}

func (r reviewRecord) toModel() models.Review {
	return models.Review{
		ID:           r.ID,
		PropertyID:   r.PropertyID,
		AuthorName:   r.AuthorName,
		Rating:       r.Rating,
		Body:         r.Body,
		HelpfulCount: r.HelpfulCount,
		CreatedAt:    r.CreatedAt,
	}
}
