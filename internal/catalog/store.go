// Package catalog holds the in-memory snapshot of listings, bookings and
// reviews that every read endpoint searches.
package catalog

import (
	"sync"

	"staybook/server/internal/models"
)

// Snapshot is an immutable view of the catalog at one version. Callers
// must treat the slices as read-only.
type Snapshot struct {
	Version    uint64
	Properties []models.Property
	Bookings   []models.Booking
	Reviews    []models.Review
}

type Store struct {
	mu      sync.RWMutex
	current Snapshot
	byID    map[string]int
}

func NewStore() *Store {
	return &Store{
		current: Snapshot{
			Properties: []models.Property{},
			Bookings:   []models.Booking{},
			Reviews:    []models.Review{},
		},
		byID: map[string]int{},
	}
}

// Replace swaps in a new catalog and returns its version. The slices are
// owned by the store afterwards.
func (s *Store) Replace(properties []models.Property, bookings []models.Booking, reviews []models.Review) uint64 {
	if properties == nil {
		properties = []models.Property{}
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	byID := make(map[string]int, len(properties))
	for i, p := range properties {
		byID[p.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{
		Version:    s.current.Version + 1,
		Properties: properties,
		Bookings:   bookings,
		Reviews:    reviews,
	}
	s.byID = byID
	return s.current.Version
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Property looks a listing up by id
func (s *Store) Property(id string) (models.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.Property{}, false
	}
	return s.current.Properties[i], true
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Version
}
