package scheduler

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"staybook/server/internal/catalog"
	"staybook/server/internal/models"
)

// CatalogSource loads the full catalog from persistent storage
type CatalogSource interface {
	GetAllProperties() ([]models.Property, error)
	GetAllBookings() ([]models.Booking, error)
	GetAllReviews() ([]models.Review, error)
}

// Invalidator drops state derived from an older catalog
type Invalidator interface {
	Clear()
}

// CatalogRefresher periodically reloads the in-memory catalog from storage
type CatalogRefresher struct {
	source      CatalogSource
	store       *catalog.Store
	invalidator Invalidator
	interval    time.Duration
	logger      *logrus.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	refreshMu   sync.Mutex // serializes refreshes
}

func NewCatalogRefresher(source CatalogSource, store *catalog.Store, invalidator Invalidator, interval time.Duration, logger *logrus.Logger) *CatalogRefresher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &CatalogRefresher{
		source:      source,
		store:       store,
		invalidator: invalidator,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start runs a refresh on the ticker until Stop. A non-positive interval
// disables periodic refreshes; RefreshNow still works.
func (r *CatalogRefresher) Start() {
	if r.interval <= 0 {
		r.logger.Info("Periodic catalog refresh disabled")
		return
	}

	r.wg.Add(1)
	go r.run()
}

func (r *CatalogRefresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			if err := r.RefreshNow(); err != nil {
				r.logger.WithError(err).Error("Scheduled catalog refresh failed")
			}
		}
	}
}

// RefreshNow reloads the catalog immediately. On failure the current
// snapshot stays in place.
func (r *CatalogRefresher) RefreshNow() error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()

	properties, err := r.source.GetAllProperties()
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}
	bookings, err := r.source.GetAllBookings()
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	reviews, err := r.source.GetAllReviews()
	if err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}

	version := r.store.Replace(properties, bookings, reviews)
	if r.invalidator != nil {
		r.invalidator.Clear()
	}

	r.logger.WithFields(logrus.Fields{
		"version":    version,
		"properties": len(properties),
		"bookings":   len(bookings),
		"reviews":    len(reviews),
		"duration":   time.Since(start).String(),
	}).Info("Catalog refreshed")
	return nil
}

func (r *CatalogRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()
}
