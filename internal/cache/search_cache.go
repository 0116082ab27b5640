// Package cache keeps recently served search pages in memory. Entries are
// keyed by surface, catalog version and filters, so a catalog refresh never
// serves stale pages even before the cache is cleared.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/sirupsen/logrus"

	"staybook/server/internal/models"
)

const DefaultTTL = 5 * time.Minute

// PageCache caches result pages of one search surface
type PageCache[T any] struct {
	surface string
	store   *ccache.Cache[models.Page[T]]
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewPageCache[T any](surface string, maxSize int64, ttl time.Duration, logger *logrus.Logger) *PageCache[T] {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &PageCache[T]{
		surface: surface,
		store:   ccache.New(ccache.Configure[models.Page[T]]().MaxSize(maxSize)),
		ttl:     ttl,
		logger:  logger,
	}
}

// Key derives the cache key for a filter set against a catalog version.
// ok is false when the filters cannot be encoded; such requests bypass
// the cache.
func (c *PageCache[T]) Key(version uint64, filters any) (key string, ok bool) {
	raw, err := json.Marshal(filters)
	if err != nil {
		c.logger.WithError(err).WithField("surface", c.surface).Warn("Failed to encode filters for cache key")
		return "", false
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%d:%s", c.surface, version, hex.EncodeToString(sum[:])), true
}

func (c *PageCache[T]) Get(key string) (models.Page[T], bool) {
	item := c.store.Get(key)
	if item == nil || item.Expired() {
		c.logger.WithField("key", key).Debug("Cache miss")
		return models.Page[T]{}, false
	}
	c.logger.WithField("key", key).Debug("Cache hit")
	return item.Value(), true
}

func (c *PageCache[T]) Set(key string, page models.Page[T]) {
	c.store.Set(key, page, c.ttl)
}

// Clear drops every entry, typically after the catalog was replaced
func (c *PageCache[T]) Clear() {
	c.store.Clear()
	c.logger.WithField("surface", c.surface).Debug("Cache cleared")
}

func (c *PageCache[T]) Stop() {
	c.store.Stop()
}

// SearchCache bundles the page caches of the listing, booking and review
// surfaces.
type SearchCache struct {
	Listings *PageCache[models.Property]
	Bookings *PageCache[models.Booking]
	Reviews  *PageCache[models.Review]
}

func NewSearchCache(maxSize int64, ttl time.Duration, logger *logrus.Logger) *SearchCache {
	return &SearchCache{
		Listings: NewPageCache[models.Property]("listings", maxSize, ttl, logger),
		Bookings: NewPageCache[models.Booking]("bookings", maxSize, ttl, logger),
		Reviews:  NewPageCache[models.Review]("reviews", maxSize, ttl, logger),
	}
}

func (s *SearchCache) Clear() {
	s.Listings.Clear()
	s.Bookings.Clear()
	s.Reviews.Clear()
}

func (s *SearchCache) Stop() {
	s.Listings.Stop()
	s.Bookings.Stop()
	s.Reviews.Stop()
}
