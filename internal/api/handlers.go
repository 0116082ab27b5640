package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staybook/server/config"
	"staybook/server/internal/cache"
	"staybook/server/internal/catalog"
	"staybook/server/internal/geometry"
	"staybook/server/internal/models"
	"staybook/server/internal/pricing"
	"staybook/server/internal/queue"
	"staybook/server/internal/search"
)

const dateLayout = "2006-01-02"

// ActivityStore persists guest bookings and reviews
type ActivityStore interface {
	InsertBookings(bookings []models.Booking) error
	InsertReviews(reviews []models.Review) error
}

// CatalogReloader rebuilds the catalog snapshot from storage
type CatalogReloader interface {
	RefreshNow() error
}

type Handler struct {
	config   *config.Config
	store    *catalog.Store
	engine   *pricing.Engine
	matcher  *search.Matcher
	cache    *cache.SearchCache
	imports  *queue.ListingQueue
	activity ActivityStore
	reloader CatalogReloader
	now      func() time.Time
	logger   *logrus.Logger
}

type Destination struct {
	config.City
	ListingCount int `json:"listing_count"`
}

func NewHandler(
	cfg *config.Config,
	store *catalog.Store,
	engine *pricing.Engine,
	matcher *search.Matcher,
	searchCache *cache.SearchCache,
	imports *queue.ListingQueue,
	activity ActivityStore,
	reloader CatalogReloader,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		config:   cfg,
		store:    store,
		engine:   engine,
		matcher:  matcher,
		cache:    searchCache,
		imports:  imports,
		activity: activity,
		reloader: reloader,
		now:      time.Now,
		logger:   logger,
	}
}

func (h *Handler) SearchProperties(c *gin.Context) {
	filters, ok := h.bindListingFilters(c)
	if !ok {
		return
	}

	snap := h.store.Snapshot()
	key, cacheable := h.cache.Listings.Key(snap.Version, filters)
	if cacheable {
		if page, hit := h.cache.Listings.Get(key); hit {
			c.JSON(http.StatusOK, page)
			return
		}
	}

	page := h.matcher.Listings(snap.Properties, filters)
	if cacheable {
		h.cache.Listings.Set(key, page)
	}
	c.JSON(http.StatusOK, page)
}

// GetPropertiesMap returns every match of the search as GeoJSON.
// Paging parameters are ignored.
func (h *Handler) GetPropertiesMap(c *gin.Context) {
	filters, ok := h.bindListingFilters(c)
	if !ok {
		return
	}

	matched := h.matcher.MatchListings(h.store.Snapshot().Properties, filters)
	c.JSON(http.StatusOK, geometry.FeatureCollection(matched))
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, ok := h.lookupProperty(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, property)
}

// QuoteProperty prices a stay. Whether check-in is in the past is judged
// against today in the request's time zone.
func (h *Handler) QuoteProperty(c *gin.Context) {
	property, ok := h.lookupProperty(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse quote request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	stay, err := req.Stay()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote := h.engine.ComputeQuote(property, stay)

	h.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"nights":      quote.Nights,
		"bookable":    quote.IsBookable,
	}).Debug("Computed quote")

	c.JSON(http.StatusOK, quote)
}

func (h *Handler) GetPropertyReviews(c *gin.Context) {
	property, ok := h.lookupProperty(c)
	if !ok {
		return
	}

	var query ReviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Warn("Failed to parse review query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	filters, err := query.ToFilters(property.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.store.Snapshot()
	key, cacheable := h.cache.Reviews.Key(snap.Version, filters)
	if cacheable {
		if page, hit := h.cache.Reviews.Get(key); hit {
			c.JSON(http.StatusOK, page)
			return
		}
	}

	page := h.matcher.Reviews(snap.Reviews, filters)
	if cacheable {
		h.cache.Reviews.Set(key, page)
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) SearchBookings(c *gin.Context) {
	var query BookingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Warn("Failed to parse booking query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	filters, err := query.ToFilters()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.store.Snapshot()
	key, cacheable := h.cache.Bookings.Key(snap.Version, filters)
	if cacheable {
		if page, hit := h.cache.Bookings.Get(key); hit {
			c.JSON(http.StatusOK, page)
			return
		}
	}

	page := h.matcher.Bookings(snap.Bookings, filters)
	if cacheable {
		h.cache.Bookings.Set(key, page)
	}
	c.JSON(http.StatusOK, page)
}

// ImportListings queues a batch of listings for validation and storage
func (h *Handler) ImportListings(c *gin.Context) {
	listings, ok := bindBatch[models.Property](h, c, "listings")
	if !ok {
		return
	}

	if err := h.imports.Push(listings); err != nil {
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			h.logger.WithError(err).Warn("Import queue unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue is busy, retry later"})
			return
		}
		h.logger.WithError(err).Error("Failed to queue import batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue listings"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
		"count":  len(listings),
	})
}

// ImportBookings validates and stores a batch of bookings, then reloads the
// catalog so they are searchable right away. A batch is stored whole or not
// at all.
func (h *Handler) ImportBookings(c *gin.Context) {
	bookings, ok := bindBatch[models.Booking](h, c, "bookings")
	if !ok {
		return
	}

	snap := h.store.Snapshot()
	known := make(map[string]struct{}, len(snap.Bookings))
	for _, b := range snap.Bookings {
		known[b.ID] = struct{}{}
	}

	for i := range bookings {
		b := &bookings[i]
		property, found := h.store.Property(b.PropertyID)
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown property %q", b.PropertyID), "index": i})
			return
		}
		if b.PropertyTitle == "" {
			b.PropertyTitle = property.Title
		}
		if b.Status == models.BookingStatusUnknown {
			b.Status = models.BookingStatusPending
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = h.now().UTC()
		}
		if err := models.ValidateBooking(b); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "index": i})
			return
		}
		if b.ID != "" {
			if _, dup := known[b.ID]; dup {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("booking %q already exists", b.ID), "index": i})
				return
			}
			known[b.ID] = struct{}{}
		}
	}

	if err := h.activity.InsertBookings(bookings); err != nil {
		h.logger.WithError(err).WithField("count", len(bookings)).Error("Failed to store bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store bookings"})
		return
	}
	h.reload("bookings", len(bookings))

	c.JSON(http.StatusCreated, gin.H{
		"status": "stored",
		"count":  len(bookings),
	})
}

// CreatePropertyReviews stores a batch of reviews for one listing
func (h *Handler) CreatePropertyReviews(c *gin.Context) {
	property, ok := h.lookupProperty(c)
	if !ok {
		return
	}
	reviews, ok := bindBatch[models.Review](h, c, "reviews")
	if !ok {
		return
	}

	snap := h.store.Snapshot()
	known := make(map[string]struct{}, len(snap.Reviews))
	for _, r := range snap.Reviews {
		known[r.ID] = struct{}{}
	}

	for i := range reviews {
		r := &reviews[i]
		if r.PropertyID == "" {
			r.PropertyID = property.ID
		}
		if r.PropertyID != property.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "review belongs to another property", "index": i})
			return
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = h.now().UTC()
		}
		if err := models.ValidateReview(r); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "index": i})
			return
		}
		if r.ID != "" {
			if _, dup := known[r.ID]; dup {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("review %q already exists", r.ID), "index": i})
				return
			}
			known[r.ID] = struct{}{}
		}
	}

	if err := h.activity.InsertReviews(reviews); err != nil {
		h.logger.WithError(err).WithField("property_id", property.ID).Error("Failed to store reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reviews"})
		return
	}
	h.reload("reviews", len(reviews))

	c.JSON(http.StatusCreated, gin.H{
		"status": "stored",
		"count":  len(reviews),
	})
}

// reload refreshes the snapshot after a write. The rows are already stored,
// so a failure only delays their visibility until the next scheduled refresh.
func (h *Handler) reload(kind string, stored int) {
	if err := h.reloader.RefreshNow(); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"kind":   kind,
			"stored": stored,
		}).Error("Failed to refresh catalog after write")
	}
}

// bindBatch decodes a JSON array body and enforces the batch size limit
func bindBatch[T any](h *Handler, c *gin.Context, noun string) ([]T, bool) {
	var items []T
	if err := c.ShouldBindJSON(&items); err != nil {
		h.logger.WithError(err).WithField("kind", noun).Warn("Failed to parse import batch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No " + noun + " in request"})
		return nil, false
	}
	if maxSize := h.config.BatchProcessing.MaxBatchSize; maxSize > 0 && len(items) > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many " + noun + " in one request"})
		return nil, false
	}
	return items, true
}

func (h *Handler) GetDestinations(c *gin.Context) {
	properties := h.store.Snapshot().Properties
	radiusKm := h.config.Search.DestinationRadiusKm

	destinations := make([]Destination, 0, len(config.SupportedCities))
	for _, city := range config.SupportedCities {
		radius := geometry.NewRadius(models.GeoRadius{
			Latitude:  city.Center[0],
			Longitude: city.Center[1],
			RadiusKm:  radiusKm,
		})

		count := 0
		for i := range properties {
			if radius.Contains(properties[i].Location) {
				count++
			}
		}
		destinations = append(destinations, Destination{City: city, ListingCount: count})
	}

	c.JSON(http.StatusOK, destinations)
}

func (h *Handler) bindListingFilters(c *gin.Context) (models.SearchFilters, bool) {
	var query ListingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Warn("Failed to parse listing query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return models.SearchFilters{}, false
	}

	filters, err := query.ToFilters(h.config.Search.DestinationRadiusKm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.SearchFilters{}, false
	}
	return filters, true
}

func (h *Handler) lookupProperty(c *gin.Context) (models.Property, bool) {
	id := c.Param("id")
	property, ok := h.store.Property(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return models.Property{}, false
	}
	return property, true
}
