package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"staybook/server/internal/models"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

var (
	ErrNoResults     = errors.New("no geocoding results")
	ErrEmptyLocation = errors.New("location has no place names")
)

// Geocoder resolves listing locations to coordinates with a Nominatim
// compatible search API. Listings carry no street address, so results are
// place level (usually the city center).
type Geocoder struct {
	logger      *logrus.Logger
	baseURL     string
	client      *http.Client
	cacheFile   string
	cache       map[string][]float64
	cacheLock   sync.RWMutex
	minInterval time.Duration
	requestLock sync.Mutex
	lastRequest time.Time
}

type Option func(*Geocoder)

// WithMinInterval sets the pause between two upstream requests.
// Nominatim's public instance allows one per second.
func WithMinInterval(d time.Duration) Option {
	return func(g *Geocoder) {
		g.minInterval = d
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(g *Geocoder) {
		g.client = client
	}
}

// NewGeocoder creates a geocoder. An empty cacheDir keeps the cache in
// memory only.
func NewGeocoder(baseURL, cacheDir string, logger *logrus.Logger, opts ...Option) *Geocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	g := &Geocoder{
		logger:      logger,
		baseURL:     strings.TrimRight(baseURL, "/"),
		cache:       make(map[string][]float64),
		client:      &http.Client{Timeout: 10 * time.Second},
		minInterval: time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logger.WithError(err).Warn("Could not create geocode cache directory, caching in memory only")
		} else {
			g.cacheFile = filepath.Join(cacheDir, "geocode_cache.json")
			g.loadCache()
		}
	}

	return g
}

func (g *Geocoder) loadCache() {
	data, err := os.ReadFile(g.cacheFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			g.logger.WithError(err).Warn("Could not load geocode cache")
		}
		return
	}

	g.cacheLock.Lock()
	defer g.cacheLock.Unlock()
	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.WithError(err).Error("Failed to parse geocode cache")
		g.cache = make(map[string][]float64)
		return
	}

	g.logger.WithField("entries", len(g.cache)).Info("Loaded geocode cache")
}

func (g *Geocoder) saveCache() {
	if g.cacheFile == "" {
		return
	}

	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal geocode cache")
		return
	}

	if err := os.WriteFile(g.cacheFile, data, 0o644); err != nil {
		g.logger.WithError(err).Error("Failed to save geocode cache")
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns latitude and longitude for the location's place names
func (g *Geocoder) Geocode(ctx context.Context, loc models.Location) (float64, float64, error) {
	query := placeQuery(loc)
	if query == "" {
		return 0, 0, ErrEmptyLocation
	}
	cacheKey := strings.ToLower(query)

	g.cacheLock.RLock()
	coords, ok := g.cache[cacheKey]
	g.cacheLock.RUnlock()
	if ok && len(coords) == 2 {
		g.logger.WithField("query", query).Debug("Found coordinates in cache")
		return coords[0], coords[1], nil
	}

	lat, lon, err := g.lookup(ctx, query)
	if err != nil {
		return 0, 0, err
	}

	g.cacheLock.Lock()
	g.cache[cacheKey] = []float64{lat, lon}
	g.cacheLock.Unlock()
	g.saveCache()

	return lat, lon, nil
}

func (g *Geocoder) lookup(ctx context.Context, query string) (float64, float64, error) {
	if err := g.throttle(ctx); err != nil {
		return 0, 0, err
	}

	params := url.Values{
		"q":      []string{query},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Staybook Listing Importer/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoResults, query)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse longitude: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"query":     query,
		"latitude":  lat,
		"longitude": lon,
	}).Info("Geocoded location")
	return lat, lon, nil
}

// throttle spaces upstream requests at least minInterval apart
func (g *Geocoder) throttle(ctx context.Context) error {
	g.requestLock.Lock()
	defer g.requestLock.Unlock()

	if wait := g.minInterval - time.Since(g.lastRequest); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	g.lastRequest = time.Now()
	return nil
}

// FillCoordinates geocodes the listings that have no coordinates, in
// place. Failures are logged and leave the listing unlocated. It returns
// the number of listings located.
func (g *Geocoder) FillCoordinates(ctx context.Context, properties []models.Property) int {
	located := 0
	for i := range properties {
		loc := &properties[i].Location
		if loc.HasCoordinates() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		lat, lon, err := g.Geocode(ctx, *loc)
		if err != nil {
			g.logger.WithError(err).WithField("property_id", properties[i].ID).Warn("Failed to geocode listing")
			continue
		}
		loc.Latitude = &lat
		loc.Longitude = &lon
		located++
	}
	return located
}

func placeQuery(loc models.Location) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{loc.City, loc.State, loc.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
