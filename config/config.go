package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		// Address the HTTP server listens on
		Addr string `env:"SERVER_ADDR" envDefault:":5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"SERVER_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

		// Log level (debug, info, warn, error)
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Database struct {
		// Path of the sqlite file holding the listing catalog
		Path string `env:"DATABASE_PATH" envDefault:"database/staybook.db"`
	}

	Pricing struct {
		// Share of the base total charged as platform service fee
		PlatformFeeRate float64 `env:"PLATFORM_FEE_RATE" envDefault:"0.03"`
	}

	Search struct {
		// Page size used when a request does not ask for one
		DefaultPageSize int `env:"SEARCH_PAGE_SIZE" envDefault:"10"`

		// Upper bound for client-requested page sizes
		MaxPageSize int `env:"SEARCH_MAX_PAGE_SIZE" envDefault:"50"`

		// Number of goroutines used to filter large catalogs
		FilterWorkers int `env:"SEARCH_FILTER_WORKERS" envDefault:"4"`

		// Catalog size at which filtering is split across workers
		ParallelThreshold int `env:"SEARCH_PARALLEL_THRESHOLD" envDefault:"5000"`

		// Default radius for destination shortcuts (in kilometres)
		DestinationRadiusKm float64 `env:"SEARCH_DESTINATION_RADIUS_KM" envDefault:"25"`
	}

	Cache struct {
		// Maximum number of cached search pages
		MaxSize int64 `env:"CACHE_MAX_SIZE" envDefault:"1000"`

		// How long a cached page stays valid
		TTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of listing batches waiting in the import queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Maximum number of listings accepted in one import request
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"500"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries
		RetryDelay time.Duration `env:"BATCH_RETRY_DELAY" envDefault:"5s"`
	}

	Geocoding struct {
		// Look up coordinates of imported listings that have none
		Enabled bool `env:"GEOCODING_ENABLED" envDefault:"false"`

		// Nominatim compatible search API
		BaseURL string `env:"GEOCODING_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`

		// Directory of the on-disk lookup cache, empty for memory only
		CacheDir string `env:"GEOCODING_CACHE_DIR" envDefault:"database/geocode_cache"`

		// Minimum pause between two upstream requests
		MinInterval time.Duration `env:"GEOCODING_MIN_INTERVAL" envDefault:"1s"`
	}

	Catalog struct {
		// How often the in-memory catalog is reloaded from the database
		RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"10m"`
	}
}

// LoadConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pricing.PlatformFeeRate < 0 || c.Pricing.PlatformFeeRate >= 1 {
		return fmt.Errorf("PLATFORM_FEE_RATE must be in [0, 1), got %v", c.Pricing.PlatformFeeRate)
	}
	if c.Search.DefaultPageSize < 1 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.Search.DefaultPageSize)
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("SEARCH_MAX_PAGE_SIZE (%d) must not be below SEARCH_PAGE_SIZE (%d)",
			c.Search.MaxPageSize, c.Search.DefaultPageSize)
	}
	if c.BatchProcessing.QueueSize < 1 {
		return fmt.Errorf("BATCH_QUEUE_SIZE must be positive, got %d", c.BatchProcessing.QueueSize)
	}
	return nil
}
