package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"staybook/server/internal/models"
)

const insertBatchSize = 100

type Database struct {
	db *gorm.DB
}

// NewDatabase opens (creating if needed) the sqlite catalog at dbPath and
// migrates its schema.
func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := MigrateSchema(db); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// NewTestDB opens a private in-memory database. Each call gets its own
// schema-less database.
func NewTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// shared-cache memory databases lock whole tables across connections
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Wrap adapts an already opened connection, mostly for tests
func Wrap(db *gorm.DB) *Database {
	return &Database{db: db}
}

func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&propertyRecord{}, &bookingRecord{}, &reviewRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_coordinates ON properties(latitude, longitude)`).Error; err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}
	return nil
}

// UpsertProperties inserts listings, replacing every column but created_at
// of listings that already exist.
func UpsertProperties(tx *gorm.DB, properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	records := make([]propertyRecord, len(properties))
	for i, p := range properties {
		records[i] = toPropertyRecord(p)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "host_name", "type", "status", "city", "state", "country",
			"latitude", "longitude", "base_price", "cleaning_fee", "service_fee",
			"guests", "bedrooms", "beds", "bathrooms", "min_stay", "max_stay",
			"instant_book", "rating", "review_count", "amenities", "updated_at",
		}),
	}).CreateInBatches(records, insertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert properties: %w", err)
	}
	return nil
}

func (d *Database) DB() *gorm.DB {
	return d.db
}

// GetAllProperties returns the catalog in insertion order
func (d *Database) GetAllProperties() ([]models.Property, error) {
	var records []propertyRecord
	if err := d.db.Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}

	properties := make([]models.Property, len(records))
	for i, r := range records {
		properties[i] = r.toModel()
	}
	return properties, nil
}

func (d *Database) GetAllBookings() ([]models.Booking, error) {
	var records []bookingRecord
	if err := d.db.Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	bookings := make([]models.Booking, len(records))
	for i, r := range records {
		bookings[i] = r.toModel()
	}
	return bookings, nil
}

func (d *Database) GetAllReviews() ([]models.Review, error) {
	var records []reviewRecord
	if err := d.db.Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	reviews := make([]models.Review, len(records))
	for i, r := range records {
		reviews[i] = r.toModel()
	}
	return reviews, nil
}

// InsertBookings stores booking rows, assigning ids to rows without one
func (d *Database) InsertBookings(bookings []models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	records := make([]bookingRecord, len(bookings))
	for i, b := range bookings {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		records[i] = toBookingRecord(b)
	}

	if err := d.db.CreateInBatches(records, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert bookings: %w", err)
	}
	return nil
}

// InsertReviews stores review rows, assigning ids to rows without one
func (d *Database) InsertReviews(reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	records := make([]reviewRecord, len(reviews))
	for i, r := range reviews {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		records[i] = toReviewRecord(r)
	}

	if err := d.db.CreateInBatches(records, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert reviews: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
