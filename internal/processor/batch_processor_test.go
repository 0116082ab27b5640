package processor

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"staybook/server/config"
	"staybook/server/internal/models"
	"staybook/server/internal/queue"
)

// MockDB is a mock implementation of Transactor
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = time.Millisecond
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func validListing(id string) models.Property {
	return models.Property{
		ID:           id,
		Title:        "Listing " + id,
		Status:       models.ListingStatusActive,
		Pricing:      models.Pricing{BasePrice: 100},
		Capacity:     models.Capacity{Guests: 2},
		Availability: models.Availability{MinStay: 1, MaxStay: 14},
	}
}

func TestNewBatchProcessor(t *testing.T) {
	mockDB := &MockDB{}
	listingQueue := queue.NewListingQueue(10, quietLogger())
	cfg := testConfig()
	logger := quietLogger()

	processor := NewBatchProcessor(mockDB, listingQueue, cfg, logger)

	assert.NotNil(t, processor)
	assert.Equal(t, mockDB, processor.db)
	assert.Equal(t, listingQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	batch := []models.Property{validListing("a"), validListing("b")}

	tests := []struct {
		name          string
		setupMock     func(m *MockDB)
		expectedError string
	}{
		{
			name: "Success on first attempt",
			setupMock: func(m *MockDB) {
				m.On("Transaction", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "Success after retries",
			setupMock: func(m *MockDB) {
				m.On("Transaction", mock.Anything).Return(errors.New("database is locked")).Twice()
				m.On("Transaction", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "Gives up after max retries",
			setupMock: func(m *MockDB) {
				m.On("Transaction", mock.Anything).Return(errors.New("db error")).Times(4)
			},
			expectedError: "failed to process batch after 4 attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := &MockDB{}
			tt.setupMock(mockDB)
			processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())

			err := processor.processBatch(batch)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockDB.AssertExpectations(t)
		})
	}
}

func TestBatchProcessor_StopCancelsRetries(t *testing.T) {
	mockDB := &MockDB{}
	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error"))

	cfg := testConfig()
	cfg.BatchProcessing.RetryDelay = time.Hour
	processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), cfg, quietLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- processor.processBatch([]models.Property{validListing("a")}) }()

	time.Sleep(20 * time.Millisecond)
	processor.Stop()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cancelled")
	case <-time.After(time.Second):
		t.Fatal("processBatch did not return after Stop")
	}
	mockDB.AssertNumberOfCalls(t, "Transaction", 1)
}

func TestBatchProcessor_PrepareBatch(t *testing.T) {
	fixedNow := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	processor := NewBatchProcessor(&MockDB{}, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())
	processor.now = func() time.Time { return fixedNow }

	noID := validListing("")
	noStatus := validListing("s")
	noStatus.Status = models.ListingStatusUnknown
	badStay := validListing("bad")
	badStay.Availability = models.Availability{MinStay: 10, MaxStay: 5}
	freePrice := validListing("free")
	freePrice.Pricing.BasePrice = 0

	input := []models.Property{validListing("a"), noID, badStay, noStatus, freePrice}
	valid := processor.prepareBatch(input)

	require.Len(t, valid, 3)
	assert.Equal(t, "a", valid[0].ID)
	assert.NotEmpty(t, valid[1].ID)
	assert.Equal(t, fixedNow, valid[1].CreatedAt)
	assert.Equal(t, models.ListingStatusDraft, valid[2].Status)

	// input untouched
	assert.Empty(t, input[1].ID)
	assert.True(t, input[0].CreatedAt.IsZero())
}

func TestBatchProcessor_HandleBatch(t *testing.T) {
	t.Run("Calls OnStored after commit", func(t *testing.T) {
		mockDB := &MockDB{}
		mockDB.On("Transaction", mock.Anything).Return(nil).Once()
		processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())

		stored := 0
		processor.OnStored(func(n int) { stored = n })

		bad := validListing("bad")
		bad.Title = ""
		require.NoError(t, processor.handleBatch([]models.Property{validListing("a"), bad}))
		assert.Equal(t, 1, stored)
	})

	t.Run("Rejects batch without valid listings", func(t *testing.T) {
		mockDB := &MockDB{}
		processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())

		bad := validListing("bad")
		bad.Capacity.Guests = 0
		assert.ErrorIs(t, processor.handleBatch([]models.Property{bad}), ErrNoValidListings)
		mockDB.AssertNotCalled(t, "Transaction", mock.Anything)
	})

	t.Run("Rejects batches after Stop", func(t *testing.T) {
		mockDB := &MockDB{}
		processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())
		processor.Stop()

		assert.Error(t, processor.handleBatch([]models.Property{validListing("a")}))
		mockDB.AssertNotCalled(t, "Transaction", mock.Anything)
	})
}

type fakeLocator struct {
	seen []string
}

func (f *fakeLocator) FillCoordinates(ctx context.Context, properties []models.Property) int {
	located := 0
	for i := range properties {
		f.seen = append(f.seen, properties[i].ID)
		if properties[i].Location.HasCoordinates() {
			continue
		}
		lat, lon := 38.72, -9.14
		properties[i].Location.Latitude = &lat
		properties[i].Location.Longitude = &lon
		located++
	}
	return located
}

func TestBatchProcessor_HandleBatchLocatesListings(t *testing.T) {
	mockDB := &MockDB{}
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	processor := NewBatchProcessor(mockDB, queue.NewListingQueue(10, quietLogger()), testConfig(), quietLogger())

	locator := &fakeLocator{}
	processor.SetLocator(locator)

	bad := validListing("bad")
	bad.Title = ""
	batch := []models.Property{validListing("a"), bad, validListing("b")}

	require.NoError(t, processor.handleBatch(batch))

	// only listings that passed validation are geocoded
	assert.Equal(t, []string{"a", "b"}, locator.seen)
	// the caller's batch is not modified
	assert.False(t, batch[0].Location.HasCoordinates())
	mockDB.AssertExpectations(t)
}
