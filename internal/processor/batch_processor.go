package processor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"staybook/server/config"
	"staybook/server/internal/database"
	"staybook/server/internal/models"
	"staybook/server/internal/queue"
)

// ErrNoValidListings is returned for a batch in which every listing failed validation
var ErrNoValidListings = errors.New("no valid listings in batch")

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error
}

// Locator fills in coordinates of listings imported without them
type Locator interface {
	FillCoordinates(ctx context.Context, properties []models.Property) int
}

// BatchProcessor validates imported listing batches and stores them
type BatchProcessor struct {
	db       Transactor
	logger   *logrus.Logger
	config   *config.Config
	queue    *queue.ListingQueue
	locator  Locator
	onStored func(stored int)
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewBatchProcessor(db Transactor, queue *queue.ListingQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnStored registers a callback run after every committed batch, typically
// a catalog refresh.
func (p *BatchProcessor) OnStored(fn func(stored int)) {
	p.onStored = fn
}

// SetLocator enables geocoding of unlocated listings before they are stored
func (p *BatchProcessor) SetLocator(locator Locator) {
	p.locator = locator
}

// Start subscribes the processor to its queue
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.handleBatch)
}

// Stop aborts pending retries. Batches arriving afterwards are rejected.
func (p *BatchProcessor) Stop() {
	p.cancel()
}

func (p *BatchProcessor) handleBatch(batch []models.Property) error {
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("processor stopped: %w", err)
	}

	valid := p.prepareBatch(batch)
	if len(valid) == 0 {
		return ErrNoValidListings
	}

	if p.locator != nil {
		if located := p.locator.FillCoordinates(p.ctx, valid); located > 0 {
			p.logger.WithField("located", located).Info("Geocoded listings without coordinates")
		}
	}

	if err := p.processBatch(valid); err != nil {
		return err
	}

	if p.onStored != nil {
		p.onStored(len(valid))
	}
	return nil
}

// prepareBatch fills in missing ids and creation times and drops listings
// that fail validation. The input batch is left untouched.
func (p *BatchProcessor) prepareBatch(batch []models.Property) []models.Property {
	valid := make([]models.Property, 0, len(batch))
	for i, prop := range batch {
		if prop.ID == "" {
			prop.ID = uuid.NewString()
		}
		if prop.CreatedAt.IsZero() {
			prop.CreatedAt = p.now().UTC()
		}
		if prop.Status == models.ListingStatusUnknown {
			prop.Status = models.ListingStatusDraft
		}

		if err := models.ValidateProperty(&prop); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"index":       i,
				"property_id": prop.ID,
			}).Warn("Skipping invalid listing")
			continue
		}
		valid = append(valid, prop)
	}

	if skipped := len(batch) - len(valid); skipped > 0 {
		p.logger.WithFields(logrus.Fields{
			"received": len(batch),
			"skipped":  skipped,
		}).Info("Dropped invalid listings from batch")
	}
	return valid
}

// processBatch upserts one batch in a transaction, retrying failed attempts
func (p *BatchProcessor) processBatch(batch []models.Property) error {
	maxRetries := p.config.BatchProcessing.MaxRetries

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.WithFields(logrus.Fields{
				"attempt":     attempt,
				"max_retries": maxRetries,
			}).Info("Retrying batch processing")

			select {
			case <-p.ctx.Done():
				return fmt.Errorf("batch processing cancelled: %w", p.ctx.Err())
			case <-time.After(p.config.BatchProcessing.RetryDelay):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertProperties(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert listing batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Info("Successfully processed listing batch")
			return nil
		}

		p.logger.WithError(err).WithField("attempt", attempt).Error("Batch processing failed")
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}
