package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/server/internal/models"
)

func TestNewListingQueue(t *testing.T) {
	q := NewListingQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())

	assert.Equal(t, 1, NewListingQueue(0, nil).maxSize)
}

func TestListingQueue_Push(t *testing.T) {
	q := NewListingQueue(2, logrus.New())

	batch := []models.Property{{ID: "a"}}
	require.NoError(t, q.Push(batch))
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Push(batch))
	assert.ErrorIs(t, q.Push(batch), ErrQueueFull)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Push(batch), ErrQueueClosed)
}

func TestListingQueue_Subscribe(t *testing.T) {
	q := NewListingQueue(10, logrus.New())
	defer q.Close()

	var processed []models.Property
	var mu sync.Mutex
	done := make(chan struct{})

	q.Subscribe(func(batch []models.Property) error {
		mu.Lock()
		processed = append(processed, batch...)
		mu.Unlock()
		close(done)
		return nil
	})
	q.Start()

	require.NoError(t, q.Push([]models.Property{{ID: "a"}, {ID: "b"}}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch was not processed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, processed, 2)
	assert.Equal(t, "a", processed[0].ID)
	assert.Equal(t, "b", processed[1].ID)
}

func TestListingQueue_AllHandlersRunEvenAfterFailure(t *testing.T) {
	q := NewListingQueue(10, logrus.New())
	defer q.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0

	for i := 0; i < 3; i++ {
		wg.Add(1)
		fail := i == 0
		q.Subscribe(func(batch []models.Property) error {
			defer wg.Done()
			mu.Lock()
			calls++
			mu.Unlock()
			if fail {
				return errors.New("handler failed")
			}
			return nil
		})
	}
	q.Start()

	require.NoError(t, q.Push([]models.Property{{ID: "a"}}))
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestListingQueue_Close(t *testing.T) {
	q := NewListingQueue(10, logrus.New())
	q.Start()

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// second close is a no-op
	assert.NoError(t, q.Close())
}
