package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/inventory"
)

func TestMemoryStoreNoOversellUnderConcurrency(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	schedule := newSchedule(5)
	require.NoError(t, store.CreateSchedule(ctx, schedule))

	const callers = 20
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Reserve(ctx, schedule.ScheduleID, 1)
		}()
	}
	wg.Wait()
	close(results)

	successes, rejections := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, apperr.ErrInsufficientSeats)
			rejections++
		}
	}

	assert.Equal(t, 5, successes)
	assert.Equal(t, callers-5, rejections)

	got, err := store.GetAvailability(ctx, schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
}

func TestMemoryStoreConcurrentPartyReservations(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	// Capacity 5, three concurrent parties of 2: exactly two succeed.
	schedule := newSchedule(5)
	require.NoError(t, store.CreateSchedule(ctx, schedule))

	var wg sync.WaitGroup
	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Reserve(ctx, schedule.ScheduleID, 2)
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperr.ErrInsufficientSeats)
		}
	}
	assert.Equal(t, 2, successes)

	got, err := store.GetAvailability(ctx, schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSeats)
}

func TestMemoryStoreReleaseCap(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	schedule := newSchedule(3)
	require.NoError(t, store.CreateSchedule(ctx, schedule))
	require.NoError(t, store.Release(ctx, schedule.ScheduleID, 5))

	got, err := store.GetAvailability(ctx, schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableSeats)
}
