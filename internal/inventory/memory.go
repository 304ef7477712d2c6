package inventory

import (
	"context"
	"fmt"
	"sync"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
)

// MemoryStore mirrors Store's semantics over an in-process map. It backs unit
// tests and local runs without Postgres; the mutex plays the role of the
// database's conditional update.
type MemoryStore struct {
	mu        sync.Mutex
	schedules map[string]*models.Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedules: make(map[string]*models.Schedule)}
}

func (m *MemoryStore) GetAvailability(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, ok := m.schedules[scheduleID]
	if !ok || !schedule.Active {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	copied := *schedule
	return &copied, nil
}

func (m *MemoryStore) Reserve(ctx context.Context, scheduleID string, count int) error {
	if count < 1 {
		return fmt.Errorf("reserve count must be >= 1: %w", apperr.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, ok := m.schedules[scheduleID]
	if !ok || !schedule.Active {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	if schedule.AvailableSeats < count {
		return fmt.Errorf("schedule %s has fewer than %d seats left: %w", scheduleID, count, apperr.ErrInsufficientSeats)
	}
	schedule.AvailableSeats -= count
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, scheduleID string, count int) error {
	if count < 1 {
		return fmt.Errorf("release count must be >= 1: %w", apperr.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	schedule.AvailableSeats += count
	if schedule.AvailableSeats > schedule.TotalSeats {
		schedule.AvailableSeats = schedule.TotalSeats
	}
	return nil
}

func (m *MemoryStore) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if schedule.TotalSeats < 1 {
		return fmt.Errorf("total seats must be >= 1: %w", apperr.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	schedule.AvailableSeats = schedule.TotalSeats
	schedule.Active = true
	copied := *schedule
	m.schedules[schedule.ScheduleID] = &copied
	return nil
}

func (m *MemoryStore) ListSchedulesByTrip(ctx context.Context, tripID string) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Schedule{}
	for _, schedule := range m.schedules {
		if schedule.TripID == tripID {
			out = append(out, *schedule)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeactivateSchedule(ctx context.Context, scheduleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	schedule.Active = false
	return nil
}
