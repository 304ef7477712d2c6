package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
)

// Store is the sole authority over schedule seat counters. Every seat
// mutation goes through Reserve/Release as a single conditional UPDATE, so
// concurrent bookings against the same schedule can never oversell.
type Store struct {
	Bun *bun.DB
}

func NewStore(bunDB *bun.DB) *Store {
	return &Store{Bun: bunDB}
}

// GetAvailability fetches the seat counters for an active schedule.
func (s *Store) GetAvailability(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.Bun.NewSelect().
		Model(&schedule).
		Where("schedule_id = ?", scheduleID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get availability for schedule %s: %w", scheduleID, err)
	}
	if !schedule.Active {
		return nil, fmt.Errorf("schedule %s is retired: %w", scheduleID, apperr.ErrNotFound)
	}
	return &schedule, nil
}

// Reserve decrements available seats by count, checking capacity in the same
// statement. The WHERE clause is the serialization point: two racing calls
// both pass only if both fit.
func (s *Store) Reserve(ctx context.Context, scheduleID string, count int) error {
	if count < 1 {
		return fmt.Errorf("reserve count must be >= 1: %w", apperr.ErrInvalidInput)
	}

	res, err := s.Bun.NewUpdate().
		Model((*models.Schedule)(nil)).
		Set("available_seats = available_seats - ?", count).
		Where("schedule_id = ?", scheduleID).
		Where("active = ?", true).
		Where("available_seats >= ?", count).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reserve %d seats on schedule %s: %w", count, scheduleID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve %d seats on schedule %s: %w", count, scheduleID, err)
	}
	if rows == 0 {
		// Either the schedule is missing/retired or the seats ran out.
		if _, err := s.GetAvailability(ctx, scheduleID); err != nil {
			return err
		}
		return fmt.Errorf("schedule %s has fewer than %d seats left: %w", scheduleID, count, apperr.ErrInsufficientSeats)
	}
	return nil
}

// Release returns seats to a schedule, capped at capacity. The cap is part
// of the same UPDATE, so a reservation landing alongside an over-release can
// never be overwritten. Releasing against a retired schedule is still
// honored so cancellations of old bookings keep the counters honest.
func (s *Store) Release(ctx context.Context, scheduleID string, count int) error {
	if count < 1 {
		return fmt.Errorf("release count must be >= 1: %w", apperr.ErrInvalidInput)
	}

	res, err := s.Bun.NewUpdate().
		Model((*models.Schedule)(nil)).
		Set("available_seats = CASE WHEN available_seats + ? > total_seats THEN total_seats ELSE available_seats + ? END", count, count).
		Where("schedule_id = ?", scheduleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("release %d seats on schedule %s: %w", count, scheduleID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release %d seats on schedule %s: %w", count, scheduleID, err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	return nil
}

// CreateSchedule seeds a new schedule with available == capacity.
func (s *Store) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if schedule.TotalSeats < 1 {
		return fmt.Errorf("total seats must be >= 1: %w", apperr.ErrInvalidInput)
	}
	schedule.AvailableSeats = schedule.TotalSeats
	schedule.Active = true
	_, err := s.Bun.NewInsert().Model(schedule).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// DeactivateSchedule retires a schedule so no new reservations land on it.
func (s *Store) DeactivateSchedule(ctx context.Context, scheduleID string) error {
	res, err := s.Bun.NewUpdate().
		Model((*models.Schedule)(nil)).
		Set("active = ?", false).
		Where("schedule_id = ?", scheduleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate schedule %s: %w", scheduleID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperr.ErrNotFound)
	}
	return nil
}

// ListSchedulesByTrip returns the active schedules for a trip.
func (s *Store) ListSchedulesByTrip(ctx context.Context, tripID string) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.Bun.NewSelect().
		Model(&schedules).
		Where("trip_id = ?", tripID).
		Where("active = ?", true).
		Order("start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules for trip %s: %w", tripID, err)
	}
	return schedules, nil
}
