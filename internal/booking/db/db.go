package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
)

// DB is the booking ledger. Bookings are append-style: rows are inserted once
// and only their status columns change afterwards.
type DB struct {
	Bun *bun.DB
}

// CreateBooking → insert new booking
func (d *DB) CreateBooking(ctx context.Context, booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(ctx)
	return err
}

// GetBookingByID → fetch one booking by its ID
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByPaymentIntent → resolve a stripe payment intent back to its booking
func (d *DB) GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("payment_intent_id = ?", paymentIntentID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking for payment intent %s: %w", paymentIntentID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus → status column only; lifecycle checks live in the service
func (d *DB) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("booking_status = ?", status).
		Where("booking_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// UpdatePaymentStatus → payment column only
func (d *DB) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_status = ?", status).
		Where("booking_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SetPaymentIntentID → records the stripe payment intent issued for a booking
func (d *DB) SetPaymentIntentID(ctx context.Context, id string, paymentIntentID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_intent_id = ?", paymentIntentID).
		Where("booking_id = ?", id).
		Exec(ctx)
	return err
}

// GetBookingsByUser → all bookings for a traveler, newest first
func (d *DB) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// GetBookingsBySchedule → all bookings against a schedule
func (d *DB) GetBookingsBySchedule(ctx context.Context, scheduleID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("schedule_id = ?", scheduleID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}
