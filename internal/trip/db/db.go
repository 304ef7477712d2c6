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

type DB struct {
	Bun *bun.DB
}

// CreateTrip → insert new trip
func (d *DB) CreateTrip(ctx context.Context, trip models.Trip) error {
	_, err := d.Bun.NewInsert().Model(&trip).Exec(ctx)
	return err
}

// GetTripByID → fetch one trip regardless of moderation state
func (d *DB) GetTripByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Where("trip_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// UpdateTrip → update vendor-editable fields
func (d *DB) UpdateTrip(ctx context.Context, trip models.Trip) error {
	res, err := d.Bun.NewUpdate().
		Model(&trip).
		Column("title", "destination", "description", "price_per_person", "max_group_size", "image_ref").
		Where("trip_id = ?", trip.TripID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("trip %s: %w", trip.TripID, apperr.ErrNotFound)
	}
	return nil
}

// SetApproved → moderation flag, admin only at the service layer
func (d *DB) SetApproved(ctx context.Context, id string, approved bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Trip)(nil)).
		Set("approved = ?", approved).
		Where("trip_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("trip %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SetActive → listing visibility flag
func (d *DB) SetActive(ctx context.Context, id string, active bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Trip)(nil)).
		Set("active = ?", active).
		Where("trip_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("trip %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// ListApproved → the public catalog, newest first
func (d *DB) ListApproved(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := d.Bun.NewSelect().
		Model(&trips).
		Where("approved = ?", true).
		Where("active = ?", true).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// ListByVendor → everything a vendor has listed, including unapproved trips
func (d *DB) ListByVendor(ctx context.Context, vendorID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := d.Bun.NewSelect().
		Model(&trips).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}
