package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateApplication → insert new application
func (d *DB) CreateApplication(ctx context.Context, app models.VendorApplication) error {
	_, err := d.Bun.NewInsert().Model(&app).Exec(ctx)
	return err
}

// GetApplicationByID → fetch one application
func (d *DB) GetApplicationByID(ctx context.Context, id string) (*models.VendorApplication, error) {
	var app models.VendorApplication
	err := d.Bun.NewSelect().
		Model(&app).
		Where("application_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// HasPendingByApplicant → duplicate-application guard
func (d *DB) HasPendingByApplicant(ctx context.Context, applicantID string) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.VendorApplication)(nil)).
		Where("applicant_id = ?", applicantID).
		Where("status = ?", models.ApplicationPending).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveApplication moves a pending application to its terminal status. The
// WHERE status = 'pending' clause makes the transition one-shot even when two
// admins review the same application at once.
func (d *DB) ResolveApplication(ctx context.Context, id string, status models.ApplicationStatus, reviewerID string) error {
	now := time.Now()
	res, err := d.Bun.NewUpdate().
		Model((*models.VendorApplication)(nil)).
		Set("status = ?", status).
		Set("reviewer_id = ?", reviewerID).
		Set("reviewed_at = ?", now).
		Where("application_id = ?", id).
		Where("status = ?", models.ApplicationPending).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := d.GetApplicationByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("application %s is no longer pending: %w", id, apperr.ErrInvalidTransition)
	}
	return nil
}

// ListByStatus → admin review queue
func (d *DB) ListByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.VendorApplication, error) {
	var apps []models.VendorApplication
	err := d.Bun.NewSelect().
		Model(&apps).
		Where("status = ?", status).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []models.VendorApplication{}
	}
	return apps, nil
}
