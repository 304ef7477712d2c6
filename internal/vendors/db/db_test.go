package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/models"
	vendordb "ms-tripbooking/internal/vendors/db"
)

func setupTestDB(t *testing.T) (*vendordb.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.VendorApplication)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create vendor_applications table: %v", err)
	}

	return &vendordb.DB{Bun: bunDB}, bunDB
}

func newApplication(applicantID string) models.VendorApplication {
	return models.VendorApplication{
		ApplicationID: uuid.New().String(),
		ApplicantID:   applicantID,
		BusinessName:  "Hill Country Tours",
		Status:        models.ApplicationPending,
		CreatedAt:     time.Now(),
	}
}

func TestCreateAndGetApplication(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	app := newApplication("user-1")
	require.NoError(t, store.CreateApplication(ctx, app))

	got, err := store.GetApplicationByID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, got.Status)

	_, err = store.GetApplicationByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHasPendingByApplicant(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	pending, err := store.HasPendingByApplicant(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, pending)

	app := newApplication("user-1")
	require.NoError(t, store.CreateApplication(ctx, app))

	pending, err = store.HasPendingByApplicant(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, pending)

	// A resolved application no longer counts as pending.
	require.NoError(t, store.ResolveApplication(ctx, app.ApplicationID, models.ApplicationRejected, "admin-1"))
	pending, err = store.HasPendingByApplicant(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestResolveApplicationIsOneShot(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	app := newApplication("user-1")
	require.NoError(t, store.CreateApplication(ctx, app))

	require.NoError(t, store.ResolveApplication(ctx, app.ApplicationID, models.ApplicationApproved, "admin-1"))

	got, err := store.GetApplicationByID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, got.Status)
	assert.Equal(t, "admin-1", got.ReviewerID)
	require.NotNil(t, got.ReviewedAt)

	// Second resolution attempt hits zero rows and reports the conflict.
	err = store.ResolveApplication(ctx, app.ApplicationID, models.ApplicationRejected, "admin-2")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	// The first decision stands.
	got, err = store.GetApplicationByID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, got.Status)
	assert.Equal(t, "admin-1", got.ReviewerID)
}

func TestResolveApplicationMissing(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := store.ResolveApplication(context.Background(), "missing", models.ApplicationApproved, "admin-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListByStatus(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	first := newApplication("user-1")
	second := newApplication("user-2")
	require.NoError(t, store.CreateApplication(ctx, first))
	require.NoError(t, store.CreateApplication(ctx, second))
	require.NoError(t, store.ResolveApplication(ctx, second.ApplicationID, models.ApplicationRejected, "admin-1"))

	queue, err := store.ListByStatus(ctx, models.ApplicationPending)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, first.ApplicationID, queue[0].ApplicationID)
}
