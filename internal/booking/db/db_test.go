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
	bookingdb "ms-tripbooking/internal/booking/db"
	"ms-tripbooking/internal/models"
)

func setupTestDB(t *testing.T) (*bookingdb.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create bookings table: %v", err)
	}

	return &bookingdb.DB{Bun: bunDB}, bunDB
}

func newBooking(userID string) models.Booking {
	return models.Booking{
		BookingID:     uuid.New().String(),
		UserID:        userID,
		TripID:        uuid.New().String(),
		ScheduleID:    uuid.New().String(),
		PartySize:     2,
		TotalAmount:   120,
		PaymentMethod: models.PaymentMethodOnline,
		PaymentStatus: models.PaymentPending,
		BookingStatus: models.BookingConfirmed,
		CreatedAt:     time.Now(),
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	booking := newBooking("user-1")
	require.NoError(t, ledger.CreateBooking(ctx, booking))

	got, err := ledger.GetBookingByID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking.BookingID, got.BookingID)
	assert.Equal(t, models.BookingConfirmed, got.BookingStatus)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.Equal(t, 120.0, got.TotalAmount)
}

func TestGetBookingNotFound(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := ledger.GetBookingByID(context.Background(), "no-such-booking")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateBookingStatus(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	booking := newBooking("user-1")
	require.NoError(t, ledger.CreateBooking(ctx, booking))

	require.NoError(t, ledger.UpdateBookingStatus(ctx, booking.BookingID, models.BookingCancelled))

	got, err := ledger.GetBookingByID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.BookingStatus)
	// payment column untouched
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
}

func TestUpdateBookingStatusMissingRow(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := ledger.UpdateBookingStatus(context.Background(), "missing", models.BookingCancelled)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	booking := newBooking("user-1")
	require.NoError(t, ledger.CreateBooking(ctx, booking))

	require.NoError(t, ledger.UpdatePaymentStatus(ctx, booking.BookingID, models.PaymentConfirmed))

	got, err := ledger.GetBookingByID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, got.PaymentStatus)
	assert.Equal(t, models.BookingConfirmed, got.BookingStatus)
}

func TestPaymentIntentLookup(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	booking := newBooking("user-1")
	require.NoError(t, ledger.CreateBooking(ctx, booking))
	require.NoError(t, ledger.SetPaymentIntentID(ctx, booking.BookingID, "pi_test_123"))

	got, err := ledger.GetBookingByPaymentIntent(ctx, "pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, booking.BookingID, got.BookingID)

	_, err = ledger.GetBookingByPaymentIntent(ctx, "pi_unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetBookingsByUser(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	require.NoError(t, ledger.CreateBooking(ctx, newBooking("alice")))
	require.NoError(t, ledger.CreateBooking(ctx, newBooking("alice")))
	require.NoError(t, ledger.CreateBooking(ctx, newBooking("bob")))

	mine, err := ledger.GetBookingsByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := ledger.GetBookingsByUser(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Len(t, none, 0)
}

func TestGetBookingsBySchedule(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	first := newBooking("alice")
	second := newBooking("bob")
	second.ScheduleID = first.ScheduleID
	require.NoError(t, ledger.CreateBooking(ctx, first))
	require.NoError(t, ledger.CreateBooking(ctx, second))
	require.NoError(t, ledger.CreateBooking(ctx, newBooking("carol")))

	onSchedule, err := ledger.GetBookingsBySchedule(ctx, first.ScheduleID)
	require.NoError(t, err)
	assert.Len(t, onSchedule, 2)
}
