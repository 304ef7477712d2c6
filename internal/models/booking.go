package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID       string        `bun:"booking_id,pk" json:"booking_id"`
	UserID          string        `bun:"user_id,notnull" json:"user_id"`
	TripID          string        `bun:"trip_id,notnull" json:"trip_id"`
	ScheduleID      string        `bun:"schedule_id,notnull" json:"schedule_id"`
	PartySize       int           `bun:"party_size,notnull" json:"party_size"`
	TotalAmount     float64       `bun:"total_amount,notnull" json:"total_amount"`
	PaymentMethod   PaymentMethod `bun:"payment_method,notnull" json:"payment_method"`
	PaymentStatus   PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	BookingStatus   BookingStatus `bun:"booking_status,notnull" json:"booking_status"`
	PaymentIntentID string        `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time     `bun:"created_at,notnull" json:"created_at"`
}

type BookingRequest struct {
	TripID        string `json:"trip_id"`
	ScheduleID    string `json:"schedule_id"`
	PartySize     int    `json:"party_size"`
	PaymentMethod string `json:"payment_method"`
}
