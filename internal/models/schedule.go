package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Schedule is one bookable date-range instance of a Trip. Seat counters are
// owned by the inventory store and must never be written from anywhere else.
type Schedule struct {
	bun.BaseModel `bun:"table:schedules"`

	ScheduleID     string    `bun:"schedule_id,pk" json:"schedule_id"`
	TripID         string    `bun:"trip_id,notnull" json:"trip_id"`
	StartDate      time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate        time.Time `bun:"end_date,notnull" json:"end_date"`
	TotalSeats     int       `bun:"total_seats,notnull" json:"total_seats"`
	AvailableSeats int       `bun:"available_seats,notnull" json:"available_seats"`
	Active         bool      `bun:"active,notnull" json:"active"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

type ScheduleRequest struct {
	TripID     string `json:"trip_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalSeats int    `json:"total_seats"`
}

type AvailabilityResponse struct {
	ScheduleID     string `json:"schedule_id"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	Active         bool   `json:"active"`
}
