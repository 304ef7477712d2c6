package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips"`

	TripID         string    `bun:"trip_id,pk" json:"trip_id"`
	VendorID       string    `bun:"vendor_id,notnull" json:"vendor_id"`
	Title          string    `bun:"title,notnull" json:"title"`
	Destination    string    `bun:"destination,notnull" json:"destination"`
	Description    string    `bun:"description,nullzero" json:"description,omitempty"`
	PricePerPerson float64   `bun:"price_per_person,notnull" json:"price_per_person"`
	MaxGroupSize   int       `bun:"max_group_size,notnull" json:"max_group_size"`
	ImageRef       string    `bun:"image_ref,nullzero" json:"image_ref,omitempty"`
	Approved       bool      `bun:"approved,notnull" json:"approved"`
	Active         bool      `bun:"active,notnull" json:"active"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

type TripRequest struct {
	Title          string  `json:"title"`
	Destination    string  `json:"destination"`
	Description    string  `json:"description"`
	PricePerPerson float64 `json:"price_per_person"`
	MaxGroupSize   int     `json:"max_group_size"`
	ImageRef       string  `json:"image_ref"`
}
