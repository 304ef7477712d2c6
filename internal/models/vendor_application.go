package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// VendorApplication is a one-shot state machine: pending resolves to approved
// or rejected exactly once and is never reversed automatically.
type VendorApplication struct {
	bun.BaseModel `bun:"table:vendor_applications"`

	ApplicationID string            `bun:"application_id,pk" json:"application_id"`
	ApplicantID   string            `bun:"applicant_id,notnull" json:"applicant_id"`
	BusinessName  string            `bun:"business_name,notnull" json:"business_name"`
	ContactPhone  string            `bun:"contact_phone,nullzero" json:"contact_phone,omitempty"`
	Description   string            `bun:"description,nullzero" json:"description,omitempty"`
	DocumentRef   string            `bun:"document_ref,nullzero" json:"document_ref,omitempty"`
	Status        ApplicationStatus `bun:"status,notnull" json:"status"`
	ReviewerID    string            `bun:"reviewer_id,nullzero" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time        `bun:"reviewed_at,nullzero" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time         `bun:"created_at,notnull" json:"created_at"`
}

type VendorApplicationRequest struct {
	BusinessName string `json:"business_name"`
	ContactPhone string `json:"contact_phone"`
	Description  string `json:"description"`
	DocumentRef  string `json:"document_ref"`
}

type ReviewRequest struct {
	Decision string `json:"decision"`
}
