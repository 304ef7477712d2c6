package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleAssignment is one capability row for a principal. A principal with no
// rows holds the "user" capability implicitly.
type RoleAssignment struct {
	bun.BaseModel `bun:"table:role_assignments"`

	PrincipalID string    `bun:"principal_id,pk" json:"principal_id"`
	Capability  string    `bun:"capability,pk" json:"capability"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

type SetCapabilitiesRequest struct {
	Capabilities []string `json:"capabilities"`
}
