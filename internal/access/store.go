package access

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-tripbooking/internal/models"
)

// DBStore persists role assignments as one row per (principal, capability).
type DBStore struct {
	Bun *bun.DB
}

func NewDBStore(bunDB *bun.DB) *DBStore {
	return &DBStore{Bun: bunDB}
}

func (s *DBStore) GetCapabilities(ctx context.Context, principalID string) ([]string, error) {
	var capabilities []string
	err := s.Bun.NewSelect().
		Column("capability").
		Table("role_assignments").
		Where("principal_id = ?", principalID).
		Scan(ctx, &capabilities)
	if err != nil {
		return nil, err
	}
	return capabilities, nil
}

// ReplaceCapabilities swaps the principal's whole set in one transaction so a
// concurrent reader never observes a partial set.
func (s *DBStore) ReplaceCapabilities(ctx context.Context, principalID string, capabilities []string) error {
	return s.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.RoleAssignment)(nil)).
			Where("principal_id = ?", principalID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}

		rows := make([]models.RoleAssignment, 0, len(capabilities))
		for _, capability := range capabilities {
			rows = append(rows, models.RoleAssignment{
				PrincipalID: principalID,
				Capability:  capability,
				CreatedAt:   time.Now(),
			})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}
		return nil
	})
}

func (s *DBStore) AddCapability(ctx context.Context, principalID string, capability string) error {
	row := models.RoleAssignment{
		PrincipalID: principalID,
		Capability:  capability,
		CreatedAt:   time.Now(),
	}
	_, err := s.Bun.NewInsert().
		Model(&row).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}
