package machine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Machine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Machine, error)
	Update(ctx context.Context, m *Machine) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Machine, int, error)
	// CountReferences returns how many interventions and faults point at the
	// machine. Used by the delete guard.
	CountReferences(ctx context.Context, id uuid.UUID) (interventions, faults int, err error)
	SetMaintenanceDates(ctx context.Context, id uuid.UUID, last, next *time.Time) error
}
