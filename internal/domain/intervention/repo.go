package intervention

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Intervention) error
	GetByID(ctx context.Context, id uuid.UUID) (*Intervention, error)
	Update(ctx context.Context, i *Intervention) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Intervention, int, error)
}
