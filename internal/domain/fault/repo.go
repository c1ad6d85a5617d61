package fault

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *Fault) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fault, error)
	Update(ctx context.Context, f *Fault) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Fault, int, error)
}
