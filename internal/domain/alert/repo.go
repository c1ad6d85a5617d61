package alert

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert persists the alert. It reports false without error when an
	// equivalent active alert already holds the dedup key.
	Insert(ctx context.Context, a *Alert) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Resolve(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Alert, int, error)
}
