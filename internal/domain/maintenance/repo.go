package maintenance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ControlRepository interface {
	Create(ctx context.Context, c *MaintenanceControl) error
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceControl, error)
	Update(ctx context.Context, c *MaintenanceControl) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceControl, int, error)
	// ListDueCandidates returns pending controls whose next due date falls
	// inside the classifier's watch horizon as of now.
	ListDueCandidates(ctx context.Context, now time.Time) ([]*MaintenanceControl, error)
	FindPendingByMachineAndType(ctx context.Context, machineID uuid.UUID, controlType string) (*MaintenanceControl, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, s *MaintenanceSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceSchedule, error)
	Update(ctx context.Context, s *MaintenanceSchedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceSchedule, int, error)
	ListDueCandidates(ctx context.Context, now time.Time) ([]*MaintenanceSchedule, error)
	FindPendingByMachineAndType(ctx context.Context, machineID uuid.UUID, typeLabel string) (*MaintenanceSchedule, error)
}
