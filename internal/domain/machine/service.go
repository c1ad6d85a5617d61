package machine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
)

type Service struct {
	machines Repository
}

func NewService(machines Repository) *Service {
	return &Service{machines: machines}
}

var validStatuses = map[string]bool{
	StatusOperational: true, StatusMaintenance: true, StatusOutOfService: true,
}

func (s *Service) CreateMachine(ctx context.Context, m *Machine) error {
	if m.Name == "" {
		return apperr.Invalidf("name is required")
	}
	if m.SerialNumber == "" {
		return apperr.Invalidf("serial_number is required")
	}
	if m.Status == "" {
		m.Status = StatusOperational
	}
	if !validStatuses[m.Status] {
		return apperr.Invalidf("invalid status: %s", m.Status)
	}
	return s.machines.Create(ctx, m)
}

func (s *Service) GetMachine(ctx context.Context, id uuid.UUID) (*Machine, error) {
	return s.machines.GetByID(ctx, id)
}

func (s *Service) UpdateMachine(ctx context.Context, m *Machine) error {
	if m.Status != "" && !validStatuses[m.Status] {
		return apperr.Invalidf("invalid status: %s", m.Status)
	}
	return s.machines.Update(ctx, m)
}

// DeleteMachine refuses to delete a machine still referenced by interventions
// or faults. The message prefix is load-bearing, dashboards branch on it.
func (s *Service) DeleteMachine(ctx context.Context, id uuid.UUID) error {
	interventions, faults, err := s.machines.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if interventions > 0 || faults > 0 {
		return apperr.Invalidf("Cannot delete machine: %d intervention(s) and %d fault(s) reference it",
			interventions, faults)
	}
	return s.machines.Delete(ctx, id)
}

func (s *Service) SearchMachines(ctx context.Context, params map[string]string, limit, offset int) ([]*Machine, int, error) {
	return s.machines.Search(ctx, params, limit, offset)
}

// RecordMaintenance updates the machine's informational maintenance dates
// after a control or schedule completes.
func (s *Service) RecordMaintenance(ctx context.Context, id uuid.UUID, performedAt time.Time, nextDue *time.Time) error {
	return s.machines.SetMaintenanceDates(ctx, id, &performedAt, nextDue)
}
