package intervention

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
)

// MaintenancePlanner seeds the follow-up control/schedule pair after a
// performed intervention.
type MaintenancePlanner interface {
	SeedFromIntervention(ctx context.Context, machineID uuid.UUID, technicianID *uuid.UUID, notification string, performedAt time.Time) error
}

type Service struct {
	interventions Repository
	planner       MaintenancePlanner
}

func NewService(interventions Repository, planner MaintenancePlanner) *Service {
	return &Service{interventions: interventions, planner: planner}
}

var validTypes = map[string]bool{
	TypePreventive: true, TypeCorrective: true,
}

var validStatuses = map[string]bool{
	StatusPlanned: true, StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
}

func (s *Service) CreateIntervention(ctx context.Context, i *Intervention) error {
	if i.MachineID == uuid.Nil {
		return apperr.Invalidf("machine_id is required")
	}
	if i.Description == "" {
		return apperr.Invalidf("description is required")
	}
	if i.Type == "" {
		i.Type = TypeCorrective
	}
	if !validTypes[i.Type] {
		return apperr.Invalidf("invalid type: %s", i.Type)
	}
	if i.Status == "" {
		if i.DatePerformed != nil {
			i.Status = StatusCompleted
		} else {
			i.Status = StatusPlanned
		}
	}
	if !validStatuses[i.Status] {
		return apperr.Invalidf("invalid status: %s", i.Status)
	}
	if err := s.interventions.Create(ctx, i); err != nil {
		return err
	}
	s.seedFollowUp(ctx, i)
	return nil
}

func (s *Service) GetIntervention(ctx context.Context, id uuid.UUID) (*Intervention, error) {
	return s.interventions.GetByID(ctx, id)
}

func (s *Service) UpdateIntervention(ctx context.Context, i *Intervention) error {
	if i.Type != "" && !validTypes[i.Type] {
		return apperr.Invalidf("invalid type: %s", i.Type)
	}
	if i.Status != "" && !validStatuses[i.Status] {
		return apperr.Invalidf("invalid status: %s", i.Status)
	}
	if err := s.interventions.Update(ctx, i); err != nil {
		return err
	}
	s.seedFollowUp(ctx, i)
	return nil
}

func (s *Service) DeleteIntervention(ctx context.Context, id uuid.UUID) error {
	return s.interventions.Delete(ctx, id)
}

func (s *Service) SearchInterventions(ctx context.Context, params map[string]string, limit, offset int) ([]*Intervention, int, error) {
	return s.interventions.Search(ctx, params, limit, offset)
}

// seedFollowUp plants the next maintenance window when the intervention
// carries both a notification preference and a performed date. The
// intervention is already persisted; a seeding failure is logged and does not
// roll it back.
func (s *Service) seedFollowUp(ctx context.Context, i *Intervention) {
	if i.Notifications == nil || *i.Notifications == "" || i.DatePerformed == nil {
		return
	}
	err := s.planner.SeedFromIntervention(ctx, i.MachineID, i.TechnicianID, *i.Notifications, *i.DatePerformed)
	if err != nil {
		log.Warn().Err(err).
			Str("intervention_id", i.ID.String()).
			Str("machine_id", i.MachineID.String()).
			Msg("maintenance follow-up seeding failed")
	}
}
