package fault

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
)

type Service struct {
	faults Repository
}

func NewService(faults Repository) *Service {
	return &Service{faults: faults}
}

var validSeverities = map[string]bool{
	SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
}

var validStatuses = map[string]bool{
	StatusOpen: true, StatusInProgress: true, StatusResolved: true,
}

func (s *Service) ReportFault(ctx context.Context, f *Fault) error {
	if f.MachineID == uuid.Nil {
		return apperr.Invalidf("machine_id is required")
	}
	if f.Title == "" {
		return apperr.Invalidf("title is required")
	}
	if f.Severity == "" {
		f.Severity = SeverityMedium
	}
	if !validSeverities[f.Severity] {
		return apperr.Invalidf("invalid severity: %s", f.Severity)
	}
	if f.Status == "" {
		f.Status = StatusOpen
	}
	if !validStatuses[f.Status] {
		return apperr.Invalidf("invalid status: %s", f.Status)
	}
	return s.faults.Create(ctx, f)
}

func (s *Service) GetFault(ctx context.Context, id uuid.UUID) (*Fault, error) {
	return s.faults.GetByID(ctx, id)
}

func (s *Service) UpdateFault(ctx context.Context, f *Fault) error {
	if f.Severity != "" && !validSeverities[f.Severity] {
		return apperr.Invalidf("invalid severity: %s", f.Severity)
	}
	if f.Status != "" && !validStatuses[f.Status] {
		return apperr.Invalidf("invalid status: %s", f.Status)
	}
	if f.Status == StatusResolved && f.ResolvedAt == nil {
		now := time.Now()
		f.ResolvedAt = &now
	}
	return s.faults.Update(ctx, f)
}

func (s *Service) DeleteFault(ctx context.Context, id uuid.UUID) error {
	return s.faults.Delete(ctx, id)
}

func (s *Service) SearchFaults(ctx context.Context, params map[string]string, limit, offset int) ([]*Fault, int, error) {
	return s.faults.Search(ctx, params, limit, offset)
}
