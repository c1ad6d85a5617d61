package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/dialytrack/dialytrack/internal/domain/machine"
	"github.com/dialytrack/dialytrack/internal/platform/apperr"
)

// MachineDirectory is the slice of the machine service the maintenance
// domain needs: name lookups for alert wording and the informational
// last/next maintenance fields.
type MachineDirectory interface {
	GetMachine(ctx context.Context, id uuid.UUID) (*machine.Machine, error)
	RecordMaintenance(ctx context.Context, id uuid.UUID, performedAt time.Time, nextDue *time.Time) error
}

type Service struct {
	controls  ControlRepository
	schedules ScheduleRepository
	machines  MachineDirectory
}

func NewService(controls ControlRepository, schedules ScheduleRepository, machines MachineDirectory) *Service {
	return &Service{controls: controls, schedules: schedules, machines: machines}
}

var validCycles = map[string]bool{
	Cycle3Minutes: true, Cycle3Months: true, Cycle6Months: true, Cycle1Year: true,
}

// defaultTasks seeds a schedule's checklist per cycle label.
var defaultTasks = map[string][]string{
	"3-minute": {"Test de cycle court"},
	"3-month":  {"Contrôle des filtres", "Vérification des pressions", "Désinfection"},
	"6-month":  {"Contrôle des filtres", "Calibration des capteurs", "Désinfection complète"},
	"1-year":   {"Révision générale", "Remplacement des pièces d'usure", "Certification"},
}

// -- Controls --

func (s *Service) CreateControl(ctx context.Context, c *MaintenanceControl) error {
	if c.MachineID == uuid.Nil {
		return apperr.Invalidf("machine_id is required")
	}
	if !validCycles[c.ControlType] {
		return apperr.Invalidf("invalid control_type: %s", c.ControlType)
	}
	if c.ControlDate.IsZero() {
		c.ControlDate = time.Now()
	}
	if c.NextControlDate.IsZero() {
		next, err := NextDue(c.ControlType, c.ControlDate)
		if err != nil {
			return err
		}
		c.NextControlDate = next
	}
	if c.Status == "" {
		c.Status = ControlPending
	}
	return s.controls.Create(ctx, c)
}

func (s *Service) GetControl(ctx context.Context, id uuid.UUID) (*MaintenanceControl, error) {
	return s.controls.GetByID(ctx, id)
}

func (s *Service) UpdateControl(ctx context.Context, c *MaintenanceControl) error {
	if c.ControlType != "" && !validCycles[c.ControlType] {
		return apperr.Invalidf("invalid control_type: %s", c.ControlType)
	}
	return s.controls.Update(ctx, c)
}

func (s *Service) DeleteControl(ctx context.Context, id uuid.UUID) error {
	return s.controls.Delete(ctx, id)
}

func (s *Service) SearchControls(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceControl, int, error) {
	return s.controls.Search(ctx, params, limit, offset)
}

// CompleteControl records a performed control and rolls the cycle forward.
// The row stays pending since the obligation recurs; the machine's
// informational dates are refreshed best effort.
func (s *Service) CompleteControl(ctx context.Context, id uuid.UUID, performedAt time.Time, notes *string) (*MaintenanceControl, error) {
	c, err := s.controls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := NextDue(c.ControlType, performedAt)
	if err != nil {
		return nil, err
	}
	c.ControlDate = performedAt
	c.NextControlDate = next
	c.Status = ControlPending
	if notes != nil {
		c.Notes = notes
	}
	if err := s.controls.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := s.machines.RecordMaintenance(ctx, c.MachineID, performedAt, &next); err != nil {
		log.Warn().Err(err).Str("machine_id", c.MachineID.String()).
			Msg("failed to refresh machine maintenance dates")
	}
	return c, nil
}

// -- Schedules --

func (s *Service) CreateSchedule(ctx context.Context, sch *MaintenanceSchedule) error {
	if sch.MachineID == uuid.Nil {
		return apperr.Invalidf("machine_id is required")
	}
	if _, ok := CycleForLabel(sch.Type); !ok {
		return apperr.Invalidf("invalid type: %s", sch.Type)
	}
	if sch.DueDate.IsZero() {
		return apperr.Invalidf("due_date is required")
	}
	if len(sch.Tasks) == 0 {
		sch.Tasks = defaultTasks[sch.Type]
	}
	if sch.Status == "" {
		sch.Status = SchedulePending
	}
	return s.schedules.Create(ctx, sch)
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*MaintenanceSchedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) UpdateSchedule(ctx context.Context, sch *MaintenanceSchedule) error {
	if sch.Type != "" {
		if _, ok := CycleForLabel(sch.Type); !ok {
			return apperr.Invalidf("invalid type: %s", sch.Type)
		}
	}
	return s.schedules.Update(ctx, sch)
}

func (s *Service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return s.schedules.Delete(ctx, id)
}

func (s *Service) SearchSchedules(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceSchedule, int, error) {
	return s.schedules.Search(ctx, params, limit, offset)
}

// CompleteSchedule marks a schedule done. Unlike controls, a completed
// schedule does not roll forward; a new row is seeded by the next
// intervention or created by hand.
func (s *Service) CompleteSchedule(ctx context.Context, id uuid.UUID, completedAt time.Time) (*MaintenanceSchedule, error) {
	sch, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sch.Status = ScheduleCompleted
	sch.CompletedAt = &completedAt
	if err := s.schedules.Update(ctx, sch); err != nil {
		return nil, err
	}
	if err := s.machines.RecordMaintenance(ctx, sch.MachineID, completedAt, nil); err != nil {
		log.Warn().Err(err).Str("machine_id", sch.MachineID.String()).
			Msg("failed to refresh machine maintenance dates")
	}
	return sch, nil
}

// -- Intervention seeding --

// SeedFromIntervention upserts the control/schedule pair implied by an
// intervention's notification preference, both due performedAt plus one
// cycle. The two writes are sequential and not transactional: a schedule
// failure leaves the control in place and is reported to the caller.
func (s *Service) SeedFromIntervention(ctx context.Context, machineID uuid.UUID, technicianID *uuid.UUID, notification string, performedAt time.Time) error {
	cycle, ok := CycleForNotification(notification)
	if !ok {
		return fmt.Errorf("unknown notification preference: %s", notification)
	}
	due, err := NextDue(cycle, performedAt)
	if err != nil {
		return err
	}

	// Only a definite no-rows answer falls through to the create branch; a
	// transient lookup failure must not spawn a second pending row.
	c, err := s.controls.FindPendingByMachineAndType(ctx, machineID, cycle)
	switch {
	case err == nil:
		c.TechnicianID = technicianID
		c.ControlDate = performedAt
		c.NextControlDate = due
		if err := s.controls.Update(ctx, c); err != nil {
			return fmt.Errorf("update control: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		c := &MaintenanceControl{
			MachineID:       machineID,
			TechnicianID:    technicianID,
			ControlType:     cycle,
			ControlDate:     performedAt,
			NextControlDate: due,
			Status:          ControlPending,
		}
		if err := s.controls.Create(ctx, c); err != nil {
			return fmt.Errorf("create control: %w", err)
		}
	default:
		return fmt.Errorf("find pending control: %w", err)
	}

	label := ScheduleLabel(cycle)
	sch, err := s.schedules.FindPendingByMachineAndType(ctx, machineID, label)
	switch {
	case err == nil:
		sch.DueDate = due
		if err := s.schedules.Update(ctx, sch); err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		sch := &MaintenanceSchedule{
			MachineID: machineID,
			Type:      label,
			Tasks:     defaultTasks[label],
			DueDate:   due,
			Status:    SchedulePending,
		}
		if err := s.schedules.Create(ctx, sch); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
	default:
		return fmt.Errorf("find pending schedule: %w", err)
	}
	return nil
}
