package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dialytrack/dialytrack/internal/domain/alert"
)

// Emitter is the alert service surface the checker drives. De-duplication
// happens behind Emit.
type Emitter interface {
	Emit(ctx context.Context, a *alert.Alert) (*alert.EmitResult, error)
}

// RunSummary reports one pass of the check sequence.
type RunSummary struct {
	Checked           int `json:"checked"`
	Emitted           int `json:"emitted"`
	SkippedDuplicates int `json:"skipped_duplicates"`
	MailFailures      int `json:"mail_failures"`
}

// Checker runs the classify, emit, advance sequence over due candidates.
// Candidates are processed sequentially; a failing candidate is logged and
// skipped, it never aborts the pass.
type Checker struct {
	controls  ControlRepository
	schedules ScheduleRepository
	machines  MachineDirectory
	alerts    Emitter
}

func NewChecker(controls ControlRepository, schedules ScheduleRepository, machines MachineDirectory, alerts Emitter) *Checker {
	return &Checker{controls: controls, schedules: schedules, machines: machines, alerts: alerts}
}

func (ck *Checker) machineName(ctx context.Context, id uuid.UUID) string {
	m, err := ck.machines.GetMachine(ctx, id)
	if err != nil {
		return id.String()
	}
	return m.Name
}

func requiredAction(priority string) string {
	if priority == alert.PriorityCritical {
		return "Intervention immédiate requise"
	}
	return "Planifier la maintenance"
}

// RunControls checks pending maintenance controls. Controls that fire are
// advanced one cycle from the fire time, with a note recording the emission,
// so the next pass watches the new window.
func (ck *Checker) RunControls(ctx context.Context, now time.Time) (RunSummary, error) {
	var sum RunSummary
	candidates, err := ck.controls.ListDueCandidates(ctx, now)
	if err != nil {
		return sum, fmt.Errorf("load due controls: %w", err)
	}

	for _, c := range candidates {
		sum.Checked++
		cls := Classify(now, c.NextControlDate, UnitForCycle(c.ControlType))
		if !cls.Emit {
			continue
		}

		name := ck.machineName(ctx, c.MachineID)
		cycle := c.ControlType
		bucket := c.NextControlDate.UTC().Format(time.RFC3339)
		action := requiredAction(cls.Priority)
		draft := &alert.Alert{
			Message:        fmt.Sprintf("Maintenance %s %s pour la machine %s", humanCycles[cycle], cls.Phrase, name),
			MessageRole:    "technician",
			Type:           "maintenance",
			RequiredAction: &action,
			Priority:       cls.Priority,
			MachineID:      c.MachineID,
			MachineName:    name,
			SourceType:     alert.SourceControl,
			Cycle:          &cycle,
			WindowBucket:   &bucket,
		}

		result, err := ck.alerts.Emit(ctx, draft)
		if err != nil {
			log.Error().Err(err).Str("control_id", c.ID.String()).Msg("control alert emit failed")
			continue
		}
		if result.Duplicate {
			sum.SkippedDuplicates++
			continue
		}
		sum.Emitted++
		if result.Mail.Failed() {
			sum.MailFailures++
		}

		next, err := NextDue(c.ControlType, now)
		if err != nil {
			log.Error().Err(err).Str("control_id", c.ID.String()).Msg("cannot advance control")
			continue
		}
		note := fmt.Sprintf("alerte émise le %s", now.Format(time.RFC3339))
		if c.Notes != nil && *c.Notes != "" {
			note = *c.Notes + "\n" + note
		}
		c.NextControlDate = next
		c.Notes = &note
		if err := ck.controls.Update(ctx, c); err != nil {
			log.Error().Err(err).Str("control_id", c.ID.String()).Msg("control advance write failed")
		}
	}
	return sum, nil
}

// RunSchedules checks pending maintenance schedules. Schedules are not
// advanced on emission; their due date only moves when the schedule is
// completed or reseeded, and the dedup key suppresses repeat alerts for the
// unchanged window.
func (ck *Checker) RunSchedules(ctx context.Context, now time.Time) (RunSummary, error) {
	var sum RunSummary
	candidates, err := ck.schedules.ListDueCandidates(ctx, now)
	if err != nil {
		return sum, fmt.Errorf("load due schedules: %w", err)
	}

	for _, s := range candidates {
		sum.Checked++
		cycle, ok := CycleForLabel(s.Type)
		if !ok {
			log.Warn().Str("schedule_id", s.ID.String()).Str("type", s.Type).Msg("schedule has unknown type")
			continue
		}
		cls := Classify(now, s.DueDate, UnitForCycle(cycle))
		if !cls.Emit {
			continue
		}

		name := ck.machineName(ctx, s.MachineID)
		bucket := s.DueDate.UTC().Format(time.RFC3339)
		action := requiredAction(cls.Priority)
		draft := &alert.Alert{
			Message:        fmt.Sprintf("Maintenance %s %s pour la machine %s", humanCycles[cycle], cls.Phrase, name),
			MessageRole:    "technician",
			Type:           "maintenance",
			RequiredAction: &action,
			Priority:       cls.Priority,
			MachineID:      s.MachineID,
			MachineName:    name,
			SourceType:     alert.SourceSchedule,
			Cycle:          &cycle,
			WindowBucket:   &bucket,
		}

		result, err := ck.alerts.Emit(ctx, draft)
		if err != nil {
			log.Error().Err(err).Str("schedule_id", s.ID.String()).Msg("schedule alert emit failed")
			continue
		}
		if result.Duplicate {
			sum.SkippedDuplicates++
			continue
		}
		sum.Emitted++
		if result.Mail.Failed() {
			sum.MailFailures++
		}
	}
	return sum, nil
}
