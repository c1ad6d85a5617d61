package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
	"github.com/dialytrack/dialytrack/internal/platform/mailer"
)

// TechnicianDirectory resolves the recipient list for alert notifications.
type TechnicianDirectory interface {
	ListTechnicianEmails(ctx context.Context) ([]string, error)
}

// Notifier sends a rendered template to a recipient list, best effort.
type Notifier interface {
	NotifyAll(ctx context.Context, templateID string, data map[string]string, recipients []string) mailer.Outcome
}

// EmitResult is what Emit hands back: the persisted alert (nil when the dedup
// key collided), whether it collided, and the email delivery outcome.
type EmitResult struct {
	Alert     *Alert         `json:"alert,omitempty"`
	Duplicate bool           `json:"duplicate"`
	Mail      mailer.Outcome `json:"mail"`
}

type Service struct {
	alerts   Repository
	techs    TechnicianDirectory
	notifier Notifier
}

func NewService(alerts Repository, techs TechnicianDirectory, notifier Notifier) *Service {
	return &Service{alerts: alerts, techs: techs, notifier: notifier}
}

var validPriorities = map[string]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
}

// Emit persists the alert and fans an email out to active technicians.
// A dedup collision is reported, not an error. Email failure is recorded on
// the result's Mail outcome and logged; it never fails the emit.
func (s *Service) Emit(ctx context.Context, a *Alert) (*EmitResult, error) {
	if a.Message == "" {
		return nil, apperr.Invalidf("message is required")
	}
	if a.MachineID == uuid.Nil {
		return nil, apperr.Invalidf("machine_id is required")
	}
	if !validPriorities[a.Priority] {
		return nil, apperr.Invalidf("invalid priority: %s", a.Priority)
	}
	if a.SourceType == "" {
		a.SourceType = SourceManual
	}
	if a.MessageRole == "" {
		a.MessageRole = "technician"
	}
	if a.Type == "" {
		a.Type = "general"
	}
	a.Status = StatusActive
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	inserted, err := s.alerts.Insert(ctx, a)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return &EmitResult{Duplicate: true}, nil
	}

	result := &EmitResult{Alert: a}
	recipients, err := s.techs.ListTechnicianEmails(ctx)
	if err != nil {
		result.Mail = mailer.Outcome{Err: err}
	} else {
		machine := a.MachineName
		if machine == "" {
			machine = a.MachineID.String()
		}
		result.Mail = s.notifier.NotifyAll(ctx, "alert-raised", map[string]string{
			"message":  a.Message,
			"priority": a.Priority,
			"machine":  machine,
		}, recipients)
	}
	if result.Mail.Failed() {
		log.Warn().
			Err(result.Mail.Err).
			Str("alert_id", a.ID.String()).
			Int("delivered", result.Mail.Delivered).
			Int("attempted", result.Mail.Attempted).
			Msg("alert email delivery failed")
	}
	return result, nil
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

func (s *Service) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	return s.alerts.Resolve(ctx, id)
}

func (s *Service) SearchAlerts(ctx context.Context, params map[string]string, limit, offset int) ([]*Alert, int, error) {
	return s.alerts.Search(ctx, params, limit, offset)
}
