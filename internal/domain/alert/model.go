package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Alert statuses.
const (
	StatusActive   = "active"
	StatusResolved = "resolved"
)

// Alert source types. Controls and schedules carry a structured dedup key;
// manual alerts are never deduplicated.
const (
	SourceControl  = "control"
	SourceSchedule = "schedule"
	SourceManual   = "manual"
)

// Alert maps to the alert table. Rows are immutable after creation except for
// the resolve transition.
type Alert struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Message        string    `db:"message" json:"message"`
	MessageRole    string    `db:"message_role" json:"message_role"`
	Type           string    `db:"type" json:"type"`
	RequiredAction *string   `db:"required_action" json:"required_action,omitempty"`
	Priority       string    `db:"priority" json:"priority"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
	Status         string    `db:"status" json:"status"`
	MachineID      uuid.UUID `db:"machine_id" json:"machine_id"`
	SourceType     string    `db:"source_type" json:"source_type"`
	Cycle          *string   `db:"cycle" json:"cycle,omitempty"`
	WindowBucket   *string   `db:"window_bucket" json:"window_bucket,omitempty"`

	// MachineName is not persisted; emitters set it so notification
	// templates can name the machine without a second lookup.
	MachineName string `db:"-" json:"-"`
}
