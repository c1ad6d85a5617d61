package fault

import (
	"time"

	"github.com/google/uuid"
)

// Fault severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Fault statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Fault maps to the fault table. Faults are breakdown reports filed against a
// machine, by patients or staff.
type Fault struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MachineID   uuid.UUID  `db:"machine_id" json:"machine_id"`
	ReportedBy  *uuid.UUID `db:"reported_by" json:"reported_by,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Severity    string     `db:"severity" json:"severity"`
	Status      string     `db:"status" json:"status"`
	ReportedAt  time.Time  `db:"reported_at" json:"reported_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
