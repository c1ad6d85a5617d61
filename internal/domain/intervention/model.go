package intervention

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePreventive = "preventive"
	TypeCorrective = "corrective"
)

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Intervention is a technician visit on a machine, planned or performed.
// Notifications holds the follow-up cycle the technician asked for; together
// with DatePerformed it drives the seeding of the next maintenance window.
type Intervention struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	MachineID     uuid.UUID  `json:"machine_id" db:"machine_id"`
	TechnicianID  *uuid.UUID `json:"technician_id,omitempty" db:"technician_id"`
	FaultID       *uuid.UUID `json:"fault_id,omitempty" db:"fault_id"`
	Description   string     `json:"description" db:"description"`
	Type          string     `json:"type" db:"type"`
	Status        string     `json:"status" db:"status"`
	DatePerformed *time.Time `json:"date_performed,omitempty" db:"date_performed"`
	Notifications *string    `json:"notifications,omitempty" db:"notifications"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
