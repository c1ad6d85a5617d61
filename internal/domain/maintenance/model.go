package maintenance

import (
	"time"

	"github.com/google/uuid"
)

// Recurring cycles. Controls use the enum form, schedules use the label form;
// the two entities track the same obligation with different representations
// and both are kept in sync by intervention seeding.
const (
	Cycle3Minutes = "3_minutes"
	Cycle3Months  = "3_months"
	Cycle6Months  = "6_months"
	Cycle1Year    = "1_year"
)

// Control statuses.
const (
	ControlPending   = "pending"
	ControlCompleted = "completed"
)

// Schedule statuses.
const (
	SchedulePending   = "Pending"
	ScheduleCompleted = "Completed"
)

// scheduleLabels maps a control cycle to the free-text schedule type.
var scheduleLabels = map[string]string{
	Cycle3Minutes: "3-minute",
	Cycle3Months:  "3-month",
	Cycle6Months:  "6-month",
	Cycle1Year:    "1-year",
}

// cycleByLabel is the reverse of scheduleLabels.
var cycleByLabel = map[string]string{
	"3-minute": Cycle3Minutes,
	"3-month":  Cycle3Months,
	"6-month":  Cycle6Months,
	"1-year":   Cycle1Year,
}

// cycleByNotification maps intervention notification preferences to cycles.
var cycleByNotification = map[string]string{
	"3min":    Cycle3Minutes,
	"3months": Cycle3Months,
	"6months": Cycle6Months,
	"1year":   Cycle1Year,
}

// humanCycles is the French wording used in alert messages.
var humanCycles = map[string]string{
	Cycle3Minutes: "3 minutes",
	Cycle3Months:  "3 mois",
	Cycle6Months:  "6 mois",
	Cycle1Year:    "1 an",
}

// ScheduleLabel returns the schedule type label for a control cycle, or ""
// when the cycle is unknown.
func ScheduleLabel(cycle string) string { return scheduleLabels[cycle] }

// CycleForLabel resolves a schedule type label back to a cycle.
func CycleForLabel(label string) (string, bool) {
	c, ok := cycleByLabel[label]
	return c, ok
}

// CycleForNotification resolves an intervention notification preference.
func CycleForNotification(n string) (string, bool) {
	c, ok := cycleByNotification[n]
	return c, ok
}

// MaintenanceControl maps to the maintenance_control table.
type MaintenanceControl struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	MachineID       uuid.UUID  `db:"machine_id" json:"machine_id"`
	TechnicianID    *uuid.UUID `db:"technician_id" json:"technician_id,omitempty"`
	ControlType     string     `db:"control_type" json:"control_type"`
	ControlDate     time.Time  `db:"control_date" json:"control_date"`
	NextControlDate time.Time  `db:"next_control_date" json:"next_control_date"`
	Status          string     `db:"status" json:"status"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
}

// MaintenanceSchedule maps to the maintenance_schedule table.
type MaintenanceSchedule struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MachineID   uuid.UUID  `db:"machine_id" json:"machine_id"`
	Type        string     `db:"type" json:"type"`
	Tasks       []string   `db:"tasks" json:"tasks"`
	DueDate     time.Time  `db:"due_date" json:"due_date"`
	Status      string     `db:"status" json:"status"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
