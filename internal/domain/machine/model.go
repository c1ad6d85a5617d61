package machine

import (
	"time"

	"github.com/google/uuid"
)

// Machine statuses.
const (
	StatusOperational  = "operational"
	StatusMaintenance  = "maintenance"
	StatusOutOfService = "out_of_service"
)

// Machine maps to the machine table. A machine is a dialysis unit tracked by
// the service; lastMaintenance and nextMaintenance are informational fields
// kept loosely in sync by maintenance completion.
type Machine struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Model           *string    `db:"model" json:"model,omitempty"`
	SerialNumber    string     `db:"serial_number" json:"serial_number"`
	Location        *string    `db:"location" json:"location,omitempty"`
	Status          string     `db:"status" json:"status"`
	LastMaintenance *time.Time `db:"last_maintenance" json:"last_maintenance,omitempty"`
	NextMaintenance *time.Time `db:"next_maintenance" json:"next_maintenance,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
