package invoice

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Invoice maps to the invoice table. Billing records carried for the patient
// dashboards; no behavior hangs off them.
type Invoice struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Number    string     `db:"number" json:"number"`
	Amount    float64    `db:"amount" json:"amount"`
	Currency  string     `db:"currency" json:"currency"`
	Status    string     `db:"status" json:"status"`
	IssuedAt  time.Time  `db:"issued_at" json:"issued_at"`
	DueAt     *time.Time `db:"due_at" json:"due_at,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
}
