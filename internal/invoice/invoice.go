package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

// Status represents the lifecycle state of an invoice. Only pending,
// partial, paid and cancelled are ever persisted; overdue is derived
// from the due date at read time (see EffectiveStatus).
type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidState      = errors.New("operation not permitted in current invoice state")
	ErrNoItems           = errors.New("invoice requires at least one item")
	ErrInvalidItemAmount = errors.New("invoice item amount must be positive")
)

// Item is a single billable line. Amounts are in kobo.
type Item struct {
	Description string
	Amount      int64
}

// Invoice is a billable record with a total fixed at creation.
// Status is never set directly: it is derived from the ledger entries
// referencing the invoice, except for explicit cancellation.
type Invoice struct {
	ID          uuid.UUID
	Number      string
	PatientID   string
	PatientName string
	Amount      int64
	Items       []Item
	DueDate     time.Time
	Status      Status
	// PaymentMethod records the method of the payment that completed the
	// invoice. Informational only: mixed-method invoices keep the
	// last-completing method, the ledger stays authoritative.
	PaymentMethod ledger.Method
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// EffectiveStatus applies the due-date rule lazily: an unpaid invoice
// past its due date reads as overdue without a stored transition.
func (i *Invoice) EffectiveStatus(now time.Time) Status {
	if (i.Status == StatusPending || i.Status == StatusPartial) && now.After(i.DueDate) {
		return StatusOverdue
	}

	return i.Status
}

// StatusFor derives the persisted status from how much has been paid
// against the invoice total.
func StatusFor(paidSoFar, amount int64) Status {
	switch {
	case paidSoFar <= 0:
		return StatusPending
	case paidSoFar < amount:
		return StatusPartial
	default:
		return StatusPaid
	}
}
