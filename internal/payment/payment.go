package payment

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

var (
	ErrOverpayment       = errors.New("payment exceeds invoice balance")
	ErrExcessRefund      = errors.New("refund exceeds amount paid")
	ErrMissingBankDetail = errors.New("transfer requires bank and reference number")
	ErrUnsupportedMethod = errors.New("method not supported for this operation")
)

// Details carries the method-specific input collected at the desk.
type Details struct {
	// Bank and Reference are required for transfers; Reference doubles as
	// the idempotency key when supplied.
	Bank        string
	Reference   string
	CashierName string
	Description string
}

// Receipt is what the caller gets back after a successful operation.
// Duplicate marks an idempotent retry that returned the prior entry.
type Receipt struct {
	EntryID       uuid.UUID
	InvoiceID     *uuid.UUID
	InvoiceNumber string
	PatientID     string
	Type          ledger.Type
	Method        ledger.Method
	Amount        int64
	Reference     string
	CashierName   string
	ProcessedAt   time.Time
	Duplicate     bool
}

func receiptFor(e *ledger.Entry, invoiceNumber string, duplicate bool) *Receipt {
	return &Receipt{
		EntryID:       e.ID,
		InvoiceID:     e.InvoiceID,
		InvoiceNumber: invoiceNumber,
		PatientID:     e.PatientID,
		Type:          e.Type,
		Method:        e.Method,
		Amount:        e.Amount,
		Reference:     e.Reference,
		CashierName:   e.CashierName,
		ProcessedAt:   e.CreatedAt,
		Duplicate:     duplicate,
	}
}

// newReference generates an idempotency token for methods where the
// cashier does not supply one. Transfers always carry the bank's own
// reference instead.
func newReference(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, at.UnixMilli(), rand.Intn(1000))
}
