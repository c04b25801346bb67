package invoice

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, method ledger.Method) error
	CancelInvoice(ctx context.Context, id uuid.UUID) error
}

// EntryReader is the slice of the ledger the invoice store needs for
// status recomputation.
type EntryReader interface {
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*ledger.Entry, error)
}

type Service struct {
	repo    Repository
	entries EntryReader
	now     func() time.Time
}

func NewService(repo Repository, entries EntryReader) *Service {
	return &Service{
		repo:    repo,
		entries: entries,
		now:     time.Now,
	}
}

type CreateParams struct {
	PatientID   string
	PatientName string
	Items       []Item
	DueDate     time.Time
}

type ListFilter struct {
	PatientID *string
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// Create validates the items, fixes the total as their sum and persists
// a new pending invoice. The total is immutable afterwards.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if len(params.Items) == 0 {
		return nil, ErrNoItems
	}

	var amount int64

	for _, item := range params.Items {
		if item.Amount <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItemAmount, item.Description)
		}

		amount += item.Amount
	}

	inv := &Invoice{
		Number:      newInvoiceNumber(s.now()),
		PatientID:   params.PatientID,
		PatientName: params.PatientName,
		Amount:      amount,
		Items:       params.Items,
		DueDate:     params.DueDate,
		Status:      StatusPending,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// Cancel terminates an invoice that has never received a completed
// payment. The repository performs the check and the update as one
// conditional write, so a payment racing the cancellation cannot slip
// through.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.CancelInvoice(ctx, id)
}

// Recompute re-derives the invoice status from its ledger entries.
// The payment processor keeps status current inside its own
// transactions; this is the idempotent repair path for invoices whose
// ledger was corrected out of band. Cancelled invoices are terminal
// and never recomputed.
func (s *Service) Recompute(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.Status == StatusCancelled {
		return inv, nil
	}

	entries, err := s.entries.ListByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading entries for invoice %s: %w", inv.Number, err)
	}

	status := StatusFor(ledger.PaidSoFar(entries), inv.Amount)

	var method ledger.Method
	if status == StatusPaid {
		method = lastCompletingMethod(entries)
	}

	if status == inv.Status && method == inv.PaymentMethod {
		return inv, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status, method); err != nil {
		return nil, err
	}

	inv.Status = status
	inv.PaymentMethod = method

	return inv, nil
}

// lastCompletingMethod returns the method of the most recent completed
// payment. Entries arrive ordered by creation time.
func lastCompletingMethod(entries []*ledger.Entry) ledger.Method {
	var method ledger.Method

	for _, e := range entries {
		if e.Type == ledger.TypePayment && e.Status == ledger.StatusCompleted {
			method = e.Method
		}
	}

	return method
}

// newInvoiceNumber mirrors the billing desk's existing numbering:
// INV-<year>-<4 digits>.
func newInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%04d", now.Year(), 1000+rand.Intn(9000))
}
