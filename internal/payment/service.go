package payment

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/wallet"
)

// LockKey identifies a serialization domain: one per invoice, one per
// patient wallet. Operations on different keys proceed in parallel.
type LockKey int64

func lockKey(kind, id string) LockKey {
	h := fnv.New64a()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(id))

	return LockKey(h.Sum64())
}

func InvoiceLock(id uuid.UUID) LockKey    { return lockKey("invoice", id.String()) }
func PatientLock(patientID string) LockKey { return lockKey("patient", patientID) }

// Repository begins the atomic append workflow. The returned Tx holds
// the locks for the given keys until Commit or Rollback, so the
// validate-then-append sequence cannot interleave with a concurrent
// writer on the same invoice or wallet.
type Repository interface {
	Begin(ctx context.Context, keys ...LockKey) (Tx, error)
}

type Tx interface {
	FindByReference(ctx context.Context, reference string) (*ledger.Entry, error)
	PaidSoFar(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	WalletBalance(ctx context.Context, patientID string) (int64, error)
	CreditLimit(ctx context.Context, patientID string) (int64, error)
	InsertEntry(ctx context.Context, e *ledger.Entry) error
	SetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status invoice.Status, method ledger.Method) error
	Commit() error
	Rollback() error
}

// InvoiceReader is the slice of the invoice store the processor needs.
type InvoiceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
}

// Authorizer is the wallet's fail-fast debit pre-check.
type Authorizer interface {
	AuthorizeDebit(ctx context.Context, patientID string, amount int64) (*wallet.Authorization, error)
}

// Service is the only component that creates ledger entries. Every
// operation validates first and appends at most once; on any failure
// nothing is written.
type Service struct {
	repo     Repository
	invoices InvoiceReader
	wallets  Authorizer
	now      func() time.Time
}

func NewService(repo Repository, invoices InvoiceReader, wallets Authorizer) *Service {
	return &Service{
		repo:     repo,
		invoices: invoices,
		wallets:  wallets,
		now:      time.Now,
	}
}

// ProcessPayment settles part or all of an invoice. Partial payments
// are intentional; overpayment is rejected. The amount check and the
// ledger append run under the invoice lock, so two concurrent payments
// can never combine into an overpayment.
func (s *Service) ProcessPayment(ctx context.Context, invoiceID uuid.UUID, amount int64, method ledger.Method, d Details) (*Receipt, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Status == invoice.StatusCancelled {
		return nil, fmt.Errorf("%w: invoice %s is cancelled", invoice.ErrInvalidState, inv.Number)
	}

	if err := validateMethodDetails(method, d); err != nil {
		return nil, err
	}

	if method == ledger.MethodWallet {
		// Fail fast before taking any locks; the authoritative check
		// happens again inside the transaction.
		if _, err := s.wallets.AuthorizeDebit(ctx, inv.PatientID, amount); err != nil {
			return nil, err
		}
	}

	reference := d.Reference
	if reference == "" {
		prefix := "PAY-" + inv.Number
		if method == ledger.MethodCash {
			prefix = "CASH"
		}

		reference = newReference(prefix, s.now())
	}

	keys := []LockKey{InvoiceLock(invoiceID)}
	if method == ledger.MethodWallet {
		keys = append(keys, PatientLock(inv.PatientID))
	}

	tx, err := s.repo.Begin(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("beginning payment: %w", err)
	}
	defer tx.Rollback()

	if prior, err := s.checkReference(ctx, tx, reference); prior != nil || err != nil {
		if prior != nil {
			slog.Info("idempotent payment retry", "reference", reference, "entry_id", prior.ID)
			return receiptFor(prior, inv.Number, true), nil
		}

		return nil, err
	}

	paid, err := tx.PaidSoFar(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("reading paid total: %w", err)
	}

	if amount > inv.Amount-paid {
		return nil, fmt.Errorf("%w: %d outstanding, %d offered", ErrOverpayment, inv.Amount-paid, amount)
	}

	if method == ledger.MethodWallet {
		if err := s.checkWalletFunds(ctx, tx, inv.PatientID, amount); err != nil {
			return nil, err
		}
	}

	description := d.Description
	if description == "" {
		description = "Payment for " + inv.Number
	}

	entry := &ledger.Entry{
		InvoiceID:   &inv.ID,
		PatientID:   inv.PatientID,
		Type:        ledger.TypePayment,
		Method:      method,
		Status:      ledger.StatusCompleted,
		Amount:      amount,
		Description: description,
		Reference:   reference,
		Bank:        d.Bank,
		CashierName: d.CashierName,
	}

	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending payment entry: %w", err)
	}

	status := invoice.StatusFor(paid+amount, inv.Amount)

	var paidWith ledger.Method
	if status == invoice.StatusPaid {
		paidWith = method
	}

	if err := tx.SetInvoiceStatus(ctx, invoiceID, status, paidWith); err != nil {
		// A cancellation may have committed between the pre-check and
		// taking the lock; the rollback discards the inserted entry.
		if errors.Is(err, invoice.ErrInvalidState) {
			return nil, fmt.Errorf("%w: invoice %s is cancelled", invoice.ErrInvalidState, inv.Number)
		}

		return nil, fmt.Errorf("updating invoice status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	return receiptFor(entry, inv.Number, false), nil
}

// ProcessTopup credits a patient's wallet. Top-ups are not tied to an
// invoice and cannot themselves be funded from the wallet.
func (s *Service) ProcessTopup(ctx context.Context, patientID string, amount int64, method ledger.Method, d Details) (*Receipt, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	if method == ledger.MethodWallet {
		return nil, fmt.Errorf("%w: cannot top up a wallet from itself", ErrUnsupportedMethod)
	}

	if err := validateMethodDetails(method, d); err != nil {
		return nil, err
	}

	reference := d.Reference
	if reference == "" {
		reference = newReference("TOP", s.now())
	}

	tx, err := s.repo.Begin(ctx, PatientLock(patientID))
	if err != nil {
		return nil, fmt.Errorf("beginning top-up: %w", err)
	}
	defer tx.Rollback()

	if prior, err := s.checkReference(ctx, tx, reference); prior != nil || err != nil {
		if prior != nil {
			return receiptFor(prior, "", true), nil
		}

		return nil, err
	}

	description := d.Description
	if description == "" {
		description = "Wallet top-up"
	}

	entry := &ledger.Entry{
		PatientID:   patientID,
		Type:        ledger.TypeTopup,
		Method:      method,
		Status:      ledger.StatusCompleted,
		Amount:      amount,
		Description: description,
		Reference:   reference,
		Bank:        d.Bank,
		CashierName: d.CashierName,
	}

	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending top-up entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing top-up: %w", err)
	}

	return receiptFor(entry, "", false), nil
}

type RefundParams struct {
	// InvoiceID is nil for patient-level refunds (e.g. goodwill credits).
	InvoiceID   *uuid.UUID
	PatientID   string
	Amount      int64
	Reason      string
	Reference   string
	CashierName string
}

// ProcessRefund issues a correction as a new refund entry. Refunds
// credit the patient's wallet and, when tied to an invoice, may move
// its status back from paid or partial.
func (s *Service) ProcessRefund(ctx context.Context, params RefundParams) (*Receipt, error) {
	if params.Amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var (
		inv  *invoice.Invoice
		keys []LockKey
	)

	if params.InvoiceID != nil {
		var err error

		inv, err = s.invoices.Get(ctx, *params.InvoiceID)
		if err != nil {
			return nil, err
		}

		params.PatientID = inv.PatientID
		keys = append(keys, InvoiceLock(inv.ID))
	}

	if params.PatientID == "" {
		return nil, fmt.Errorf("%w: refund requires an invoice or a patient", ledger.ErrInvalidAmount)
	}

	keys = append(keys, PatientLock(params.PatientID))

	reference := params.Reference
	if reference == "" {
		reference = newReference("REF", s.now())
	}

	tx, err := s.repo.Begin(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("beginning refund: %w", err)
	}
	defer tx.Rollback()

	if prior, err := s.checkReference(ctx, tx, reference); prior != nil || err != nil {
		if prior != nil {
			number := ""
			if inv != nil {
				number = inv.Number
			}

			return receiptFor(prior, number, true), nil
		}

		return nil, err
	}

	var paid int64

	if inv != nil {
		paid, err = tx.PaidSoFar(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("reading paid total: %w", err)
		}

		if params.Amount > paid {
			return nil, fmt.Errorf("%w: %d paid, %d requested", ErrExcessRefund, paid, params.Amount)
		}
	}

	description := params.Reason
	if description == "" {
		description = "Refund"
	}

	entry := &ledger.Entry{
		InvoiceID:   params.InvoiceID,
		PatientID:   params.PatientID,
		Type:        ledger.TypeRefund,
		Method:      ledger.MethodWallet,
		Status:      ledger.StatusCompleted,
		Amount:      params.Amount,
		Description: description,
		Reference:   reference,
		CashierName: params.CashierName,
	}

	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending refund entry: %w", err)
	}

	if inv != nil {
		status := invoice.StatusFor(paid-params.Amount, inv.Amount)

		// A refund off a fully paid invoice clears the recorded method.
		var paidWith ledger.Method
		if status == invoice.StatusPaid {
			paidWith = inv.PaymentMethod
		}

		if err := tx.SetInvoiceStatus(ctx, inv.ID, status, paidWith); err != nil {
			return nil, fmt.Errorf("updating invoice status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing refund: %w", err)
	}

	number := ""
	if inv != nil {
		number = inv.Number
	}

	return receiptFor(entry, number, false), nil
}

// checkReference implements idempotent retry protection: a reference
// whose prior entry completed is returned as the prior result, a
// pending one is a conflict, and a failed one may be retried.
func (s *Service) checkReference(ctx context.Context, tx Tx, reference string) (*ledger.Entry, error) {
	prior, err := tx.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("checking reference: %w", err)
	}

	switch prior.Status {
	case ledger.StatusCompleted:
		return prior, nil
	case ledger.StatusFailed:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s is still pending", ledger.ErrDuplicateReference, reference)
	}
}

func (s *Service) checkWalletFunds(ctx context.Context, tx Tx, patientID string, amount int64) error {
	balance, err := tx.WalletBalance(ctx, patientID)
	if err != nil {
		return fmt.Errorf("reading wallet balance: %w", err)
	}

	limit, err := tx.CreditLimit(ctx, patientID)
	if err != nil {
		return fmt.Errorf("reading credit limit: %w", err)
	}

	if balance-amount < -limit {
		return fmt.Errorf("%w: balance %d, credit limit %d, requested %d",
			wallet.ErrInsufficientFunds, balance, limit, amount)
	}

	return nil
}

func validateMethodDetails(method ledger.Method, d Details) error {
	if method != ledger.MethodTransfer {
		return nil
	}

	if d.Bank == "" || d.Reference == "" {
		return ErrMissingBankDetail
	}

	return nil
}
