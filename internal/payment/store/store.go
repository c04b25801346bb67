package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
)

type Store struct {
	db *sql.DB
	// defaultCreditLimit applies to patients without a wallets row. It
	// must match the default the wallet service advertises, or the
	// fail-fast check and the in-lock check disagree.
	defaultCreditLimit int64
}

func New(db *sql.DB, defaultCreditLimit int64) *Store {
	return &Store{db: db, defaultCreditLimit: defaultCreditLimit}
}

type paymentTx struct {
	tx                 *sql.Tx
	defaultCreditLimit int64
}

// Begin opens a transaction and takes an advisory lock per key.
// Keys are locked in sorted order so that two operations touching the
// same pair of locks cannot deadlock each other.
func (s *Store) Begin(ctx context.Context, keys ...payment.LockKey) (payment.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}

	slices.Sort(keys)

	for _, key := range keys {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", int64(key)); err != nil {
			dbTx.Rollback()
			return nil, fmt.Errorf("acquiring payment lock: %w", err)
		}
	}

	return &paymentTx{tx: dbTx, defaultCreditLimit: s.defaultCreditLimit}, nil
}

func (ptx *paymentTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *paymentTx) Rollback() error { return ptx.tx.Rollback() }

func (ptx *paymentTx) FindByReference(ctx context.Context, reference string) (*ledger.Entry, error) {
	query := `
		SELECT id, invoice_id, patient_id, type, method, status, amount,
			description, reference, bank, cashier_name, fail_reason, created_at
		FROM ledger_entries
		WHERE reference = $1
	`

	var (
		e           ledger.Entry
		invoiceID   *uuid.UUID
		bank        sql.NullString
		cashierName sql.NullString
		failReason  sql.NullString
	)

	err := ptx.tx.QueryRowContext(ctx, query, reference).Scan(
		&e.ID, &invoiceID, &e.PatientID, &e.Type, &e.Method, &e.Status,
		&e.Amount, &e.Description, &e.Reference, &bank, &cashierName,
		&failReason, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("finding entry by reference: %w", err)
	}

	e.InvoiceID = invoiceID
	e.Bank = bank.String
	e.CashierName = cashierName.String
	e.FailReason = failReason.String

	return &e, nil
}

func (ptx *paymentTx) PaidSoFar(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE type
				WHEN $1 THEN amount
				WHEN $2 THEN -amount
				ELSE 0
			END
		), 0)
		FROM ledger_entries
		WHERE invoice_id = $3 AND status = $4
	`

	var paid int64

	err := ptx.tx.QueryRowContext(ctx, query,
		ledger.TypePayment, ledger.TypeRefund, invoiceID, ledger.StatusCompleted,
	).Scan(&paid)
	if err != nil {
		return 0, fmt.Errorf("summing payments: %w", err)
	}

	return paid, nil
}

func (ptx *paymentTx) WalletBalance(ctx context.Context, patientID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN type IN ($1, $2) THEN amount
				WHEN type = $3 AND method = $4 THEN -amount
				ELSE 0
			END
		), 0)
		FROM ledger_entries
		WHERE patient_id = $5 AND status = $6
	`

	var balance int64

	err := ptx.tx.QueryRowContext(ctx, query,
		ledger.TypeTopup, ledger.TypeRefund, ledger.TypePayment,
		ledger.MethodWallet, patientID, ledger.StatusCompleted,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("summing wallet balance: %w", err)
	}

	return balance, nil
}

func (ptx *paymentTx) CreditLimit(ctx context.Context, patientID string) (int64, error) {
	query := `SELECT credit_limit FROM wallets WHERE patient_id = $1`

	var limit int64

	err := ptx.tx.QueryRowContext(ctx, query, patientID).Scan(&limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ptx.defaultCreditLimit, nil
		}

		return 0, fmt.Errorf("reading credit limit: %w", err)
	}

	return limit, nil
}

func (ptx *paymentTx) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (
			id, invoice_id, patient_id, type, method, status, amount,
			description, reference, bank, cashier_name, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12)
		RETURNING id, created_at
	`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := ptx.tx.QueryRowContext(ctx, query,
		e.ID, e.InvoiceID, e.PatientID, e.Type, e.Method, e.Status,
		e.Amount, e.Description, e.Reference, e.Bank, e.CashierName, createdAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}

	return nil
}

// SetInvoiceStatus refuses to touch cancelled invoices: a cancellation
// that committed after the processor's pre-check must fail the whole
// transaction, not be overwritten.
func (ptx *paymentTx) SetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status invoice.Status, method ledger.Method) error {
	query := `
		UPDATE invoices
		SET status = $1, payment_method = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3 AND status <> $4
	`

	result, err := ptx.tx.ExecContext(ctx, query, status, method, invoiceID, invoice.StatusCancelled)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking invoice update: %w", err)
	}

	if rows == 0 {
		var current invoice.Status

		err := ptx.tx.QueryRowContext(ctx, `SELECT status FROM invoices WHERE id = $1`, invoiceID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("checking invoice state: %w", err)
		}

		return fmt.Errorf("%w: invoice is %s", invoice.ErrInvalidState, current)
	}

	return nil
}
