package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.number, i.patient_id, i.patient_name, i.amount, i.due_date,
	i.status, i.payment_method, i.created_at, i.updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var method sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.PatientID, &inv.PatientName, &inv.Amount, &inv.DueDate,
		&statusStr, &method, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.PaymentMethod = ledger.Method(method.String)

	return &inv, nil
}

// CreateInvoice inserts the invoice and its items in one database
// transaction so a partially written invoice is never visible.
func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (number, patient_id, patient_name, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.Number,
		inv.PatientID,
		inv.PatientName,
		inv.Amount,
		inv.DueDate,
		inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (invoice_id, description, amount)
		VALUES ($1, $2, $3)
	`

	for _, item := range inv.Items {
		if _, err := dbTx.ExecContext(ctx, itemQuery, inv.ID, item.Description, item.Amount); err != nil {
			return fmt.Errorf("creating invoice item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices i WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.loadItems(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) loadItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		SELECT description, amount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, inv.ID)
	if err != nil {
		return fmt.Errorf("loading invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(&item.Description, &item.Amount); err != nil {
			return fmt.Errorf("scanning invoice item: %w", err)
		}

		inv.Items = append(inv.Items, item)
	}

	return rows.Err()
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices i WHERE true`

	var args []any

	argIdx := 1

	if filter.PatientID != nil {
		query += fmt.Sprintf(" AND i.patient_id = $%d", argIdx)

		args = append(args, *filter.PatientID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND i.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND i.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY i.created_at DESC, i.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

// UpdateStatus persists a ledger-derived status. The payment method is
// only ever kept for fully paid invoices.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status, method ledger.Method) error {
	query := `
		UPDATE invoices
		SET status = $1, payment_method = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, string(method), id)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

// CancelInvoice takes the same advisory lock as the payment processor
// before its conditional write, so a cancel and a payment on one
// invoice are fully serialized: whichever acquires the lock second
// sees the other's committed entry or status.
func (s *Store) CancelInvoice(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cancel: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", int64(payment.InvoiceLock(id))); err != nil {
		return fmt.Errorf("acquiring invoice lock: %w", err)
	}

	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		  AND status NOT IN ($3, $4)
		  AND NOT EXISTS (
			SELECT 1 FROM ledger_entries e
			WHERE e.invoice_id = $2 AND e.type = $5 AND e.status = $6
		  )
	`

	res, err := dbTx.ExecContext(ctx, query,
		invoice.StatusCancelled, id,
		invoice.StatusPaid, invoice.StatusCancelled,
		ledger.TypePayment, ledger.StatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("cancelling invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancelling invoice: %w", err)
	}

	if n == 0 {
		if _, err := s.GetInvoice(ctx, id); err != nil {
			return err
		}

		return invoice.ErrInvalidState
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing cancel: %w", err)
	}

	return nil
}
