package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	e.id, e.invoice_id, e.patient_id, e.type, e.method, e.status, e.amount,
	e.description, e.reference, e.bank, e.cashier_name, e.fail_reason, e.created_at
`

// scanEntry reads a ledger row and returns a populated Entry.
// Expected column order matches selectEntryColumns.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var typeStr, methodStr, statusStr string

	var invoiceID *uuid.UUID

	var bank, cashier, failReason sql.NullString

	if err := s.Scan(
		&e.ID, &invoiceID, &e.PatientID, &typeStr, &methodStr, &statusStr, &e.Amount,
		&e.Description, &e.Reference, &bank, &cashier, &failReason, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.InvoiceID = invoiceID
	e.Type = ledger.Type(typeStr)
	e.Method = ledger.Method(methodStr)
	e.Status = ledger.Status(statusStr)
	e.Bank = bank.String
	e.CashierName = cashier.String
	e.FailReason = failReason.String

	return &e, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries e WHERE e.id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting ledger entry: %w", err)
	}

	return e, nil
}

func (s *Store) FindByReference(ctx context.Context, reference string) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries e WHERE e.reference = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, reference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("finding ledger entry by reference: %w", err)
	}

	return e, nil
}

func (s *Store) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries e
		WHERE e.invoice_id = $1
		ORDER BY e.created_at ASC, e.id ASC`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing entries by invoice: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *Store) ListByPatient(ctx context.Context, patientID string, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries e WHERE e.patient_id = $1`
	args := []any{patientID}

	query, args = applyFilter(query, args, filter)
	query += " ORDER BY e.created_at DESC, e.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries by patient: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries e WHERE true`

	var args []any

	query, args = applyFilter(query, args, filter)
	query += " ORDER BY e.created_at DESC, e.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// MarkFailed is a conditional write: only pending entries may fail.
// Completed entries are append-only and never change.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE ledger_entries
		SET status = $1, fail_reason = $2
		WHERE id = $3 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, ledger.StatusFailed, reason, id, ledger.StatusPending)
	if err != nil {
		return fmt.Errorf("marking entry failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking entry failed: %w", err)
	}

	if n == 0 {
		if _, err := s.GetEntry(ctx, id); err != nil {
			return err
		}

		return ledger.ErrNotPending
	}

	return nil
}

func applyFilter(query string, args []any, filter ledger.ListFilter) (string, []any) {
	argIdx := len(args) + 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND e.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Method != nil {
		query += fmt.Sprintf(" AND e.method = $%d", argIdx)

		args = append(args, *filter.Method)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND e.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	return query, args
}

func collectEntries(rows *sql.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}
