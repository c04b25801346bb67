package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/wallet"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetAccount(ctx context.Context, patientID string) (*wallet.Account, error) {
	query := `
		SELECT patient_id, balance, credit_limit, updated_at
		FROM wallets
		WHERE patient_id = $1
	`

	var account wallet.Account

	err := s.db.QueryRowContext(ctx, query, patientID).Scan(
		&account.PatientID, &account.Balance, &account.CreditLimit, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, wallet.ErrNotFound
		}

		return nil, fmt.Errorf("getting wallet account: %w", err)
	}

	return &account, nil
}

// ComputeBalance derives the balance straight from the ledger:
// top-ups and refunds credit, wallet-method payments debit. Only
// completed entries count.
func (s *Store) ComputeBalance(ctx context.Context, patientID string) (int64, error) {
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

	err := s.db.QueryRowContext(ctx, query,
		ledger.TypeTopup, ledger.TypeRefund,
		ledger.TypePayment, ledger.MethodWallet,
		patientID, ledger.StatusCompleted,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("computing wallet balance: %w", err)
	}

	return balance, nil
}

func (s *Store) ReconcileBalance(ctx context.Context, patientID string, balance int64) error {
	query := `
		INSERT INTO wallets (patient_id, balance, credit_limit, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (patient_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, patientID, balance); err != nil {
		return fmt.Errorf("reconciling wallet balance: %w", err)
	}

	return nil
}

func (s *Store) SetCreditLimit(ctx context.Context, patientID string, limit int64) error {
	query := `
		INSERT INTO wallets (patient_id, balance, credit_limit, updated_at)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (patient_id) DO UPDATE SET credit_limit = EXCLUDED.credit_limit, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, patientID, limit); err != nil {
		return fmt.Errorf("setting credit limit: %w", err)
	}

	return nil
}
