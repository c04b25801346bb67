package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Repository interface {
	GetAccount(ctx context.Context, patientID string) (*Account, error)
	// ComputeBalance derives the balance from completed ledger entries.
	ComputeBalance(ctx context.Context, patientID string) (int64, error)
	ReconcileBalance(ctx context.Context, patientID string, balance int64) error
	SetCreditLimit(ctx context.Context, patientID string, limit int64) error
}

type Service struct {
	repo Repository
	// defaultCreditLimit applies to patients who never had their wallet
	// configured by staff.
	defaultCreditLimit int64
	now                func() time.Time
}

func NewService(repo Repository, defaultCreditLimit int64) *Service {
	return &Service{
		repo:               repo,
		defaultCreditLimit: defaultCreditLimit,
		now:                time.Now,
	}
}

// Balance recomputes the patient's balance from the ledger. The cached
// value is never trusted: if it drifted, it is reconciled and the drift
// logged.
func (s *Service) Balance(ctx context.Context, patientID string) (int64, error) {
	balance, err := s.repo.ComputeBalance(ctx, patientID)
	if err != nil {
		return 0, fmt.Errorf("computing balance: %w", err)
	}

	account, err := s.repo.GetAccount(ctx, patientID)
	if err != nil && err != ErrNotFound {
		return 0, err
	}

	if account == nil || account.Balance != balance {
		cached := int64(0)
		if account != nil {
			cached = account.Balance
		}

		if account != nil && cached != balance {
			slog.Warn("wallet balance drift detected",
				"patient_id", patientID, "cached", cached, "ledger", balance)
		}

		if err := s.repo.ReconcileBalance(ctx, patientID, balance); err != nil {
			return 0, fmt.Errorf("reconciling balance: %w", err)
		}
	}

	return balance, nil
}

// Account returns the wallet with a freshly derived balance.
func (s *Service) Account(ctx context.Context, patientID string) (*Account, error) {
	balance, err := s.Balance(ctx, patientID)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccount(ctx, patientID)
	if err != nil {
		if err == ErrNotFound {
			return &Account{
				PatientID:   patientID,
				Balance:     balance,
				CreditLimit: s.defaultCreditLimit,
				UpdatedAt:   s.now(),
			}, nil
		}

		return nil, err
	}

	account.Balance = balance

	return account, nil
}

// AuthorizeDebit checks that debiting the amount keeps the balance
// within the credit limit. Called by the payment processor before any
// ledger write; the definitive check is repeated inside the payment
// transaction.
func (s *Service) AuthorizeDebit(ctx context.Context, patientID string, amount int64) (*Authorization, error) {
	account, err := s.Account(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if account.Balance-amount < -account.CreditLimit {
		return nil, fmt.Errorf("%w: balance %d, credit limit %d, requested %d",
			ErrInsufficientFunds, account.Balance, account.CreditLimit, amount)
	}

	return &Authorization{
		PatientID: patientID,
		Amount:    amount,
		Balance:   account.Balance,
		IssuedAt:  s.now(),
	}, nil
}

func (s *Service) SetCreditLimit(ctx context.Context, patientID string, limit int64) error {
	if limit < 0 {
		return fmt.Errorf("credit limit must not be negative, got %d", limit)
	}

	return s.repo.SetCreditLimit(ctx, patientID, limit)
}
