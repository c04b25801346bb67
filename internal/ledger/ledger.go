package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type represents the direction of money movement.
type Type string

const (
	TypePayment Type = "payment"
	TypeRefund  Type = "refund"
	TypeTopup   Type = "topup"
)

// Method represents how the money moved.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodWallet   Method = "wallet"
	MethodCard     Method = "card"
)

// Methods lists the accepted payment methods in desk display order.
var Methods = []Method{MethodCash, MethodTransfer, MethodWallet, MethodCard}

// Status represents the settlement state of an entry.
// Entries are terminal once the status leaves pending.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

var (
	ErrNotFound           = errors.New("ledger entry not found")
	ErrDuplicateReference = errors.New("ledger reference already used")
	ErrNotPending         = errors.New("ledger entry is not pending")
	ErrInvalidAmount      = errors.New("ledger amount must be positive")
)

// Entry is an immutable record of money movement. Amounts are stored in
// kobo; the sign is implied by Type. Corrections are issued as new
// refund entries, never edits.
type Entry struct {
	ID          uuid.UUID
	InvoiceID   *uuid.UUID // nil for top-ups and patient-level refunds
	PatientID   string
	Type        Type
	Method      Method
	Status      Status
	Amount      int64
	Description string
	Reference   string // idempotency key, globally unique
	Bank        string // set for transfer entries
	CashierName string
	FailReason  string
	CreatedAt   time.Time
}

// PaidSoFar returns completed payments minus completed refunds over the
// given entries. Callers pass the entries of a single invoice.
func PaidSoFar(entries []*Entry) int64 {
	var paid int64

	for _, e := range entries {
		if e.Status != StatusCompleted {
			continue
		}

		switch e.Type {
		case TypePayment:
			paid += e.Amount
		case TypeRefund:
			paid -= e.Amount
		}
	}

	return paid
}

// WalletBalance derives a patient's wallet balance from their completed
// entries: top-ups and refunds credit the wallet, wallet-method payments
// debit it.
func WalletBalance(entries []*Entry) int64 {
	var balance int64

	for _, e := range entries {
		if e.Status != StatusCompleted {
			continue
		}

		switch e.Type {
		case TypeTopup, TypeRefund:
			balance += e.Amount
		case TypePayment:
			if e.Method == MethodWallet {
				balance -= e.Amount
			}
		}
	}

	return balance
}
