package wallet

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("wallet account not found")
	ErrInsufficientFunds = errors.New("insufficient wallet funds")
)

// Account is a patient's wallet. Balance is derived from the ledger;
// the stored value is only a cache that gets reconciled on read.
// CreditLimit is a policy ceiling: the balance may go negative down to
// -CreditLimit.
type Account struct {
	PatientID   string
	Balance     int64
	CreditLimit int64
	UpdatedAt   time.Time
}

// Authorization is the result of a successful debit pre-check. It is a
// fail-fast signal only: the payment processor re-verifies the balance
// under the patient lock before writing, so a stale authorization can
// never overdraw the wallet.
type Authorization struct {
	PatientID string
	Amount    int64
	Balance   int64
	IssuedAt  time.Time
}
