// Package reconcile matches bank statement lines against transfer
// entries in the ledger. It is read-only: discrepancies are reported,
// never corrected automatically.
package reconcile

import (
	"time"
)

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// StatementLine is one money movement from a bank statement export.
// Amount is in kobo and always positive; Direction carries the sign.
type StatementLine struct {
	Date        time.Time
	Description string
	Reference   string
	Amount      int64
	Direction   Direction
}

type MatchStatus string

const (
	// StatusMatched means the statement line and ledger entry agree on
	// reference and amount.
	StatusMatched MatchStatus = "matched"
	// StatusAmountMismatch means the reference was found but the
	// amounts differ.
	StatusAmountMismatch MatchStatus = "amount_mismatch"
	// StatusUnmatched means no completed or pending transfer entry
	// carries the line's reference.
	StatusUnmatched MatchStatus = "unmatched"
)
