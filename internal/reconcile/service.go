package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

// EntryLister is the slice of the ledger the reconciler reads.
type EntryLister interface {
	List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

type Match struct {
	Line   StatementLine
	Entry  *ledger.Entry
	Status MatchStatus
}

type Report struct {
	Matches []Match
	// UnrecordedEntries are completed transfer entries in the ledger
	// with no corresponding credit on the statement.
	UnrecordedEntries []*ledger.Entry

	MatchedCount   int
	MismatchCount  int
	UnmatchedCount int
}

type Service struct {
	entries EntryLister
}

func NewService(entries EntryLister) *Service {
	return &Service{entries: entries}
}

// Reconcile matches statement credit lines against transfer entries by
// reference. Debit lines are ignored; the clinic account only receives
// transfers from patients.
func (s *Service) Reconcile(ctx context.Context, lines []StatementLine) (*Report, error) {
	method := ledger.MethodTransfer

	entries, err := s.entries.List(ctx, ledger.ListFilter{Method: &method})
	if err != nil {
		return nil, fmt.Errorf("listing transfer entries: %w", err)
	}

	// Failed transfers never moved money, so a statement credit with
	// the same reference is a discrepancy, not a match.
	byReference := make(map[string]*ledger.Entry, len(entries))
	for _, e := range entries {
		if e.Status == ledger.StatusFailed {
			continue
		}

		byReference[normalizeReference(e.Reference)] = e
	}

	seen := make(map[string]bool)
	report := &Report{}

	for _, line := range lines {
		if line.Direction != DirectionCredit {
			continue
		}

		entry, ok := byReference[normalizeReference(line.Reference)]
		if !ok {
			report.Matches = append(report.Matches, Match{Line: line, Status: StatusUnmatched})
			report.UnmatchedCount++

			continue
		}

		seen[normalizeReference(line.Reference)] = true

		if entry.Amount != line.Amount {
			report.Matches = append(report.Matches, Match{Line: line, Entry: entry, Status: StatusAmountMismatch})
			report.MismatchCount++

			continue
		}

		report.Matches = append(report.Matches, Match{Line: line, Entry: entry, Status: StatusMatched})
		report.MatchedCount++
	}

	for _, e := range entries {
		if e.Status != ledger.StatusCompleted {
			continue
		}

		if !seen[normalizeReference(e.Reference)] {
			report.UnrecordedEntries = append(report.UnrecordedEntries, e)
		}
	}

	return report, nil
}

func normalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
