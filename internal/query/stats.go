package query

import (
	"time"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

// Stats holds the dashboard headline numbers. All figures are derived
// from the inputs on each call; nothing here is a cached counter.
type Stats struct {
	TotalBilled      int64
	TotalCollected   int64
	TotalRefunded    int64
	TotalOutstanding int64
	OverdueCount     int
	PendingCount     int
	PartialCount     int
	PaidCount        int
	CancelledCount   int
}

func ComputeStats(invoices []*invoice.Invoice, entries []*ledger.Entry, now time.Time) Stats {
	var s Stats

	for _, inv := range invoices {
		switch inv.EffectiveStatus(now) {
		case invoice.StatusOverdue:
			s.OverdueCount++
		case invoice.StatusPending:
			s.PendingCount++
		case invoice.StatusPartial:
			s.PartialCount++
		case invoice.StatusPaid:
			s.PaidCount++
		case invoice.StatusCancelled:
			s.CancelledCount++
		}

		if inv.Status != invoice.StatusCancelled {
			s.TotalBilled += inv.Amount
		}
	}

	for _, e := range entries {
		if e.Status != ledger.StatusCompleted {
			continue
		}

		switch e.Type {
		case ledger.TypePayment:
			if e.InvoiceID != nil {
				s.TotalCollected += e.Amount
			}
		case ledger.TypeRefund:
			if e.InvoiceID != nil {
				s.TotalRefunded += e.Amount
			}
		}
	}

	s.TotalOutstanding = s.TotalBilled - s.TotalCollected + s.TotalRefunded
	if s.TotalOutstanding < 0 {
		s.TotalOutstanding = 0
	}

	return s
}
