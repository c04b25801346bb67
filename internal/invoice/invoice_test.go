package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chinedu-obi/medibill/internal/invoice"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		paid   int64
		amount int64
		want   invoice.Status
	}{
		{"Unpaid", 0, 20000, invoice.StatusPending},
		{"RefundedBelowZero", -5000, 20000, invoice.StatusPending},
		{"Partial", 12000, 20000, invoice.StatusPartial},
		{"Exact", 20000, 20000, invoice.StatusPaid},
		{"OverpaidStaysPaid", 25000, 20000, invoice.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.StatusFor(tt.paid, tt.amount))
		})
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -3)
	futureDue := now.AddDate(0, 0, 3)

	tests := []struct {
		name    string
		status  invoice.Status
		dueDate time.Time
		want    invoice.Status
	}{
		{"PendingBeforeDue", invoice.StatusPending, futureDue, invoice.StatusPending},
		{"PendingPastDue", invoice.StatusPending, pastDue, invoice.StatusOverdue},
		{"PartialPastDue", invoice.StatusPartial, pastDue, invoice.StatusOverdue},
		{"PaidPastDue", invoice.StatusPaid, pastDue, invoice.StatusPaid},
		{"CancelledPastDue", invoice.StatusCancelled, pastDue, invoice.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &invoice.Invoice{Status: tt.status, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, inv.EffectiveStatus(now))
		})
	}
}
