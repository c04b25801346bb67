package query_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/query"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func inv(number, patientName string, amount int64, status invoice.Status, due time.Time) *invoice.Invoice {
	return &invoice.Invoice{
		ID:          uuid.New(),
		Number:      number,
		PatientID:   "PT-" + number,
		PatientName: patientName,
		Amount:      amount,
		Status:      status,
		DueDate:     due,
		CreatedAt:   due.AddDate(0, 0, -14),
	}
}

func TestFilterInvoices(t *testing.T) {
	future := now.AddDate(0, 0, 7)
	past := now.AddDate(0, 0, -7)

	invoices := []*invoice.Invoice{
		inv("1001", "Ngozi Eze", 20000, invoice.StatusPending, future),
		inv("1002", "Chidi Okafor", 5000, invoice.StatusPending, past),
		inv("1003", "Amina Bello", 50000, invoice.StatusPaid, past),
		inv("1004", "Ngozi Eze", 8000, invoice.StatusPartial, future),
	}

	t.Run("ByEffectiveStatus", func(t *testing.T) {
		status := invoice.StatusOverdue
		got := query.FilterInvoices(invoices, query.InvoiceFilter{Status: &status}, now)

		// 1002 is pending past its due date.
		require.Len(t, got, 1)
		assert.Equal(t, "1002", got[0].Number)
	})

	t.Run("BySearch", func(t *testing.T) {
		got := query.FilterInvoices(invoices, query.InvoiceFilter{Search: "ngozi"}, now)
		assert.Len(t, got, 2)

		got = query.FilterInvoices(invoices, query.InvoiceFilter{Search: "1003"}, now)
		require.Len(t, got, 1)
		assert.Equal(t, "Amina Bello", got[0].PatientName)
	})

	t.Run("ByAmountRange", func(t *testing.T) {
		minAmount := int64(6000)
		maxAmount := int64(25000)
		got := query.FilterInvoices(invoices, query.InvoiceFilter{MinAmount: &minAmount, MaxAmount: &maxAmount}, now)
		assert.Len(t, got, 2)
	})

	t.Run("SortByAmount", func(t *testing.T) {
		got := query.FilterInvoices(invoices, query.InvoiceFilter{SortBy: query.SortByAmount}, now)

		require.Len(t, got, 4)
		assert.Equal(t, int64(5000), got[0].Amount)
		assert.Equal(t, int64(50000), got[3].Amount)
	})

	t.Run("EmptyResultIsNotAnError", func(t *testing.T) {
		got := query.FilterInvoices(invoices, query.InvoiceFilter{Search: "nonexistent"}, now)
		assert.Empty(t, got)

		got = query.FilterInvoices(nil, query.InvoiceFilter{}, now)
		assert.Empty(t, got)
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		before := make([]*invoice.Invoice, len(invoices))
		copy(before, invoices)

		query.FilterInvoices(invoices, query.InvoiceFilter{SortBy: query.SortByAmount}, now)

		for i := range before {
			assert.Same(t, before[i], invoices[i])
		}
	})
}

func TestFilterInvoices_DeterministicTieBreak(t *testing.T) {
	due := now.AddDate(0, 0, 7)

	a := inv("2001", "Same Day", 1000, invoice.StatusPending, due)
	b := inv("2002", "Same Day", 1000, invoice.StatusPending, due)

	first := query.FilterInvoices([]*invoice.Invoice{a, b}, query.InvoiceFilter{SortBy: query.SortByDueDate}, now)
	second := query.FilterInvoices([]*invoice.Invoice{b, a}, query.InvoiceFilter{SortBy: query.SortByDueDate}, now)

	require.Len(t, first, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestFilterEntries(t *testing.T) {
	entry := func(typ ledger.Type, method ledger.Method, at time.Time) *ledger.Entry {
		return &ledger.Entry{
			ID:        uuid.New(),
			Type:      typ,
			Method:    method,
			Status:    ledger.StatusCompleted,
			Amount:    1000,
			CreatedAt: at,
		}
	}

	entries := []*ledger.Entry{
		entry(ledger.TypePayment, ledger.MethodCash, now.AddDate(0, 0, -3)),
		entry(ledger.TypePayment, ledger.MethodTransfer, now.AddDate(0, 0, -1)),
		entry(ledger.TypeTopup, ledger.MethodCash, now.AddDate(0, 0, -2)),
	}

	t.Run("ByType", func(t *testing.T) {
		typ := ledger.TypeTopup
		got := query.FilterEntries(entries, query.EntryFilter{Type: &typ})
		assert.Len(t, got, 1)
	})

	t.Run("ByMethod", func(t *testing.T) {
		method := ledger.MethodCash
		got := query.FilterEntries(entries, query.EntryFilter{Method: &method})
		assert.Len(t, got, 2)
	})

	t.Run("ByDateRange", func(t *testing.T) {
		start := now.AddDate(0, 0, -2)
		got := query.FilterEntries(entries, query.EntryFilter{StartDate: &start})
		assert.Len(t, got, 2)
	})

	t.Run("NewestFirst", func(t *testing.T) {
		got := query.FilterEntries(entries, query.EntryFilter{})

		require.Len(t, got, 3)
		assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
		assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))
	})
}

func TestComputeStats(t *testing.T) {
	future := now.AddDate(0, 0, 7)
	past := now.AddDate(0, 0, -7)

	paid := inv("3001", "A", 20000, invoice.StatusPaid, past)
	pending := inv("3002", "B", 10000, invoice.StatusPending, future)
	overdue := inv("3003", "C", 5000, invoice.StatusPending, past)
	cancelled := inv("3004", "D", 9000, invoice.StatusCancelled, future)

	entries := []*ledger.Entry{
		{InvoiceID: &paid.ID, Type: ledger.TypePayment, Status: ledger.StatusCompleted, Amount: 20000},
		{InvoiceID: &paid.ID, Type: ledger.TypeRefund, Status: ledger.StatusCompleted, Amount: 2000},
		{Type: ledger.TypeTopup, Status: ledger.StatusCompleted, Amount: 50000},
	}

	stats := query.ComputeStats([]*invoice.Invoice{paid, pending, overdue, cancelled}, entries, now)

	assert.Equal(t, int64(35000), stats.TotalBilled)
	assert.Equal(t, int64(20000), stats.TotalCollected)
	assert.Equal(t, int64(2000), stats.TotalRefunded)
	assert.Equal(t, int64(17000), stats.TotalOutstanding)
	assert.Equal(t, 1, stats.PaidCount)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1, stats.CancelledCount)
}
