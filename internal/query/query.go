// Package query provides side-effect-free projections over invoices
// and ledger entries. Filters operate on copies of the input slices
// and never mutate the underlying stores.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

type SortKey string

const (
	SortByDueDate     SortKey = "dueDate"
	SortByAmount      SortKey = "amount"
	SortByPatientName SortKey = "patientName"
	SortByStatus      SortKey = "status"
	SortByCreatedDate SortKey = "createdDate"
)

type InvoiceFilter struct {
	// Status matches against the effective status, so filtering on
	// overdue includes pending and partial invoices past their due date.
	Status    *invoice.Status
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *int64
	MaxAmount *int64
	// Search matches invoice number, patient name, or patient id,
	// case-insensitive substring.
	Search string
	SortBy SortKey
}

// FilterInvoices applies the filter and returns a new ordered slice.
// Ordering is deterministic: ties on the sort key fall back to id.
func FilterInvoices(invoices []*invoice.Invoice, f InvoiceFilter, now time.Time) []*invoice.Invoice {
	out := make([]*invoice.Invoice, 0, len(invoices))

	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, inv := range invoices {
		if f.Status != nil && inv.EffectiveStatus(now) != *f.Status {
			continue
		}

		if f.StartDate != nil && inv.CreatedAt.Before(*f.StartDate) {
			continue
		}

		if f.EndDate != nil && inv.CreatedAt.After(*f.EndDate) {
			continue
		}

		if f.MinAmount != nil && inv.Amount < *f.MinAmount {
			continue
		}

		if f.MaxAmount != nil && inv.Amount > *f.MaxAmount {
			continue
		}

		if search != "" && !matchesSearch(inv, search) {
			continue
		}

		out = append(out, inv)
	}

	sortInvoices(out, f.SortBy, now)

	return out
}

func matchesSearch(inv *invoice.Invoice, search string) bool {
	return strings.Contains(strings.ToLower(inv.Number), search) ||
		strings.Contains(strings.ToLower(inv.PatientName), search) ||
		strings.Contains(strings.ToLower(inv.PatientID), search)
}

func sortInvoices(invoices []*invoice.Invoice, key SortKey, now time.Time) {
	less := func(a, b *invoice.Invoice) int {
		switch key {
		case SortByAmount:
			return compareInt64(a.Amount, b.Amount)
		case SortByPatientName:
			return strings.Compare(a.PatientName, b.PatientName)
		case SortByStatus:
			return strings.Compare(string(a.EffectiveStatus(now)), string(b.EffectiveStatus(now)))
		case SortByCreatedDate:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.DueDate.Compare(b.DueDate)
		}
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		if c := less(invoices[i], invoices[j]); c != 0 {
			return c < 0
		}

		return invoices[i].ID.String() < invoices[j].ID.String()
	})
}

type EntryFilter struct {
	Type      *ledger.Type
	Method    *ledger.Method
	Status    *ledger.Status
	StartDate *time.Time
	EndDate   *time.Time
}

// FilterEntries returns matching entries newest first, ties broken by
// id ascending.
func FilterEntries(entries []*ledger.Entry, f EntryFilter) []*ledger.Entry {
	out := make([]*ledger.Entry, 0, len(entries))

	for _, e := range entries {
		if f.Type != nil && e.Type != *f.Type {
			continue
		}

		if f.Method != nil && e.Method != *f.Method {
			continue
		}

		if f.Status != nil && e.Status != *f.Status {
			continue
		}

		if f.StartDate != nil && e.CreatedAt.Before(*f.StartDate) {
			continue
		}

		if f.EndDate != nil && e.CreatedAt.After(*f.EndDate) {
			continue
		}

		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
