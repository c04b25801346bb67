package invoice_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

type fakeRepo struct {
	invoices map[uuid.UUID]*invoice.Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: make(map[uuid.UUID]*invoice.Invoice)}
}

func (r *fakeRepo) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	r.invoices[inv.ID] = inv

	return nil
}

func (r *fakeRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	clone := *inv

	return &clone, nil
}

func (r *fakeRepo) ListInvoices(_ context.Context, _ invoice.ListFilter) ([]*invoice.Invoice, error) {
	out := make([]*invoice.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}

	return out, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status invoice.Status, method ledger.Method) error {
	inv, ok := r.invoices[id]
	if !ok {
		return invoice.ErrNotFound
	}

	inv.Status = status
	inv.PaymentMethod = method

	return nil
}

func (r *fakeRepo) CancelInvoice(_ context.Context, id uuid.UUID) error {
	inv, ok := r.invoices[id]
	if !ok {
		return invoice.ErrNotFound
	}

	if inv.Status == invoice.StatusPaid || inv.Status == invoice.StatusCancelled {
		return invoice.ErrInvalidState
	}

	inv.Status = invoice.StatusCancelled

	return nil
}

type fakeEntryReader struct {
	entries map[uuid.UUID][]*ledger.Entry
}

func (r *fakeEntryReader) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]*ledger.Entry, error) {
	return r.entries[invoiceID], nil
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := invoice.NewService(repo, &fakeEntryReader{})
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		inv, err := svc.Create(ctx, invoice.CreateParams{
			PatientID:   "PT-001",
			PatientName: "Ngozi Eze",
			Items: []invoice.Item{
				{Description: "Consultation", Amount: 15000},
				{Description: "Lab tests", Amount: 5000},
			},
			DueDate: time.Now().AddDate(0, 0, 14),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20000), inv.Amount)
		assert.Equal(t, invoice.StatusPending, inv.Status)
		assert.True(t, strings.HasPrefix(inv.Number, "INV-"), "number %q", inv.Number)
		assert.NotEqual(t, uuid.Nil, inv.ID)
	})

	t.Run("NoItems", func(t *testing.T) {
		_, err := svc.Create(ctx, invoice.CreateParams{PatientID: "PT-001"})
		assert.ErrorIs(t, err, invoice.ErrNoItems)
	})

	t.Run("NonPositiveItemAmount", func(t *testing.T) {
		_, err := svc.Create(ctx, invoice.CreateParams{
			PatientID: "PT-001",
			Items:     []invoice.Item{{Description: "Consultation", Amount: 0}},
		})
		assert.ErrorIs(t, err, invoice.ErrInvalidItemAmount)
	})
}

func TestService_Cancel(t *testing.T) {
	repo := newFakeRepo()
	svc := invoice.NewService(repo, &fakeEntryReader{})
	ctx := context.Background()

	inv, err := svc.Create(ctx, invoice.CreateParams{
		PatientID: "PT-001",
		Items:     []invoice.Item{{Description: "Consultation", Amount: 5000}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, inv.ID))
	assert.Equal(t, invoice.StatusCancelled, repo.invoices[inv.ID].Status)

	assert.ErrorIs(t, svc.Cancel(ctx, inv.ID), invoice.ErrInvalidState)
	assert.ErrorIs(t, svc.Cancel(ctx, uuid.New()), invoice.ErrNotFound)
}

func TestService_Recompute(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*invoice.Service, *fakeRepo, *fakeEntryReader, *invoice.Invoice) {
		t.Helper()

		repo := newFakeRepo()
		entries := &fakeEntryReader{entries: make(map[uuid.UUID][]*ledger.Entry)}
		svc := invoice.NewService(repo, entries)

		inv, err := svc.Create(ctx, invoice.CreateParams{
			PatientID: "PT-001",
			Items:     []invoice.Item{{Description: "Surgery", Amount: 20000}},
		})
		require.NoError(t, err)

		return svc, repo, entries, inv
	}

	entry := func(invID uuid.UUID, typ ledger.Type, method ledger.Method, amount int64) *ledger.Entry {
		return &ledger.Entry{
			ID:        uuid.New(),
			InvoiceID: &invID,
			PatientID: "PT-001",
			Type:      typ,
			Method:    method,
			Status:    ledger.StatusCompleted,
			Amount:    amount,
			CreatedAt: time.Now(),
		}
	}

	t.Run("PartialPayment", func(t *testing.T) {
		svc, _, entries, inv := setup(t)
		entries.entries[inv.ID] = []*ledger.Entry{
			entry(inv.ID, ledger.TypePayment, ledger.MethodCash, 12000),
		}

		got, err := svc.Recompute(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPartial, got.Status)
		assert.Equal(t, ledger.Method(""), got.PaymentMethod)
	})

	t.Run("PaidRecordsLastCompletingMethod", func(t *testing.T) {
		svc, _, entries, inv := setup(t)
		entries.entries[inv.ID] = []*ledger.Entry{
			entry(inv.ID, ledger.TypePayment, ledger.MethodCash, 12000),
			entry(inv.ID, ledger.TypePayment, ledger.MethodTransfer, 8000),
		}

		got, err := svc.Recompute(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, got.Status)
		assert.Equal(t, ledger.MethodTransfer, got.PaymentMethod)
	})

	t.Run("RefundRevertsToPending", func(t *testing.T) {
		svc, _, entries, inv := setup(t)
		entries.entries[inv.ID] = []*ledger.Entry{
			entry(inv.ID, ledger.TypePayment, ledger.MethodCash, 20000),
			entry(inv.ID, ledger.TypeRefund, ledger.MethodWallet, 20000),
		}

		got, err := svc.Recompute(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, got.Status)
		assert.Equal(t, ledger.Method(""), got.PaymentMethod)
	})

	t.Run("PendingEntriesIgnored", func(t *testing.T) {
		svc, _, entries, inv := setup(t)

		e := entry(inv.ID, ledger.TypePayment, ledger.MethodTransfer, 20000)
		e.Status = ledger.StatusPending
		entries.entries[inv.ID] = []*ledger.Entry{e}

		got, err := svc.Recompute(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, got.Status)
	})

	t.Run("CancelledIsTerminal", func(t *testing.T) {
		svc, repo, entries, inv := setup(t)
		repo.invoices[inv.ID].Status = invoice.StatusCancelled
		entries.entries[inv.ID] = []*ledger.Entry{
			entry(inv.ID, ledger.TypePayment, ledger.MethodCash, 20000),
		}

		got, err := svc.Recompute(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusCancelled, got.Status)
	})
}
