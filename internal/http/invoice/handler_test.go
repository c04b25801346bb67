package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoiceHandler "github.com/chinedu-obi/medibill/internal/http/invoice"
	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

type fakeRepo struct {
	invoices map[uuid.UUID]*invoice.Invoice
}

func (f *fakeRepo) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	inv.ID = uuid.New()
	f.invoices[inv.ID] = inv

	return nil
}

func (f *fakeRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	clone := *inv

	return &clone, nil
}

func (f *fakeRepo) ListInvoices(_ context.Context, _ invoice.ListFilter) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	for _, inv := range f.invoices {
		out = append(out, inv)
	}

	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status invoice.Status, method ledger.Method) error {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.ErrNotFound
	}

	inv.Status = status
	inv.PaymentMethod = method

	return nil
}

func (f *fakeRepo) CancelInvoice(_ context.Context, id uuid.UUID) error {
	inv, ok := f.invoices[id]
	if !ok {
		return invoice.ErrNotFound
	}

	inv.Status = invoice.StatusCancelled

	return nil
}

type fakeEntryReader struct {
	entries map[uuid.UUID][]*ledger.Entry
}

func (f *fakeEntryReader) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]*ledger.Entry, error) {
	return f.entries[invoiceID], nil
}

func TestHandler_Recompute(t *testing.T) {
	repo := &fakeRepo{invoices: make(map[uuid.UUID]*invoice.Invoice)}
	entries := &fakeEntryReader{entries: make(map[uuid.UUID][]*ledger.Entry)}

	// The stored status says paid, but a refund has since landed in the
	// ledger; recompute must bring the row back in line.
	inv := &invoice.Invoice{
		ID:            uuid.New(),
		Number:        "INV-2026-1000",
		PatientID:     "PT-001",
		Amount:        20000,
		DueDate:       time.Now().AddDate(0, 0, 14),
		Status:        invoice.StatusPaid,
		PaymentMethod: ledger.MethodCash,
		CreatedAt:     time.Now(),
	}
	repo.invoices[inv.ID] = inv
	entries.entries[inv.ID] = []*ledger.Entry{
		{InvoiceID: &inv.ID, Type: ledger.TypePayment, Method: ledger.MethodCash, Status: ledger.StatusCompleted, Amount: 20000},
		{InvoiceID: &inv.ID, Type: ledger.TypeRefund, Method: ledger.MethodWallet, Status: ledger.StatusCompleted, Amount: 8000},
	}

	h := invoiceHandler.NewHandler(invoice.NewService(repo, entries), nil, nil)

	router := chi.NewRouter()
	h.Routes(router)

	t.Run("RealignsStatus", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/"+inv.ID.String()+"/recompute", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status        invoice.Status `json:"status"`
			PaymentMethod ledger.Method  `json:"payment_method"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, invoice.StatusPartial, resp.Status)
		assert.Empty(t, resp.PaymentMethod)
		assert.Equal(t, invoice.StatusPartial, repo.invoices[inv.ID].Status)
	})

	t.Run("UnknownInvoice", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/"+uuid.NewString()+"/recompute", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
