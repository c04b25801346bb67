package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/http/auth"
	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
	"github.com/chinedu-obi/medibill/internal/query"
	"github.com/chinedu-obi/medibill/internal/wallet"
)

type Handler struct {
	svc      *invoice.Service
	payments *payment.Service
	entries  *ledger.Service
}

func NewHandler(svc *invoice.Service, payments *payment.Service, entries *ledger.Service) *Handler {
	return &Handler{svc: svc, payments: payments, entries: entries}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/recompute", h.recompute)
	r.Get("/{id}/entries", h.listEntries)
	r.Post("/{id}/payments", h.pay)
	r.Post("/{id}/refunds", h.refund)
}

type itemRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type createInvoiceRequest struct {
	PatientID   string        `json:"patient_id"`
	PatientName string        `json:"patient_name"`
	Items       []itemRequest `json:"items"`
	DueDate     time.Time     `json:"due_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]invoice.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoice.Item{Description: item.Description, Amount: item.Amount})
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Items:       items,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if errors.Is(err, invoice.ErrNoItems) || errors.Is(err, invoice.ErrInvalidItemAmount) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(inv, time.Now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("patient_id"); s != "" {
		filter.PatientID = new(s)
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Status, search, amount range and ordering are effective-status
	// aware, so they run through the projection rather than SQL.
	projection := query.InvoiceFilter{
		Search: r.URL.Query().Get("q"),
		SortBy: query.SortKey(r.URL.Query().Get("sort")),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		projection.Status = new(invoice.Status(s))
	}

	if s := r.URL.Query().Get("min_amount"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			projection.MinAmount = new(n)
		}
	}

	if s := r.URL.Query().Get("max_amount"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			projection.MaxAmount = new(n)
		}
	}

	now := time.Now()
	invoices = query.FilterInvoices(invoices, projection, now)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(invoices, now)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(inv, time.Now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotFound):
			http.Error(w, "invoice not found", http.StatusNotFound)
		case errors.Is(err, invoice.ErrInvalidState):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recompute re-derives the invoice status from its ledger entries.
// The payment processor keeps status current on its own writes; this
// is the repair path after manual ledger corrections or a failed
// entry on an invoice.
func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Recompute(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(inv, time.Now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.entries.ListByInvoice(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type payRequest struct {
	Amount      int64         `json:"amount"`
	Method      ledger.Method `json:"method"`
	Bank        string        `json:"bank,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Description string        `json:"description,omitempty"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.payments.ProcessPayment(r.Context(), id, req.Amount, req.Method, payment.Details{
		Bank:        req.Bank,
		Reference:   req.Reference,
		Description: req.Description,
		CashierName: auth.CashierName(r.Context()),
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}

	status := http.StatusCreated
	if receipt.Duplicate {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(toReceiptResponse(receipt)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type refundRequest struct {
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.payments.ProcessRefund(r.Context(), payment.RefundParams{
		InvoiceID:   &id,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Reference:   req.Reference,
		CashierName: auth.CashierName(r.Context()),
	})
	if err != nil {
		writePaymentError(w, err)
		return
	}

	status := http.StatusCreated
	if receipt.Duplicate {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(toReceiptResponse(receipt)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, invoice.ErrInvalidState), errors.Is(err, ledger.ErrDuplicateReference):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, payment.ErrOverpayment),
		errors.Is(err, payment.ErrExcessRefund),
		errors.Is(err, payment.ErrMissingBankDetail),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, wallet.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
