package wallet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/http/auth"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
	"github.com/chinedu-obi/medibill/internal/wallet"
)

type Handler struct {
	svc      *wallet.Service
	payments *payment.Service
	entries  *ledger.Service
}

func NewHandler(svc *wallet.Service, payments *payment.Service, entries *ledger.Service) *Handler {
	return &Handler{svc: svc, payments: payments, entries: entries}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{patientID}", h.get)
	r.Get("/{patientID}/entries", h.listEntries)
	r.Post("/{patientID}/topups", h.topup)
	r.Put("/{patientID}/credit-limit", h.setCreditLimit)
}

type accountResponse struct {
	PatientID   string    `json:"patient_id"`
	Balance     int64     `json:"balance"`
	CreditLimit int64     `json:"credit_limit"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Account(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := accountResponse{
		PatientID:   account.PatientID,
		Balance:     account.Balance,
		CreditLimit: account.CreditLimit,
		UpdatedAt:   account.UpdatedAt,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(ledger.Type(s))
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

	entries, err := h.entries.ListByPatient(r.Context(), chi.URLParam(r, "patientID"), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type topupRequest struct {
	Amount    int64         `json:"amount"`
	Method    ledger.Method `json:"method"`
	Bank      string        `json:"bank,omitempty"`
	Reference string        `json:"reference,omitempty"`
}

func (h *Handler) topup(w http.ResponseWriter, r *http.Request) {
	var req topupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.payments.ProcessTopup(r.Context(), chi.URLParam(r, "patientID"), req.Amount, req.Method, payment.Details{
		Bank:        req.Bank,
		Reference:   req.Reference,
		CashierName: auth.CashierName(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateReference):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, payment.ErrMissingBankDetail),
			errors.Is(err, payment.ErrUnsupportedMethod):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

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

type creditLimitRequest struct {
	CreditLimit int64 `json:"credit_limit"`
}

func (h *Handler) setCreditLimit(w http.ResponseWriter, r *http.Request) {
	var req creditLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.SetCreditLimit(r.Context(), chi.URLParam(r, "patientID"), req.CreditLimit); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type entryResponse struct {
	ID          uuid.UUID     `json:"id"`
	InvoiceID   *uuid.UUID    `json:"invoice_id,omitempty"`
	Type        ledger.Type   `json:"type"`
	Method      ledger.Method `json:"method"`
	Status      ledger.Status `json:"status"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toEntryResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:          e.ID,
			InvoiceID:   e.InvoiceID,
			Type:        e.Type,
			Method:      e.Method,
			Status:      e.Status,
			Amount:      e.Amount,
			Description: e.Description,
			Reference:   e.Reference,
			CreatedAt:   e.CreatedAt,
		}
	}

	return resp
}

type receiptResponse struct {
	EntryID     uuid.UUID     `json:"entry_id"`
	PatientID   string        `json:"patient_id"`
	Type        ledger.Type   `json:"type"`
	Method      ledger.Method `json:"method"`
	Amount      int64         `json:"amount"`
	Reference   string        `json:"reference"`
	CashierName string        `json:"cashier_name,omitempty"`
	ProcessedAt time.Time     `json:"processed_at"`
	Duplicate   bool          `json:"duplicate"`
}

func toReceiptResponse(receipt *payment.Receipt) receiptResponse {
	return receiptResponse{
		EntryID:     receipt.EntryID,
		PatientID:   receipt.PatientID,
		Type:        receipt.Type,
		Method:      receipt.Method,
		Amount:      receipt.Amount,
		Reference:   receipt.Reference,
		CashierName: receipt.CashierName,
		ProcessedAt: receipt.ProcessedAt,
		Duplicate:   receipt.Duplicate,
	}
}
