package ledgerentry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/fail", h.markFailed)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(ledger.Type(s))
	}

	if s := r.URL.Query().Get("method"); s != "" {
		filter.Method = new(ledger.Method(s))
	}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(ledger.Status(s))
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

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(entry)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type markFailedRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) markFailed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req markFailedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.MarkFailed(r.Context(), id, req.Reason); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, "entry not found", http.StatusNotFound)
		case errors.Is(err, ledger.ErrNotPending):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type entryResponse struct {
	ID          uuid.UUID     `json:"id"`
	InvoiceID   *uuid.UUID    `json:"invoice_id,omitempty"`
	PatientID   string        `json:"patient_id"`
	Type        ledger.Type   `json:"type"`
	Method      ledger.Method `json:"method"`
	Status      ledger.Status `json:"status"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"`
	Bank        string        `json:"bank,omitempty"`
	CashierName string        `json:"cashier_name,omitempty"`
	FailReason  string        `json:"fail_reason,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		InvoiceID:   e.InvoiceID,
		PatientID:   e.PatientID,
		Type:        e.Type,
		Method:      e.Method,
		Status:      e.Status,
		Amount:      e.Amount,
		Description: e.Description,
		Reference:   e.Reference,
		Bank:        e.Bank,
		CashierName: e.CashierName,
		FailReason:  e.FailReason,
		CreatedAt:   e.CreatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}
