package statement

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chinedu-obi/medibill/internal/importer"
	"github.com/chinedu-obi/medibill/internal/reconcile"
)

type Handler struct {
	importSvc    *importer.Service
	reconcileSvc *reconcile.Service
}

func NewHandler(importSvc *importer.Service, reconcileSvc *reconcile.Service) *Handler {
	return &Handler{importSvc: importSvc, reconcileSvc: reconcileSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/reconcile", h.reconcileStatement)
}

type lineResponse struct {
	Date        time.Time           `json:"date"`
	Description string              `json:"description"`
	Reference   string              `json:"reference"`
	Amount      int64               `json:"amount"`
	Direction   reconcile.Direction `json:"direction"`
}

type matchResponse struct {
	Line    lineResponse          `json:"line"`
	EntryID *uuid.UUID            `json:"entry_id,omitempty"`
	Status  reconcile.MatchStatus `json:"status"`
}

type reportResponse struct {
	Matches        []matchResponse `json:"matches"`
	UnrecordedIDs  []uuid.UUID     `json:"unrecorded_entry_ids"`
	MatchedCount   int             `json:"matched"`
	MismatchCount  int             `json:"amount_mismatches"`
	UnmatchedCount int             `json:"unmatched"`
}

func (h *Handler) reconcileStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		http.Error(w, "bank field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	lines, err := h.importSvc.Import(bank, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reconcileSvc.Reconcile(r.Context(), lines)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toReportResponse(report)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toReportResponse(report *reconcile.Report) reportResponse {
	resp := reportResponse{
		Matches:        make([]matchResponse, 0, len(report.Matches)),
		UnrecordedIDs:  make([]uuid.UUID, 0, len(report.UnrecordedEntries)),
		MatchedCount:   report.MatchedCount,
		MismatchCount:  report.MismatchCount,
		UnmatchedCount: report.UnmatchedCount,
	}

	for _, m := range report.Matches {
		match := matchResponse{
			Line: lineResponse{
				Date:        m.Line.Date,
				Description: m.Line.Description,
				Reference:   m.Line.Reference,
				Amount:      m.Line.Amount,
				Direction:   m.Line.Direction,
			},
			Status: m.Status,
		}

		if m.Entry != nil {
			match.EntryID = &m.Entry.ID
		}

		resp.Matches = append(resp.Matches, match)
	}

	for _, e := range report.UnrecordedEntries {
		resp.UnrecordedIDs = append(resp.UnrecordedIDs, e.ID)
	}

	return resp
}
