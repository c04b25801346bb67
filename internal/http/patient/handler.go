package patient

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chinedu-obi/medibill/internal/patientdir"
)

// Handler proxies directory lookups so the desk UI talks to a single
// backend.
type Handler struct {
	directory *patientdir.Client
}

func NewHandler(directory *patientdir.Client) *Handler {
	return &Handler{directory: directory}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.lookup)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	patients, err := h.directory.Lookup(r.Context(), q)
	if err != nil {
		http.Error(w, "patient directory unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(patients); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
