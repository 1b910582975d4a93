package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type ledgerResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SheetURL    string    `json:"sheet_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(l *ledger.Ledger) ledgerResponse {
	resp := ledgerResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
	}

	if l.IsComplete() {
		resp.SheetURL = sheet.URL(*l.SheetRef)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ledgers, err := h.svc.FindByOwner(r.Context(), user.ID)
	if err != nil {
		slog.Error("listing ledgers", "user", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]ledgerResponse, len(ledgers))
	for i, l := range ledgers {
		resp[i] = toResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
