package handlers

import (
	"net/http"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/services"
)

// HistoryHandler lists recent chat prompts. Access control is applied by the
// router.
type HistoryHandler struct {
	logs *services.QueryLogService
}

func NewHistoryHandler(logs *services.QueryLogService) *HistoryHandler {
	return &HistoryHandler{logs: logs}
}

// GET /chat-history?limit=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), services.DefaultHistoryLimit)
	rows, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		serverError(w, r, "Failed to load chat history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
