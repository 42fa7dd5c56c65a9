package handlers

import (
	"net/http"
	"strconv"

	"github.com/sharpstore/pos-backend/internal/httpx"
)

// Summary: GET /reports/summary?top=
func (h *InvoiceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	topN := 5
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			topN = n
		}
	}
	sum, err := h.Svc.SalesSummary(r.Context(), topN)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}
