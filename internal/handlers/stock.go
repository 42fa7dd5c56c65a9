package handlers

import (
	"net/http"
	"strconv"

	"github.com/sharpstore/pos-backend/internal/httpx"
)

// CheckStock: GET /stock/check?product_id=&quantity=
// Front-end convenience before "add to cart"; never authoritative, the commit
// transaction re-checks with its conditional decrement.
func (h *InvoiceHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil || pid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_product_id", nil)
		return
	}
	qty := 1
	if v := r.URL.Query().Get("quantity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			qty = n
		}
	}
	ok, err := h.Svc.CheckStock(r.Context(), uint(pid), qty)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": pid, "quantity": qty, "available": ok})
}
