package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sharpstore/pos-backend/internal/httpx"
	"github.com/sharpstore/pos-backend/internal/services"

	"github.com/shopspring/decimal"
)

// InvoiceHandler exposes the commit pipeline and the invoice read facade.
type InvoiceHandler struct {
	Svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

type commitItemReq struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type commitReq struct {
	Items         []commitItemReq `json:"items" validate:"required,min=1,dive"`
	DiscountType  string          `json:"discount_type" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	CustomerName  string          `json:"customer_name" validate:"max=255"`
	CustomerPhone string          `json:"customer_phone" validate:"max=50"`
}

// Commit: POST /invoices – the only mutating entry point of the sale flow.
func (h *InvoiceHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req commitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	lines := make([]services.CartLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = services.CartLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	result, err := h.Svc.Commit(r.Context(), services.CommitRequest{
		Lines:         lines,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

// List: GET /invoices?limit=&page=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	invs, total, err := h.Svc.ListInvoices(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /invoices/get?id=
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.Svc.GetInvoice(r.Context(), uint(id))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
