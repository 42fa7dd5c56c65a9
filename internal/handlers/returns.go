package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sharpstore/pos-backend/internal/httpx"
	"github.com/sharpstore/pos-backend/internal/services"
)

// ReturnHandler exposes refund creation and lookup.
type ReturnHandler struct {
	Svc *services.ReturnService
}

func NewReturnHandler(svc *services.ReturnService) *ReturnHandler {
	return &ReturnHandler{Svc: svc}
}

type returnItemReq struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type returnReq struct {
	InvoiceID     uint            `json:"invoice_id" validate:"required"`
	CustomerName  string          `json:"customer_name" validate:"max=255"`
	CustomerPhone string          `json:"customer_phone" validate:"max=50"`
	Items         []returnItemReq `json:"items" validate:"required,min=1,dive"`
}

// Create: POST /returns
func (h *ReturnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req returnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	lines := make([]services.ReturnLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = services.ReturnLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	result, err := h.Svc.CreateReturn(r.Context(), services.ReturnRequest{
		InvoiceID:     req.InvoiceID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Lines:         lines,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

// List: GET /returns?limit=&page=
func (h *ReturnHandler) List(w http.ResponseWriter, r *http.Request) {
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
	rets, total, err := h.Svc.ListReturns(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rets, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /returns/get?id=
func (h *ReturnHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ret, err := h.Svc.GetReturn(r.Context(), uint(id))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ret)
}
