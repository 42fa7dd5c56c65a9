package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/sharpstore/pos-backend/internal/httpx"
	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductHandler is the admin CRUD surface over the catalog. Stock counters
// still belong to the invoice/return pipelines; this handler only touches
// them through explicit admin edits.
type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

var searchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

// List: GET /products?limit=&page=&q=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	dbq := h.DB.Model(&models.Product{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ?", like)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Order("id desc").Limit(pageSize).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": pageSize, "offset": offset})
}

type productReq struct {
	Name      string          `json:"name" validate:"required,max=255"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.UnitPrice.Sign() <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"unit_price": "gt=0"})
		return
	}
	p := models.Product{Name: req.Name, UnitPrice: req.UnitPrice.Round(2), QuantityOnHand: req.Quantity}
	if err := h.DB.Create(&p).Error; err != nil {
		if isUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "duplicate_name", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST /products/update?id= – partial update of name/price/quantity.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var req struct {
		Name      *string          `json:"name"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
		Quantity  *int             `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.Sign() <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"unit_price": "gt=0"})
			return
		}
		updates["unit_price"] = req.UnitPrice.Round(2)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"quantity": "gte=0"})
			return
		}
		updates["quantity_on_hand"] = *req.Quantity
	}
	if len(updates) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "nothing_to_update", nil)
		return
	}
	if err := h.DB.Model(&p).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "duplicate_name", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	// reload so the response reflects exactly what was stored
	if err := h.DB.First(&p, p.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST /products/delete?id= – refused while any invoice or return
// item references the product, so historical documents keep a valid FK.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.InvoiceItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if refs == 0 {
		if err := h.DB.Model(&models.ReturnItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
			return
		}
	}
	if refs > 0 {
		httpx.JSONError(w, http.StatusConflict, "product_referenced", map[string]any{"references": refs})
		return
	}
	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
