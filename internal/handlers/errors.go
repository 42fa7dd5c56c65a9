package handlers

import (
	"errors"
	"net/http"

	"github.com/sharpstore/pos-backend/internal/config"
	"github.com/sharpstore/pos-backend/internal/httpx"
	"github.com/sharpstore/pos-backend/internal/services"

	"github.com/go-playground/validator/v10"
)

// validate is the shared request-body validator.
var validate = validator.New()

// writeServiceError maps the service error taxonomy to stable JSON codes.
// Every failure reaches the caller as a typed response; nothing is swallowed.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound  *services.ProductNotFoundError
		stock     *services.InsufficientStockError
		qty       *services.InvalidQuantityError
		discount  *services.InvalidDiscountError
		committed *services.CommitFailedError
		exceeds   *services.ReturnExceedsInvoiceError
	)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		httpx.JSONError(w, http.StatusBadRequest, "empty_cart", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.As(err, &notFound):
		httpx.JSONError(w, http.StatusBadRequest, "product_not_found",
			map[string]any{"product_id": notFound.ProductID})
	case errors.As(err, &committed):
		// A lost stock race surfaces the inner detail; other write failures
		// stay opaque to the caller.
		if errors.As(committed.Cause, &stock) {
			httpx.JSONError(w, http.StatusConflict, "commit_failed", map[string]any{
				"reason":     "insufficient_stock",
				"product_id": stock.ProductID,
				"available":  stock.Available,
				"requested":  stock.Requested,
			})
			return
		}
		config.Logger().WithError(err).Error("invoice commit failed")
		httpx.JSONError(w, http.StatusInternalServerError, "commit_failed", nil)
	case errors.As(err, &stock):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"product_id": stock.ProductID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
	case errors.As(err, &qty):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_quantity",
			map[string]any{"product_id": qty.ProductID, "quantity": qty.Quantity})
	case errors.As(err, &discount):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_discount",
			map[string]any{"reason": discount.Reason})
	case errors.As(err, &exceeds):
		httpx.JSONError(w, http.StatusConflict, "return_exceeds_invoice", map[string]any{
			"product_id":       exceeds.ProductID,
			"invoiced":         exceeds.Invoiced,
			"already_returned": exceeds.AlreadyReturned,
			"requested":        exceeds.Requested,
		})
	default:
		config.Logger().WithError(err).Error("unexpected service error")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// writeValidationError reports struct-level validation failures field by field.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := map[string]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fields)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
}
