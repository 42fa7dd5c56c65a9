package services

import (
	"context"
	"errors"

	"github.com/sharpstore/pos-backend/internal/models"

	"gorm.io/gorm"
)

// validateStock checks every cart line against the on-hand quantities visible
// to tx and returns the products keyed by ID. Pure read: the authoritative
// guard stays with the conditional decrement in the write phase, this check
// just fails fast before any row is touched.
func validateStock(tx *gorm.DB, lines []CartLine) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: l.ProductID, Quantity: l.Quantity}
		}
		ids = append(ids, l.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	// Requested quantities per product accumulate across duplicate lines so a
	// cart listing the same product twice cannot slip past the check.
	requested := map[uint]int{}
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
		requested[l.ProductID] += l.Quantity
		if requested[l.ProductID] > p.QuantityOnHand {
			return nil, &InsufficientStockError{
				ProductID: l.ProductID,
				Available: p.QuantityOnHand,
				Requested: requested[l.ProductID],
			}
		}
	}
	return byID, nil
}

// CheckStock reports whether quantity units of a product are currently on
// hand. Read-only convenience for front ends; a later commit re-checks inside
// its own transaction.
func (s *InvoiceService) CheckStock(ctx context.Context, productID uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, &InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &ProductNotFoundError{ProductID: productID}
		}
		return false, err
	}
	return p.QuantityOnHand >= quantity, nil
}
