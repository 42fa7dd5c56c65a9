package services

import (
	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/shopspring/decimal"
)

// PricedLine is one cart line with its effective unit price resolved.
type PricedLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// PricingResult carries the computed invoice amounts, already rounded to the
// 2-decimal storage precision.
type PricingResult struct {
	LineTotals     []decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// PriceCart computes line totals, subtotal, discount amount, and final total.
// All math is fixed-point decimal; each line total is rounded half-up to two
// places at the storage boundary and the subtotal is the sum of those rounded
// line totals, so the stored rows always add up exactly. Callers must reject
// an empty cart before pricing.
func PriceCart(lines []PricedLine, discountType string, discountValue decimal.Decimal) (PricingResult, error) {
	res := PricingResult{LineTotals: make([]decimal.Decimal, len(lines))}
	subtotal := decimal.Zero
	for i, l := range lines {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		res.LineTotals[i] = lineTotal
		subtotal = subtotal.Add(lineTotal)
	}
	res.Subtotal = subtotal

	if discountValue.Sign() < 0 {
		return PricingResult{}, &InvalidDiscountError{Reason: "discount value is negative"}
	}
	switch discountType {
	case models.DiscountPercentage:
		if discountValue.GreaterThan(oneHundred) {
			return PricingResult{}, &InvalidDiscountError{Reason: "percentage discount above 100"}
		}
		res.DiscountAmount = subtotal.Mul(discountValue).Div(oneHundred).Round(2)
	case models.DiscountFixed, "":
		if discountValue.GreaterThan(subtotal) {
			return PricingResult{}, &InvalidDiscountError{Reason: "fixed discount exceeds subtotal"}
		}
		res.DiscountAmount = discountValue.Round(2)
	default:
		return PricingResult{}, &InvalidDiscountError{Reason: "unknown discount type: " + discountType}
	}
	res.Total = subtotal.Sub(res.DiscountAmount)
	return res, nil
}
