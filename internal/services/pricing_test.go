package services

import (
	"errors"
	"testing"

	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestPriceCartFixedDiscount(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 2, UnitPrice: dec(t, "100.00")},
		{Quantity: 1, UnitPrice: dec(t, "50.00")},
	}
	res, err := PriceCart(lines, models.DiscountFixed, dec(t, "20"))
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !res.Subtotal.Equal(dec(t, "250.00")) {
		t.Fatalf("subtotal = %s, want 250.00", res.Subtotal)
	}
	if !res.DiscountAmount.Equal(dec(t, "20.00")) {
		t.Fatalf("discount = %s, want 20.00", res.DiscountAmount)
	}
	if !res.Total.Equal(dec(t, "230.00")) {
		t.Fatalf("total = %s, want 230.00", res.Total)
	}
}

func TestPriceCartPercentageDiscount(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 2, UnitPrice: dec(t, "100.00")},
		{Quantity: 1, UnitPrice: dec(t, "50.00")},
	}
	res, err := PriceCart(lines, models.DiscountPercentage, dec(t, "10"))
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !res.DiscountAmount.Equal(dec(t, "25.00")) {
		t.Fatalf("discount = %s, want 25.00", res.DiscountAmount)
	}
	if !res.Total.Equal(dec(t, "225.00")) {
		t.Fatalf("total = %s, want 225.00", res.Total)
	}
}

func TestPriceCartLineTotals(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 3, UnitPrice: dec(t, "19.99")},
		{Quantity: 1, UnitPrice: dec(t, "0.05")},
	}
	res, err := PriceCart(lines, models.DiscountFixed, decimal.Zero)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !res.LineTotals[0].Equal(dec(t, "59.97")) || !res.LineTotals[1].Equal(dec(t, "0.05")) {
		t.Fatalf("line totals = %v", res.LineTotals)
	}
	if !res.Subtotal.Equal(dec(t, "60.02")) {
		t.Fatalf("subtotal = %s, want 60.02", res.Subtotal)
	}
	if !res.Total.Equal(res.Subtotal) {
		t.Fatalf("zero discount must leave total = subtotal, got %s", res.Total)
	}
}

func TestPriceCartPercentageRoundsHalfUp(t *testing.T) {
	// 12.5% of 10.10 = 1.2625 -> 1.26; 15% of 0.10 = 0.015 -> 0.02 (half up).
	res, err := PriceCart([]PricedLine{{Quantity: 1, UnitPrice: dec(t, "0.10")}}, models.DiscountPercentage, dec(t, "15"))
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !res.DiscountAmount.Equal(dec(t, "0.02")) {
		t.Fatalf("discount = %s, want 0.02", res.DiscountAmount)
	}
	if !res.Total.Equal(dec(t, "0.08")) {
		t.Fatalf("total = %s, want 0.08", res.Total)
	}
}

func TestPriceCartDiscountBounds(t *testing.T) {
	lines := []PricedLine{{Quantity: 1, UnitPrice: dec(t, "250.00")}}

	if _, err := PriceCart(lines, models.DiscountPercentage, dec(t, "150")); !errors.Is(err, &InvalidDiscountError{}) {
		t.Fatalf("percentage 150: got %v, want InvalidDiscountError", err)
	}
	if _, err := PriceCart(lines, models.DiscountFixed, dec(t, "300")); !errors.Is(err, &InvalidDiscountError{}) {
		t.Fatalf("fixed 300 on subtotal 250: got %v, want InvalidDiscountError", err)
	}
	if _, err := PriceCart(lines, models.DiscountFixed, dec(t, "-5")); !errors.Is(err, &InvalidDiscountError{}) {
		t.Fatalf("negative discount: got %v, want InvalidDiscountError", err)
	}
	if _, err := PriceCart(lines, "loyalty", dec(t, "5")); !errors.Is(err, &InvalidDiscountError{}) {
		t.Fatalf("unknown type: got %v, want InvalidDiscountError", err)
	}
	// Fixed discount equal to the subtotal is allowed and zeroes the total.
	res, err := PriceCart(lines, models.DiscountFixed, dec(t, "250"))
	if err != nil {
		t.Fatalf("full discount: %v", err)
	}
	if !res.Total.IsZero() {
		t.Fatalf("total = %s, want 0", res.Total)
	}
}

func TestPriceCartEmptyDiscountTypeDefaultsToFixed(t *testing.T) {
	res, err := PriceCart([]PricedLine{{Quantity: 2, UnitPrice: dec(t, "5.00")}}, "", dec(t, "1"))
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if !res.Total.Equal(dec(t, "9.00")) {
		t.Fatalf("total = %s, want 9.00", res.Total)
	}
}
