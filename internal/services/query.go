package services

import (
	"context"
	"errors"

	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetInvoice returns one invoice with its line items. Display data comes from
// the snapshots stored on the items, never a live join to products, so later
// catalog edits can't rewrite what was sold.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Preload("Items").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns a page of invoice headers, newest first, plus the
// total count.
func (s *InvoiceService) ListInvoices(ctx context.Context, limit, offset int) ([]models.Invoice, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invs []models.Invoice
	if err := db.Order("id desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

// ProductSales is one row of the top-products breakdown.
type ProductSales struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Units     int64           `json:"units"`
	Amount    decimal.Decimal `json:"amount"`
}

// SalesSummary aggregates all committed invoices for the dashboard.
type SalesSummary struct {
	InvoiceCount  int64           `json:"invoice_count"`
	GrossSales    decimal.Decimal `json:"gross_sales"`
	DiscountGiven decimal.Decimal `json:"discount_given"`
	NetSales      decimal.Decimal `json:"net_sales"`
	UnitsSold     int64           `json:"units_sold"`
	TopProducts   []ProductSales  `json:"top_products"`
}

// SalesSummary computes the aggregate sales view: totals across all invoices
// and the best-selling products by units.
func (s *InvoiceService) SalesSummary(ctx context.Context, topN int) (*SalesSummary, error) {
	if topN <= 0 || topN > 50 {
		topN = 5
	}
	db := s.db.WithContext(ctx)
	var sum SalesSummary

	var totals struct {
		Count    int64
		Gross    decimal.Decimal
		Discount decimal.Decimal
		Net      decimal.Decimal
	}
	err := db.Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(subtotal), 0) AS gross, COALESCE(SUM(discount_amount), 0) AS discount, COALESCE(SUM(total), 0) AS net").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	sum.InvoiceCount = totals.Count
	sum.GrossSales = totals.Gross.Round(2)
	sum.DiscountGiven = totals.Discount.Round(2)
	sum.NetSales = totals.Net.Round(2)

	if err := db.Model(&models.InvoiceItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum.UnitsSold).Error; err != nil {
		return nil, err
	}

	var top []ProductSales
	err = db.Model(&models.InvoiceItem{}).
		Select("product_id, MAX(name_snapshot) AS name, SUM(quantity) AS units, COALESCE(SUM(line_total), 0) AS amount").
		Group("product_id").
		Order("units DESC").
		Limit(topN).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	for i := range top {
		top[i].Amount = top[i].Amount.Round(2)
	}
	sum.TopProducts = top
	return &sum, nil
}
