package services

import (
	"context"
	"time"

	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is one requested sale line. UnitPrice is optional: when zero the
// product's current catalog price (read inside the commit transaction) is
// used; a positive value overrides it, e.g. a clerk-adjusted price.
type CartLine struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// CommitRequest is the full input of one invoice commit.
type CommitRequest struct {
	Lines         []CartLine
	DiscountType  string
	DiscountValue decimal.Decimal
	CustomerName  string
	CustomerPhone string
}

// CommitResult is returned on a successful commit.
type CommitResult struct {
	InvoiceID      uint            `json:"invoice_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// InvoiceService owns the invoice commit pipeline and the invoice read
// facade. The store handle is injected; the service keeps no other state.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{db: db} }

// Commit turns a cart plus discount into one durable invoice: stock
// validation, pricing, header and item inserts, and the inventory decrements
// all run inside a single transaction. Any failure rolls the whole thing
// back; nothing is ever partially applied and nothing is retried.
func (s *InvoiceService) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	var res CommitResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := validateStock(tx, req.Lines)
		if err != nil {
			return err
		}

		priced := make([]PricedLine, len(req.Lines))
		for i, l := range req.Lines {
			price := l.UnitPrice
			if price.Sign() <= 0 {
				price = products[l.ProductID].UnitPrice
			}
			priced[i] = PricedLine{Quantity: l.Quantity, UnitPrice: price}
		}
		pricing, err := PriceCart(priced, req.DiscountType, req.DiscountValue)
		if err != nil {
			return err
		}

		discountType := req.DiscountType
		if discountType == "" {
			discountType = models.DiscountFixed
		}
		inv := models.Invoice{
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			Subtotal:       pricing.Subtotal,
			DiscountType:   discountType,
			DiscountValue:  req.DiscountValue.Round(2),
			DiscountAmount: pricing.DiscountAmount,
			Total:          pricing.Total,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return &CommitFailedError{Cause: err}
		}

		items := make([]models.InvoiceItem, len(req.Lines))
		for i, l := range req.Lines {
			items[i] = models.InvoiceItem{
				InvoiceID:         inv.ID,
				ProductID:         l.ProductID,
				NameSnapshot:      products[l.ProductID].Name,
				UnitPriceSnapshot: priced[i].UnitPrice.Round(2),
				Quantity:          l.Quantity,
				LineTotal:         pricing.LineTotals[i],
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return &CommitFailedError{Cause: err}
		}

		// Conditional decrement: the WHERE guard makes this the authoritative
		// stock check, closing the window between validation and write when
		// another committer got in first. Zero rows affected means the stock
		// moved under us; abort the whole invoice.
		for _, l := range req.Lines {
			r := tx.Model(&models.Product{}).
				Where("id = ? AND quantity_on_hand >= ?", l.ProductID, l.Quantity).
				Updates(map[string]any{
					"quantity_on_hand": gorm.Expr("quantity_on_hand - ?", l.Quantity),
					"quantity_sold":    gorm.Expr("quantity_sold + ?", l.Quantity),
				})
			if r.Error != nil {
				return &CommitFailedError{Cause: r.Error}
			}
			if r.RowsAffected == 0 {
				var p models.Product
				available := 0
				if err := tx.First(&p, l.ProductID).Error; err == nil {
					available = p.QuantityOnHand
				}
				return &CommitFailedError{Cause: &InsufficientStockError{
					ProductID: l.ProductID,
					Available: available,
					Requested: l.Quantity,
				}}
			}
		}

		res = CommitResult{
			InvoiceID:      inv.ID,
			Subtotal:       inv.Subtotal,
			DiscountAmount: inv.DiscountAmount,
			Total:          inv.Total,
			CreatedAt:      inv.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
