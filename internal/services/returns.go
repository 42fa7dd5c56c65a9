package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sharpstore/pos-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnLine requests a refund of Quantity units of a product that appears on
// the original invoice.
type ReturnLine struct {
	ProductID uint
	Quantity  int
}

type ReturnRequest struct {
	InvoiceID     uint
	CustomerName  string
	CustomerPhone string
	Lines         []ReturnLine
}

type ReturnResult struct {
	ReturnID    uint            `json:"return_id"`
	ReturnCode  string          `json:"return_code"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReturnService handles refunds against committed invoices, restocking the
// returned units in the same transaction that records the return.
type ReturnService struct {
	db *gorm.DB
}

func NewReturnService(db *gorm.DB) *ReturnService { return &ReturnService{db: db} }

// CreateReturn validates the requested lines against the original invoice,
// records the return with its items, and restocks the products, all
// atomically. Refund amounts use the invoice item's price snapshot. The
// cumulative returned quantity per product, across all returns of the same
// invoice, can never exceed what the invoice sold.
func (s *ReturnService) CreateReturn(ctx context.Context, req ReturnRequest) (*ReturnResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	var res ReturnResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Items").First(&inv, req.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		invoiced := make(map[uint]models.InvoiceItem, len(inv.Items))
		for _, it := range inv.Items {
			invoiced[it.ProductID] = it
		}

		ret := models.Return{
			OriginalInvoiceID: inv.ID,
			CustomerName:      req.CustomerName,
			CustomerPhone:     req.CustomerPhone,
			ReturnCode:        newReturnCode(),
			TotalAmount:       decimal.Zero,
		}
		items := make([]models.ReturnItem, 0, len(req.Lines))
		total := decimal.Zero
		// Duplicate lines for the same product count together against the
		// invoiced quantity, same as the sale path accumulates cart lines.
		pending := make(map[uint]int, len(req.Lines))
		for _, l := range req.Lines {
			if l.Quantity <= 0 {
				return &InvalidQuantityError{ProductID: l.ProductID, Quantity: l.Quantity}
			}
			it, ok := invoiced[l.ProductID]
			if !ok {
				return &ProductNotFoundError{ProductID: l.ProductID}
			}
			already, err := returnedSoFar(tx, inv.ID, l.ProductID)
			if err != nil {
				return err
			}
			if already+pending[l.ProductID]+l.Quantity > it.Quantity {
				return &ReturnExceedsInvoiceError{
					ProductID:       l.ProductID,
					Invoiced:        it.Quantity,
					AlreadyReturned: already + pending[l.ProductID],
					Requested:       l.Quantity,
				}
			}
			pending[l.ProductID] += l.Quantity
			itemTotal := it.UnitPriceSnapshot.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
			items = append(items, models.ReturnItem{
				ProductID:         l.ProductID,
				NameSnapshot:      it.NameSnapshot,
				UnitPriceSnapshot: it.UnitPriceSnapshot,
				Quantity:          l.Quantity,
				ItemTotal:         itemTotal,
			})
			total = total.Add(itemTotal)
		}
		ret.TotalAmount = total

		if err := tx.Create(&ret).Error; err != nil {
			return &CommitFailedError{Cause: err}
		}
		for i := range items {
			items[i].ReturnID = ret.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return &CommitFailedError{Cause: err}
		}
		// Restock mirrors the sale decrement; quantity_sold is guarded so it
		// can never go negative even if counters were edited by hand.
		for _, l := range req.Lines {
			r := tx.Model(&models.Product{}).
				Where("id = ? AND quantity_sold >= ?", l.ProductID, l.Quantity).
				Updates(map[string]any{
					"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", l.Quantity),
					"quantity_sold":    gorm.Expr("quantity_sold - ?", l.Quantity),
				})
			if r.Error != nil {
				return &CommitFailedError{Cause: r.Error}
			}
			if r.RowsAffected == 0 {
				return &CommitFailedError{Cause: fmt.Errorf("restock guard rejected product %d: quantity_sold below %d", l.ProductID, l.Quantity)}
			}
		}

		res = ReturnResult{
			ReturnID:    ret.ID,
			ReturnCode:  ret.ReturnCode,
			TotalAmount: ret.TotalAmount,
			CreatedAt:   ret.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetReturn returns one return with its items.
func (s *ReturnService) GetReturn(ctx context.Context, id uint) (*models.Return, error) {
	var ret models.Return
	err := s.db.WithContext(ctx).Preload("Items").First(&ret, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// ListReturns returns a page of return headers, newest first, plus the total
// count.
func (s *ReturnService) ListReturns(ctx context.Context, limit, offset int) ([]models.Return, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Return{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rets []models.Return
	if err := db.Order("id desc").Limit(limit).Offset(offset).Find(&rets).Error; err != nil {
		return nil, 0, err
	}
	return rets, total, nil
}

func returnedSoFar(tx *gorm.DB, invoiceID, productID uint) (int, error) {
	var n int64
	err := tx.Model(&models.ReturnItem{}).
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.original_invoice_id = ? AND return_items.product_id = ?", invoiceID, productID).
		Select("COALESCE(SUM(return_items.quantity), 0)").
		Scan(&n).Error
	return int(n), err
}

func newReturnCode() string {
	return "RET-" + strings.ToUpper(uuid.NewString()[:8])
}
