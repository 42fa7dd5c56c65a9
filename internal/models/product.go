package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the stock catalog entry. QuantityOnHand and QuantitySold are only
// mutated by admin updates and by the invoice/return pipelines, which adjust
// both counters inside the owning transaction.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null;unique" json:"name"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	QuantityOnHand int             `gorm:"not null;default:0" json:"quantity_on_hand"`
	QuantitySold   int             `gorm:"not null;default:0" json:"quantity_sold"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
