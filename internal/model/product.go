package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultCategory = "General"
	DefaultMinStock = 5
)

// Product is a catalog entry of a workspace. Stock never goes below zero.
type Product struct {
	BaseModel
	WorkspaceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU         *string         `gorm:"type:varchar(64);index" json:"sku"`
	Category    string          `gorm:"type:varchar(100);not null" json:"category"`
	CostPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost_price"`
	SalePrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sale_price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	MinStock    int             `gorm:"not null;default:5" json:"min_stock"`
}

// ClampStock applies delta to stock without going negative.
func ClampStock(stock, delta int) int {
	if next := stock + delta; next > 0 {
		return next
	}
	return 0
}
