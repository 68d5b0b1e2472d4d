package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
	MovementSale    MovementType = "sale"
	MovementRestock MovementType = "restock"
)

// Outflow reports whether the movement type subtracts from the balance.
func (t MovementType) Outflow() bool {
	return t == MovementExpense || t == MovementRestock
}

// Cash ledger categories.
const (
	CategoryGeneral   = "General"
	CategorySales     = "Ventas"
	CategoryInventory = "Inventario"
	CategoryServices  = "Servicios"
	CategoryFixed     = "Gastos fijos"
	CategoryOther     = "Otros"
)

// CashCategories is the fixed set offered for manual entries.
var CashCategories = []string{
	CategoryGeneral, CategorySales, CategoryInventory, CategoryServices, CategoryFixed, CategoryOther,
}

// CashMovement is one ledger entry. Amount is always a positive magnitude; the
// sign comes from Type.
type CashMovement struct {
	BaseModel
	WorkspaceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Type          MovementType    `gorm:"type:varchar(20);not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Category      string          `gorm:"type:varchar(50);not null" json:"category"`
	MovementDate  Date            `gorm:"type:date;not null;index" json:"movement_date"`
	RelatedSaleID *uuid.UUID      `gorm:"type:uuid" json:"related_sale_id"`
}

// Signed returns the contribution of m to the balance.
func (m CashMovement) Signed() decimal.Decimal {
	if m.Type.Outflow() {
		return m.Amount.Neg()
	}
	return m.Amount
}

// Balance folds movements with the income/sale (+) and expense/restock (-) convention.
func Balance(movements []CashMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Signed())
	}
	return total
}
