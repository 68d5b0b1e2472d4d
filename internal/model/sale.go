package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleType string

const (
	SaleIndividual SaleType = "individual"
	SaleBulkDaily  SaleType = "bulk_daily"
)

// Label is the human name used in reports and exports.
func (t SaleType) Label() string {
	if t == SaleIndividual {
		return "Venta rápida"
	}
	return "Cierre del día"
}

// SaleItem is a snapshot of a product at the moment of sale. It is not a live
// reference: later catalog edits do not change historical totals.
type SaleItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

// Revenue is sale_price × quantity.
func (i SaleItem) Revenue() decimal.Decimal {
	return i.SalePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cost is cost_price × quantity.
func (i SaleItem) Cost() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleItems is persisted as a JSON document column.
type SaleItems []SaleItem

func (s SaleItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SaleItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("model.SaleItems: cannot scan %T", src)
	}
	return json.Unmarshal(raw, s)
}

// Sale is immutable once created; totals are derived from Items at creation.
type Sale struct {
	BaseModel
	WorkspaceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Type         SaleType        `gorm:"type:varchar(20);not null" json:"type"`
	SaleDate     Date            `gorm:"type:date;not null;index" json:"sale_date"`
	Items        SaleItems       `gorm:"type:jsonb;not null" json:"items"`
	TotalRevenue decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_revenue"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_cost"`
	TotalProfit  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_profit"`
	Notes        *string         `gorm:"type:text" json:"notes"`
}

// ComputeTotals returns revenue, cost and profit for items.
func ComputeTotals(items []SaleItem) (revenue, cost, profit decimal.Decimal) {
	revenue, cost = decimal.Zero, decimal.Zero
	for _, it := range items {
		revenue = revenue.Add(it.Revenue())
		cost = cost.Add(it.Cost())
	}
	return revenue, cost, revenue.Sub(cost)
}

// NewSale builds a sale whose totals are recomputed from items.
func NewSale(workspaceID uuid.UUID, saleType SaleType, date Date, items []SaleItem, notes *string) *Sale {
	revenue, cost, profit := ComputeTotals(items)
	return &Sale{
		WorkspaceID:  workspaceID,
		Type:         saleType,
		SaleDate:     date,
		Items:        SaleItems(items),
		TotalRevenue: revenue,
		TotalCost:    cost,
		TotalProfit:  profit,
		Notes:        notes,
	}
}
