package calc

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// StockStatus classifies a stock level against its threshold.
type StockStatus string

const (
	StockOK  StockStatus = "ok"
	StockLow StockStatus = "low"
	StockOut StockStatus = "out"
)

// Margin is profit as a percentage of the sale price. Zero when the price is zero.
func Margin(costPrice, salePrice decimal.Decimal) decimal.Decimal {
	if salePrice.IsZero() {
		return decimal.Zero
	}
	return salePrice.Sub(costPrice).Div(salePrice).Mul(hundred)
}

// Markup is profit as a percentage of cost. Zero when the cost is zero.
func Markup(costPrice, salePrice decimal.Decimal) decimal.Decimal {
	if costPrice.IsZero() {
		return decimal.Zero
	}
	return salePrice.Sub(costPrice).Div(costPrice).Mul(hundred)
}

// Profit is (sale - cost) × quantity.
func Profit(costPrice, salePrice decimal.Decimal, quantity int) decimal.Decimal {
	return salePrice.Sub(costPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// StockValue is the money tied up in stock at cost.
func StockValue(costPrice decimal.Decimal, stock int) decimal.Decimal {
	return costPrice.Mul(decimal.NewFromInt(int64(stock)))
}

func IsLowStock(stock, minStock int) bool {
	return stock <= minStock
}

// Status returns out for zero stock, low at or under minStock, ok otherwise.
func Status(stock, minStock int) StockStatus {
	if stock <= 0 {
		return StockOut
	}
	if stock <= minStock {
		return StockLow
	}
	return StockOK
}
