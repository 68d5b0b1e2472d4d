package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalance(t *testing.T) {
	movements := []CashMovement{
		{Type: MovementSale, Amount: d("40")},
		{Type: MovementIncome, Amount: d("100")},
		{Type: MovementExpense, Amount: d("30.25")},
		{Type: MovementRestock, Amount: d("150")},
	}
	assert.True(t, d("-40.25").Equal(Balance(movements)))
	assert.True(t, Balance(nil).IsZero())
	assert.True(t, MovementRestock.Outflow())
	assert.False(t, MovementSale.Outflow())
}

func TestClampStock(t *testing.T) {
	assert.Equal(t, 7, ClampStock(5, 2))
	assert.Equal(t, 0, ClampStock(5, -5))
	assert.Equal(t, 0, ClampStock(2, -50))
}

func TestComputeTotals(t *testing.T) {
	items := []SaleItem{
		{Quantity: 2, SalePrice: d("20"), CostPrice: d("12")},
		{Quantity: 3, SalePrice: d("9.50"), CostPrice: d("6.10")},
	}
	revenue, cost, profit := ComputeTotals(items)
	assert.True(t, d("68.5").Equal(revenue), revenue.String())
	assert.True(t, d("42.3").Equal(cost), cost.String())
	assert.True(t, d("26.2").Equal(profit), profit.String())

	sale := NewSale(uuid.Nil, SaleIndividual, "2026-10-16", items, nil)
	assert.True(t, revenue.Equal(sale.TotalRevenue))
	assert.Equal(t, "Venta rápida", sale.Type.Label())
}

func TestDate(t *testing.T) {
	_, err := ParseDate("2026-02-30")
	assert.Error(t, err)
	got, err := ParseDate("2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-10-13"), got.AddDays(-3))
	assert.Equal(t, Date("2026-11-01"), got.AddDays(16))

	loc := time.FixedZone("CST", -6*3600)
	midnight, err := got.Time(loc)
	require.NoError(t, err)
	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, got, DateOf(midnight))

	var scanned Date
	require.NoError(t, scanned.Scan("2026-10-16T00:00:00Z"))
	assert.Equal(t, got, scanned)
	require.NoError(t, scanned.Scan(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2026-10-01"), scanned)
	assert.Error(t, scanned.Scan(42))

	v, err := Date("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSaleItemsScan(t *testing.T) {
	var items SaleItems
	require.NoError(t, items.Scan([]byte(`[{"product_name":"Agua","quantity":2,"sale_price":"10","cost_price":"6"}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, "Agua", items[0].ProductName)
	assert.True(t, d("20").Equal(items[0].Revenue()))

	v, err := SaleItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, items.Scan(3.5))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("secreto1"))
	assert.True(t, u.CheckPassword("secreto1"))
	assert.False(t, u.CheckPassword("otro"))
}
