package service

import (
	"context"
	"math/rand"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMovement_Validation(t *testing.T) {
	svc := NewCashService(&fakeCashRepo{}, fixedCalendar())
	wsID := uuid.New()

	cases := map[string]*MovementRequest{
		"missing amount":      {Type: model.MovementIncome, Description: "Renta"},
		"negative amount":     {Type: model.MovementExpense, Amount: dec("-5"), Description: "Luz"},
		"blank description":   {Type: model.MovementIncome, Amount: dec("5"), Description: "   "},
		"sale type":           {Type: model.MovementSale, Amount: dec("5"), Description: "x"},
		"restock type":        {Type: model.MovementRestock, Amount: dec("5"), Description: "x"},
		"unknown category":    {Type: model.MovementIncome, Amount: dec("5"), Description: "x", Category: "Viajes"},
		"fraction of a cent":  {Type: model.MovementExpense, Amount: dec("10.005"), Description: "Luz"},
		"malformed date":      {Type: model.MovementIncome, Amount: dec("5"), Description: "x", MovementDate: "16/10/2026"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddMovement(context.Background(), wsID, cashier, req)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestAddMovement_DefaultsDateAndCategory(t *testing.T) {
	repo := &fakeCashRepo{}
	svc := NewCashService(repo, fixedCalendar())
	wsID := uuid.New()

	mv, err := svc.AddMovement(context.Background(), wsID, cashier, &MovementRequest{
		Type: model.MovementExpense, Amount: dec("150"), Description: "Recibo de luz",
	})
	require.NoError(t, err)
	assert.Equal(t, model.Date("2026-10-16"), mv.MovementDate)
	assert.Equal(t, model.CategoryGeneral, mv.Category)

	backdated, err := svc.AddMovement(context.Background(), wsID, cashier, &MovementRequest{
		Type: model.MovementIncome, Amount: dec("500"), Description: "Aportación", Category: "Otros", MovementDate: "2026-10-01",
	})
	require.NoError(t, err)
	assert.Equal(t, model.Date("2026-10-01"), backdated.MovementDate)

	ledger, err := svc.List(context.Background(), wsID, repository.Period{})
	require.NoError(t, err)
	assert.True(t, ledger.Balance.Equal(dec("350")))
	assert.True(t, ledger.Income.Equal(dec("500")))
	assert.True(t, ledger.Outflow.Equal(dec("150")))

	october1, err := svc.List(context.Background(), wsID, repository.Period{To: "2026-10-01"})
	require.NoError(t, err)
	assert.True(t, october1.Balance.Equal(dec("500")))
}

func TestNewLedger_OrderIndependent(t *testing.T) {
	movements := []model.CashMovement{
		{Type: model.MovementIncome, Amount: dec("100")},
		{Type: model.MovementSale, Amount: dec("40")},
		{Type: model.MovementExpense, Amount: dec("25.50")},
		{Type: model.MovementRestock, Amount: dec("150")},
		{Type: model.MovementSale, Amount: dec("0.25")},
	}
	want := dec("-35.25")
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rnd.Shuffle(len(movements), func(a, b int) { movements[a], movements[b] = movements[b], movements[a] })
		assert.True(t, NewLedger(movements).Balance.Equal(want))
	}

	empty := NewLedger(nil)
	assert.True(t, empty.Balance.IsZero())
	assert.NotNil(t, empty.Movements)
}
