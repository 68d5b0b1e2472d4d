package service

import (
	"context"
	"fmt"
	"strings"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementRequest is a manual ledger entry. Sale and restock movements are
// only written by their own flows.
type MovementRequest struct {
	Type         model.MovementType `json:"type" validate:"required,oneof=income expense"`
	Amount       decimal.Decimal    `json:"amount" validate:"gt=0,money"`
	Description  string             `json:"description" validate:"required,max=500"`
	Category     string             `json:"category"`
	MovementDate model.Date         `json:"movement_date" validate:"omitempty,isodate"`
}

// Ledger is a date-bounded slice of movements and its balance.
type Ledger struct {
	Movements []model.CashMovement `json:"movements"`
	Balance   decimal.Decimal      `json:"balance"`
	Income    decimal.Decimal      `json:"income"`
	Outflow   decimal.Decimal      `json:"outflow"`
}

type CashService interface {
	List(ctx context.Context, workspaceID uuid.UUID, period repository.Period) (*Ledger, error)
	AddMovement(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *MovementRequest) (*model.CashMovement, error)
}

type cashService struct {
	cashRepo repository.CashRepository
	cal      Calendar
}

func NewCashService(cRepo repository.CashRepository, cal Calendar) CashService {
	return &cashService{cashRepo: cRepo, cal: cal}
}

func (s *cashService) List(ctx context.Context, workspaceID uuid.UUID, period repository.Period) (*Ledger, error) {
	movements, err := s.cashRepo.FindByPeriod(ctx, workspaceID, period)
	if err != nil {
		return nil, err
	}
	return NewLedger(movements), nil
}

// NewLedger folds movements into a Ledger.
func NewLedger(movements []model.CashMovement) *Ledger {
	l := &Ledger{Movements: movements, Income: decimal.Zero, Outflow: decimal.Zero}
	if l.Movements == nil {
		l.Movements = []model.CashMovement{}
	}
	for _, m := range movements {
		if m.Type.Outflow() {
			l.Outflow = l.Outflow.Add(m.Amount)
		} else {
			l.Income = l.Income.Add(m.Amount)
		}
	}
	l.Balance = model.Balance(movements)
	return l
}

func (s *cashService) AddMovement(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *MovementRequest) (*model.CashMovement, error) {
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		req.Category = model.CategoryGeneral
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if !validCategory(req.Category) {
		return nil, invalid("category", "unknown category "+req.Category)
	}
	date := req.MovementDate
	if date == "" {
		date = s.cal.Today()
	}

	mv := &model.CashMovement{
		WorkspaceID:  workspaceID,
		Type:         req.Type,
		Amount:       req.Amount,
		Description:  req.Description,
		Category:     req.Category,
		MovementDate: date,
	}
	mv.CreatedBy = actor.audit()
	if err := s.cashRepo.Create(ctx, mv); err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}
	metrics.CashMovements.WithLabelValues(string(mv.Type)).Inc()
	return mv, nil
}

func validCategory(c string) bool {
	for _, known := range model.CashCategories {
		if c == known {
			return true
		}
	}
	return false
}
