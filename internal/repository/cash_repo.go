package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashRepository interface {
	Create(ctx context.Context, movement *model.CashMovement) error
	FindByPeriod(ctx context.Context, workspaceID uuid.UUID, period Period) ([]model.CashMovement, error)
	FindBySale(ctx context.Context, workspaceID, saleID uuid.UUID) ([]model.CashMovement, error)
}

type cashRepo struct {
	db *gorm.DB
}

func NewCashRepo(db *gorm.DB) CashRepository {
	return &cashRepo{db}
}

func (r *cashRepo) Create(ctx context.Context, movement *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByPeriod returns ledger entries with movement_date inside period, newest first.
func (r *cashRepo) FindByPeriod(ctx context.Context, workspaceID uuid.UUID, period Period) ([]model.CashMovement, error) {
	var movements []model.CashMovement
	q := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	q = period.apply(q, "movement_date")
	err := q.Order("created_at DESC").Find(&movements).Error
	return movements, err
}

// FindBySale follows the related_sale_id back-reference.
func (r *cashRepo) FindBySale(ctx context.Context, workspaceID, saleID uuid.UUID) ([]model.CashMovement, error) {
	var movements []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND related_sale_id = ?", workspaceID, saleID).
		Find(&movements).Error
	return movements, err
}
