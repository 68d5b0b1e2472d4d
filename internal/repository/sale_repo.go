package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Sale, error)
	FindByPeriod(ctx context.Context, workspaceID uuid.UUID, period Period) ([]model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := r.db.WithContext(ctx).First(&sale, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByPeriod returns the workspace's sales with sale_date inside period, newest first.
func (r *saleRepo) FindByPeriod(ctx context.Context, workspaceID uuid.UUID, period Period) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	q = period.apply(q, "sale_date")
	err := q.Order("created_at DESC").Find(&sales).Error
	return sales, err
}
