package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, workspaceID uuid.UUID) ([]model.Product, error)
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, workspaceID uuid.UUID, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateStock(ctx context.Context, workspaceID, id uuid.UUID, newStock int, updatedBy string) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, workspaceID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("name").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND workspace_id = ?", id, workspaceID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, workspaceID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Order("created_at").
		First(&product, "sku = ? AND workspace_id = ?", sku, workspaceID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// UpdateStock writes an absolute stock value. There is no version check, so
// concurrent writers on the same row resolve as last write wins.
func (r *productRepo) UpdateStock(ctx context.Context, workspaceID, id uuid.UUID, newStock int, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
