package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *model.Workspace) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Workspace, error)
}

type workspaceRepo struct {
	db *gorm.DB
}

func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db}
}

func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *workspaceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
