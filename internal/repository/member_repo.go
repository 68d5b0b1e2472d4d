package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository interface {
	Create(ctx context.Context, member *model.WorkspaceMember) error
	Update(ctx context.Context, member *model.WorkspaceMember) error
	FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.WorkspaceMember, error)
	// FindFirstByUser returns the user's oldest membership, active or not.
	FindFirstByUser(ctx context.Context, userID uuid.UUID) (*model.WorkspaceMember, error)
	FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
}

type memberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.WorkspaceMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) Update(ctx context.Context, member *model.WorkspaceMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepo) FindByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.WorkspaceMember, error) {
	var m model.WorkspaceMember
	if err := r.db.WithContext(ctx).First(&m, "id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) FindFirstByUser(ctx context.Context, userID uuid.UUID) (*model.WorkspaceMember, error) {
	var m model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	var m model.WorkspaceMember
	err := r.db.WithContext(ctx).
		First(&m, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	var members []model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&members).Error
	return members, err
}
