package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type MembershipService interface {
	// Resolve returns the user's active membership, provisioning a workspace
	// with an admin membership for a brand-new user. It returns
	// ErrMembershipInactive when the user's membership was deactivated.
	Resolve(ctx context.Context, user *model.User) (*model.WorkspaceMember, error)
}

type membershipService struct {
	memberRepo    repository.MemberRepository
	workspaceRepo repository.WorkspaceRepository
	defaultName   string
	inflight      singleflight.Group
}

func NewMembershipService(mRepo repository.MemberRepository, wRepo repository.WorkspaceRepository, defaultWorkspaceName string) MembershipService {
	if defaultWorkspaceName == "" {
		defaultWorkspaceName = model.DefaultWorkspaceName
	}
	return &membershipService{
		memberRepo:    mRepo,
		workspaceRepo: wRepo,
		defaultName:   defaultWorkspaceName,
	}
}

// Resolve collapses concurrent calls for the same user into one round trip.
func (s *membershipService) Resolve(ctx context.Context, user *model.User) (*model.WorkspaceMember, error) {
	v, err, _ := s.inflight.Do(user.ID.String(), func() (interface{}, error) {
		return s.fetchOrCreate(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.WorkspaceMember), nil
}

func (s *membershipService) fetchOrCreate(ctx context.Context, user *model.User) (*model.WorkspaceMember, error) {
	// Any membership, active or not, wins over provisioning: an invited user
	// who was deactivated must not get a fresh workspace.
	m, err := s.memberRepo.FindFirstByUser(ctx, user.ID)
	if err == nil {
		return activeOnly(m)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetch membership: %w", err)
	}

	ws, err := s.workspaceRepo.FindByOwner(ctx, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ws = &model.Workspace{Name: s.defaultName, OwnerID: user.ID}
		ws.CreatedBy = user.ID.String()
		if err := s.workspaceRepo.Create(ctx, ws); err != nil {
			return nil, fmt.Errorf("provision workspace: %w", err)
		}
		metrics.MembershipProvisions.Inc()
		log.Info().Str("user_id", user.ID.String()).Str("workspace_id", ws.ID.String()).Msg("workspace provisioned")
	} else if err != nil {
		return nil, fmt.Errorf("fetch owned workspace: %w", err)
	}

	// re-check: another request may have inserted the row meanwhile
	if existing, err := s.memberRepo.FindByWorkspaceAndUser(ctx, ws.ID, user.ID); err == nil {
		return activeOnly(existing)
	}

	var fullName *string
	if user.FullName != "" {
		name := user.FullName
		fullName = &name
	}
	m = &model.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Role:        model.RoleAdmin,
		FullName:    fullName,
		Email:       user.Email,
		IsActive:    true,
	}
	m.CreatedBy = user.ID.String()
	if err := s.memberRepo.Create(ctx, m); err != nil {
		retry, rerr := s.memberRepo.FindByWorkspaceAndUser(ctx, ws.ID, user.ID)
		if rerr != nil {
			return nil, fmt.Errorf("provision membership: %w", err)
		}
		return activeOnly(retry)
	}
	return m, nil
}

func activeOnly(m *model.WorkspaceMember) (*model.WorkspaceMember, error) {
	if !m.IsActive {
		return nil, ErrMembershipInactive
	}
	return m, nil
}

// memberOf is shared by services that need the caller's workspace to match a body field.
func memberOf(caller *model.WorkspaceMember, workspaceID uuid.UUID) error {
	if caller == nil || caller.WorkspaceID != workspaceID {
		return ErrWorkspaceMismatch
	}
	return nil
}
