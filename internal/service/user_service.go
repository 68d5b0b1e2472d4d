package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/permission"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OpCreate     = "create"
	OpDeactivate = "deactivate"
	OpReactivate = "reactivate"
	OpChangeRole = "change_role"
)

// ManageUserRequest is the body of the privileged user-management endpoint.
// Field names follow the client's camelCase payload.
type ManageUserRequest struct {
	Operation   string     `json:"operation" validate:"required,oneof=create deactivate reactivate change_role"`
	WorkspaceID uuid.UUID  `json:"workspaceId" validate:"uuid_required"`
	MemberID    *uuid.UUID `json:"memberId"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FullName    string     `json:"fullName"`
	Role        model.Role `json:"role"`
}

type createMember struct {
	Email    string     `validate:"required,email"`
	Password string     `validate:"required,min=6"`
	FullName string     `validate:"required,max=255"`
	Role     model.Role `validate:"required,oneof=admin manager cashier viewer"`
}

type UserService interface {
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
	ManageUser(ctx context.Context, caller *model.WorkspaceMember, req *ManageUserRequest) (*model.WorkspaceMember, error)
}

type userService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	hub        Publisher
}

func NewUserService(userRepo repository.UserRepository, memberRepo repository.MemberRepository, hub Publisher) UserService {
	return &userService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		hub:        orNop(hub),
	}
}

func (s *userService) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	return s.memberRepo.FindByWorkspace(ctx, workspaceID)
}

func (s *userService) ManageUser(ctx context.Context, caller *model.WorkspaceMember, req *ManageUserRequest) (*model.WorkspaceMember, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := memberOf(caller, req.WorkspaceID); err != nil {
		return nil, err
	}
	if !permission.Can(caller.Role, permission.Users, permission.Manage) {
		return nil, ErrForbidden
	}

	if req.Operation == OpCreate {
		return s.create(ctx, caller, req)
	}

	if req.MemberID == nil {
		return nil, invalid("memberId", "required")
	}
	member, err := s.memberRepo.FindByID(ctx, req.WorkspaceID, *req.MemberID)
	if err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	if member.UserID == caller.UserID && req.Operation != OpReactivate {
		return nil, invalid("memberId", "you cannot change your own membership")
	}

	switch req.Operation {
	case OpDeactivate:
		member.IsActive = false
	case OpReactivate:
		member.IsActive = true
	case OpChangeRole:
		if !req.Role.Valid() {
			return nil, invalid("role", "unknown role "+string(req.Role))
		}
		member.Role = req.Role
	}
	member.UpdatedBy = caller.UserID.String()
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("%s member: %w", req.Operation, err)
	}

	s.hub.Publish(member.WorkspaceID, ws.MembershipUpdated(member))
	if req.Operation == OpDeactivate {
		// revoke outstanding tokens, then drop the sockets after the event went out
		if err := s.userRepo.UpdateTokenVersion(ctx, member.UserID, uuid.New().String()); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
		s.hub.DisconnectUser(member.UserID)
	}
	return member, nil
}

func (s *userService) create(ctx context.Context, caller *model.WorkspaceMember, req *ManageUserRequest) (*model.WorkspaceMember, error) {
	in := &createMember{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
		Role:     req.Role,
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		FullName:     in.FullName,
		TokenVersion: uuid.New().String(),
	}
	user.CreatedBy = caller.UserID.String()
	if err := user.SetPassword(in.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	inviter := caller.UserID
	member := &model.WorkspaceMember{
		WorkspaceID: caller.WorkspaceID,
		UserID:      user.ID,
		Role:        in.Role,
		FullName:    &in.FullName,
		Email:       in.Email,
		IsActive:    true,
		InvitedBy:   &inviter,
	}
	member.CreatedBy = caller.UserID.String()
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.hub.Publish(member.WorkspaceID, ws.MembershipUpdated(member))
	return member, nil
}
