package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	// ValidateToken resumes a session: the token must verify and carry the
	// user's current token version.
	ValidateToken(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Heartbeat(ctx context.Context, userID uuid.UUID) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		TokenVersion: uuid.New().String(),
		LastSeenAt:   &now,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// single session: a new login revokes tokens issued before it
	now := time.Now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.New("failed to update session")
	}
	return s.issue(user)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionRevoked
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(ctx, userID, uuid.New().String())
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.UpdateLastSeen(ctx, userID)
}

// ResetPassword sets a new password and signs the user out everywhere.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("password", "must be at least 6 characters")
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return ErrUserNotFound
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	user.TokenVersion = uuid.New().String()
	return s.userRepo.Update(ctx, user)
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
