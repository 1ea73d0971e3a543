package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/auth/domain/repository"
	"consultancy-portal/internal/shared/logger"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrInvalidRequest     = errors.New("invalid request")
)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	EnsureAdmin(ctx context.Context, email, name, passwordHash string) error
}

// LoginRequest represents the admin login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is returned on successful login
type AuthResponse struct {
	Principal model.Principal `json:"user"`
	Token     string          `json:"token"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.AdminRepository
	tokenSvc repository.TokenService
	validate *validator.Validate
	logger   logger.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(repo repository.AdminRepository, tokenSvc repository.TokenService, log logger.Logger) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		validate: validator.New(),
		logger:   log.WithComponent("auth"),
	}
}

// AdminLogin checks the password against the stored bcrypt hash and issues an admin token
func (uc *AuthUsecase) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := uc.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	admin, err := uc.repo.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			uc.logger.WithContext(ctx).Warnf("login attempt for unknown admin %s", req.Email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		uc.logger.WithContext(ctx).Warnf("failed login for admin %s", req.Email)
		return nil, ErrInvalidCredentials
	}

	principal := model.Principal{ID: admin.ID, Email: admin.Email, Name: admin.Name, Role: model.RoleAdmin}
	token, err := uc.tokenSvc.GenerateToken(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	uc.logger.WithContext(ctx).Infof("admin %s signed in", admin.Email)
	return &AuthResponse{Principal: principal, Token: token}, nil
}

// ValidateToken validates a JWT string
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// EnsureAdmin upserts the bootstrap administrator. An empty email is a no-op.
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, email, name, passwordHash string) error {
	if email == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return fmt.Errorf("admin password hash: %w", err)
	}
	admin := &model.Admin{Email: email, Name: name, PasswordHash: passwordHash}
	if err := uc.repo.UpsertAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	uc.logger.WithContext(ctx).Infof("admin %s ready", admin.Email)
	return nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
