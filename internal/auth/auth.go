package auth

import (
	"context"
	"fmt"

	authhttp "consultancy-portal/internal/auth/adapter/http"
	"consultancy-portal/internal/auth/adapter/persistence/memory"
	"consultancy-portal/internal/auth/adapter/persistence/mongodb"
	"consultancy-portal/internal/auth/adapter/security"
	"consultancy-portal/internal/auth/config"
	"consultancy-portal/internal/auth/domain/repository"
	"consultancy-portal/internal/auth/usecase"
	"consultancy-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository repository.AdminRepository
	tokenSvc   repository.TokenService
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates the module. A nil db keeps admins in memory.
func NewAuthModule(ctx context.Context, db *mongo.Database, cfg *config.Config, log logger.Logger) (*AuthModule, error) {
	var authRepo repository.AdminRepository
	if db != nil {
		repo, err := mongodb.NewMongoAdminRepository(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth repository: %w", err)
		}
		authRepo = repo
	} else {
		authRepo = memory.NewAdminRepository()
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(authRepo, tokenSvc, log)
	if err := authUsecase.EnsureAdmin(ctx, cfg.AdminEmail, "Administrator", cfg.AdminPasswordHash); err != nil {
		return nil, err
	}

	handler := authhttp.NewAuthHTTPHandler(authUsecase, authhttp.CookieConfig{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		Secure:   cfg.CookieSecure,
		HTTPOnly: cfg.CookieHTTPOnly,
		SameSite: cfg.CookieSameSite,
	})

	return &AuthModule{
		repository: authRepo,
		tokenSvc:   tokenSvc,
		usecase:    authUsecase,
		handler:    handler,
		middleware: authhttp.NewAuthMiddleware(authUsecase, cfg.CookieName),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutesWithMiddleware(router.Group("/v1/auth"), am.middleware, am.config.LoginRateLimit)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetTokenService returns the token service, used to mint tokens in tests and tooling
func (am *AuthModule) GetTokenService() repository.TokenService {
	return am.tokenSvc
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}
