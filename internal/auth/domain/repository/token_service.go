package repository

import (
	"context"

	"consultancy-portal/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, principal model.Principal) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims. The subject is the user ID.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	return c != nil && c.Role == role
}

// Principal returns the caller described by the claims.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		ID:      c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
		Role:    c.Role,
	}
}
