package testutil

import (
	"context"
	"testing"
	"time"

	"consultancy-portal/internal/auth/adapter/security"
	"consultancy-portal/internal/auth/config"
	"consultancy-portal/internal/auth/domain/model"

	"golang.org/x/crypto/bcrypt"
)

const TestSecret = "test-secret-key-32-characters-long-12345"

// TestConfig returns an auth config suitable for tests
func TestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:   TestSecret,
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		CookieName:     "portal_token",
		CookiePath:     "/",
		CookieSameSite: "Lax",
		LoginRateLimit: 100,
	}
}

// AdminWithPassword returns an admin whose hash matches password
func AdminWithPassword(email, password string) *model.Admin {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.Admin{
		ID:           "admin-" + email,
		Email:        email,
		Name:         "Admin",
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// StudentPrincipal returns a student as the identity provider would describe them
func StudentPrincipal(id string) model.Principal {
	return model.Principal{
		ID:      id,
		Email:   id + "@students.example.com",
		Name:    "Student " + id,
		Picture: "https://img.example.com/" + id + ".png",
		Role:    model.RoleStudent,
	}
}

// Token signs a token for principal with the test secret
func Token(t testing.TB, principal model.Principal) string {
	t.Helper()
	svc, err := security.NewJWTokenService(TestConfig())
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	token, err := svc.GenerateToken(context.Background(), principal)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// AdminToken signs an admin token
func AdminToken(t testing.TB) string {
	return Token(t, model.Principal{ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin})
}
