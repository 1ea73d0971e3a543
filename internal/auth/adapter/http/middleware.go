package http

import (
	"context"
	"strings"
	"time"

	"consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/auth/domain/repository"
	"consultancy-portal/internal/auth/usecase"
	"consultancy-portal/internal/shared/contextkeys"
	"consultancy-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const claimsLocal = "claims"

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.AuthUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits requests per client per minute
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID assigns X-Request-ID when the client sent none
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// RequestContext copies the request ID assigned by RequestID into the user context.
func (m *AuthMiddleware) RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// Protect returns middleware that requires a valid admin or student token
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFrom(c); ok {
			return c.Next()
		}
		token, err := m.extractToken(c)
		if err != nil {
			return unauthorized(c, "Authentication required")
		}
		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Invalid token")
		}
		m.attach(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and continues anonymously otherwise
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil || token == "" {
			return c.Next()
		}
		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Next()
		}
		m.attach(c, claims)
		return c.Next()
	}
}

// RequireRole returns middleware that requires a specific role
func (m *AuthMiddleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFrom(c); !ok {
			token, err := m.extractToken(c)
			if err != nil {
				return unauthorized(c, "Authentication required")
			}
			claims, err := m.usecase.ValidateToken(c.UserContext(), token)
			if err != nil {
				return unauthorized(c, "Invalid token")
			}
			m.attach(c, claims)
		}
		return checkRole(c, role)
	}
}

func (m *AuthMiddleware) attach(c *fiber.Ctx, claims *repository.Claims) {
	c.Locals(claimsLocal, claims)
	ctx := c.UserContext()
	ctx = utils.WithUserID(ctx, claims.Subject)
	ctx = utils.WithUserEmail(ctx, claims.Email)
	ctx = utils.WithUserRole(ctx, claims.Role)
	ctx = context.WithValue(ctx, contextkeys.ClaimsKey, claims)
	c.SetUserContext(ctx)
}

func checkRole(c *fiber.Ctx, role string) error {
	claims, _ := ClaimsFrom(c)
	if !claims.HasRole(role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "Insufficient permissions",
		})
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}

// extractToken extracts the token from Authorization header, cookie or query
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}
	if token := c.Cookies(m.cookieName); token != "" {
		return token, nil
	}
	// WebSocket clients cannot set headers from the browser.
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "No authentication token found")
}

// ClaimsFrom returns the claims attached by Protect or OptionalAuth
func ClaimsFrom(c *fiber.Ctx) (*repository.Claims, bool) {
	claims, ok := c.Locals(claimsLocal).(*repository.Claims)
	return claims, ok && claims != nil
}

// PrincipalFrom returns the authenticated caller, if any
func PrincipalFrom(c *fiber.Ctx) (model.Principal, bool) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return model.Principal{}, false
	}
	return claims.Principal(), true
}

// PrincipalFromContext returns the caller stored in a request context
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	claims, ok := ctx.Value(contextkeys.ClaimsKey).(*repository.Claims)
	if !ok || claims == nil {
		return model.Principal{}, false
	}
	return claims.Principal(), true
}
