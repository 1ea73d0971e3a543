package http

import (
	"errors"
	"time"

	"consultancy-portal/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
)

// CookieConfig describes the token cookie set on login
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	cookie  CookieConfig
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cookie CookieConfig) *AuthHTTPHandler {
	return &AuthHTTPHandler{usecase: uc, cookie: cookie}
}

// SetupAuthRoutesWithMiddleware mounts the auth routes under router
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware, loginRateLimit int) {
	router.Post("/admin/login", middleware.RateLimiter(loginRateLimit), h.AdminLogin)

	protected := router.Group("/", middleware.Protect())
	protected.Post("/logout", h.Logout)
	protected.Get("/me", h.GetCurrentUser)
}

// AdminLogin handles administrator login
func (h *AuthHTTPHandler) AdminLogin(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_body",
			"message": "Invalid request body",
		})
	}

	response, err := h.usecase.AdminLogin(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation_failed",
				"message": err.Error(),
			})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_credentials",
				"message": "Invalid email or password",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal",
				"message": "Login failed",
			})
		}
	}

	h.setCookie(c, response.Token)
	return c.JSON(response)
}

// Logout clears the token cookie. Tokens are stateless and expire on their own.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the caller described by the token
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "Authentication required")
	}
	return c.JSON(fiber.Map{"user": principal})
}

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   h.cookie.MaxAge,
		Secure:   h.cookie.Secure,
		HTTPOnly: h.cookie.HTTPOnly,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(time.Duration(h.cookie.MaxAge) * time.Second),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HTTPOnly: h.cookie.HTTPOnly,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
