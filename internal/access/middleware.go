package access

import (
	"consultancy-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// ResourceFunc names the resource a request targets.
type ResourceFunc func(c *fiber.Ctx) string

// Fixed targets the same resource for every request.
func Fixed(resource string) ResourceFunc {
	return func(*fiber.Ctx) string { return resource }
}

// Param targets the resource named by a route parameter.
func Param(name string) ResourceFunc {
	return func(c *fiber.Ctx) string { return c.Params(name) }
}

// Require denies the request with 403, or 401 for anonymous callers, unless
// the policy allows op on the resource. It must run after the auth middleware
// has attached the caller, if any.
func (p *Policy) Require(op Operation, resource ResourceFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		subject := Subject{
			ID:    utils.GetUserIDOrDefault(ctx, ""),
			Role:  roleOrEmpty(c),
			Email: emailOrEmpty(c),
		}
		req := Request{
			Subject:    subject,
			Resource:   resource(c),
			Operation:  op,
			ResourceID: c.Params("id"),
			Method:     c.Method(),
			Path:       c.Path(),
		}
		if decision := p.Evaluate(req); decision.Allowed {
			return c.Next()
		}

		p.logger.WithContext(ctx).Debugf("access denied: %s %s on %q for %q", op, req.Resource, req.ResourceID, subject.ID)
		if subject.ID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authentication required",
				"code":    "unauthenticated",
			})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "You do not have access to this resource",
			"code":    "permission_denied",
		})
	}
}

func roleOrEmpty(c *fiber.Ctx) string {
	role, _ := utils.GetUserRoleFromContext(c.UserContext())
	return role
}

func emailOrEmpty(c *fiber.Ctx) string {
	email, _ := utils.GetUserEmailFromContext(c.UserContext())
	return email
}
