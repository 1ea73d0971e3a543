package http

import (
	"consultancy-portal/internal/portal/domain/model"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the caller's profile, creating it on first visit.
func (h *HTTPHandler) GetProfile(c *fiber.Ctx) error {
	student, err := h.currentStudent(c)
	if err != nil {
		return respondError(c, h.Log, err, "failed to load profile")
	}
	return c.JSON(student)
}

func (h *HTTPHandler) UpdateProfile(c *fiber.Ctx) error {
	var update model.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "Failed to parse profile update")
	}

	current, err := h.currentStudent(c)
	if err != nil {
		return respondError(c, h.Log, err, "failed to load profile")
	}
	student, err := h.ProfileUC.Update(c.UserContext(), current.ID, update)
	if err != nil {
		return respondError(c, h.Log, err, "failed to update profile")
	}
	return c.JSON(student)
}
