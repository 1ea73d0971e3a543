package http

import (
	"consultancy-portal/internal/portal/domain/model"

	"github.com/gofiber/fiber/v2"
)

// GetPublicSettings returns the site settings without mail credentials.
func (h *HTTPHandler) GetPublicSettings(c *fiber.Ctx) error {
	settings, err := h.SettingsUC.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.Log, err, "failed to load settings")
	}
	return c.JSON(settings.Public())
}

func (h *HTTPHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.SettingsUC.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.Log, err, "failed to load settings")
	}
	return c.JSON(settings)
}

func (h *HTTPHandler) SaveSettings(c *fiber.Ctx) error {
	var settings model.SiteSettings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "Failed to parse settings")
	}
	saved, err := h.SettingsUC.Save(c.UserContext(), settings)
	if err != nil {
		return respondError(c, h.Log, err, "failed to save settings")
	}
	return c.JSON(saved)
}
