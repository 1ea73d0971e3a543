package http

import (
	stderrors "errors"
	"strings"

	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"
	"consultancy-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionHeader carries the browsing session that owns a cursor chain.
const SessionHeader = "X-Session-ID"

// SessionMiddleware puts the caller's browsing session into the request context,
// minting one when the header is absent. The session is echoed back so the
// client can keep paging with the same chain.
func SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(SessionHeader))
		if sessionID == "" || len(sessionID) > 128 {
			sessionID = uuid.NewString()
		}
		c.Set(SessionHeader, sessionID)
		c.SetUserContext(utils.WithSessionID(c.UserContext(), sessionID))
		return c.Next()
	}
}

// ErrorHandler is the fiber error handler for the portal. It renders errors
// that escape a handler in the same shape handlers use.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, log, err, "request failed")
	}
}

// respondError maps err onto its HTTP status and writes the JSON error body.
func respondError(c *fiber.Ctx, log logger.Logger, err error, message string) error {
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   "request_failed",
			"message": fe.Message,
		})
	}

	appErr := errors.WrapError(err, message)
	status := errors.HTTPStatus(err)

	entry := log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Errorf("%s: %v", message, err)
	} else {
		entry.Debugf("%s: %v", message, err)
	}

	body := fiber.Map{
		"error":   strings.ToLower(string(appErr.Type)),
		"message": appErr.Message,
		"code":    appErr.Code,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "invalid_request_body",
		"message": message,
		"code":    "invalid_input",
	})
}
