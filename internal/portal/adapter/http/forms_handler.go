package http

import (
	authhttp "consultancy-portal/internal/auth/adapter/http"
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/usecase"

	"github.com/gofiber/fiber/v2"
)

func (h *HTTPHandler) SubmitConsultation(c *fiber.Ctx) error {
	var req usecase.ConsultationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Failed to parse consultation request")
	}
	id, err := h.FormsUC.SubmitConsultation(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.Log, err, "failed to submit consultation")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *HTTPHandler) SubmitInquiry(c *fiber.Ctx) error {
	var req usecase.InquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Failed to parse inquiry")
	}
	id, err := h.FormsUC.SubmitInquiry(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.Log, err, "failed to submit inquiry")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RecordInterest records the signed-in student's interest in a college or
// university. A repeat request reports the existing lead with 200.
func (h *HTTPHandler) RecordInterest(c *fiber.Ctx) error {
	var req usecase.InterestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Failed to parse interest request")
	}

	student, err := h.currentStudent(c)
	if err != nil {
		return respondError(c, h.Log, err, "failed to load profile")
	}

	outcome, err := h.LeadUC.RecordInterest(c.UserContext(), *student, req)
	if err != nil {
		return respondError(c, h.Log, err, "failed to record interest")
	}
	status := fiber.StatusOK
	if outcome == usecase.OutcomeCreated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"outcome": outcome})
}

// currentStudent resolves the caller's stored profile, creating it from the token on first use.
func (h *HTTPHandler) currentStudent(c *fiber.Ctx) (*model.Student, error) {
	principal, ok := authhttp.PrincipalFrom(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	return h.ProfileUC.Resolve(c.UserContext(), model.Student{
		ID:      principal.ID,
		Name:    principal.Name,
		Email:   principal.Email,
		Picture: principal.Picture,
	})
}
