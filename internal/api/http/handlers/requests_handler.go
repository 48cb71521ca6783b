package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// RequestsHandler manages design request endpoints.
type RequestsHandler struct {
	intake *service.IntakeService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(intake *service.IntakeService) *RequestsHandler {
	return &RequestsHandler{intake: intake}
}

// Submit POST /requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.intake.Submit(c.UserContext(), service.RequestDraft{
		Name:        req.Name,
		Handle:      req.Handle,
		Email:       req.Email,
		Service:     req.Service,
		Description: req.Description,
		Budget:      req.Budget,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// List GET /requests (admin).
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	requests, err := h.intake.ListRequests(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Decide POST /requests/:id/decision (admin).
func (h *RequestsHandler) Decide(c *fiber.Ctx) error {
	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.intake.Decide(c.UserContext(), c.Params("id"), req.Decision, req.Notes)
	if err != nil {
		return err
	}
	if updated == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

func requestResponse(req *domain.DesignRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:          req.ID,
		Name:        req.Name,
		Handle:      req.Handle,
		Email:       req.Email,
		Service:     req.Service,
		Description: req.Description,
		Budget:      req.Budget,
		ContactInfo: req.ContactInfo,
		AdminNotes:  req.AdminNotes,
		Status:      req.Status,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}
