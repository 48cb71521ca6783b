package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// BroadcastsHandler manages broadcast message endpoints.
type BroadcastsHandler struct {
	broadcasts *service.BroadcastService
}

// NewBroadcastsHandler constructs handler.
func NewBroadcastsHandler(broadcasts *service.BroadcastService) *BroadcastsHandler {
	return &BroadcastsHandler{broadcasts: broadcasts}
}

// ListActive GET /broadcasts. Messages already dismissed on this device are
// filtered out here; the service itself only knows active/expired.
func (h *BroadcastsHandler) ListActive(c *fiber.Ctx) error {
	messages, err := h.broadcasts.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	dismissed, err := h.broadcasts.Dismissed(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.BroadcastResponse, 0, len(messages))
	for _, msg := range messages {
		if _, seen := dismissed[msg.ID]; seen {
			continue
		}
		items = append(items, broadcastResponse(msg))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dismiss POST /broadcasts/:id/dismiss.
func (h *BroadcastsHandler) Dismiss(c *fiber.Ctx) error {
	if err := h.broadcasts.Dismiss(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Create POST /admin/broadcasts (admin).
func (h *BroadcastsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg := &domain.BroadcastMessage{
		Title:     req.Title,
		Body:      req.Body,
		Kind:      req.Kind,
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.broadcasts.Create(c.UserContext(), msg); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": broadcastResponse(*msg)})
}

// Deactivate DELETE /admin/broadcasts/:id (admin).
func (h *BroadcastsHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.broadcasts.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func broadcastResponse(msg domain.BroadcastMessage) dto.BroadcastResponse {
	return dto.BroadcastResponse{
		ID:        msg.ID,
		Title:     msg.Title,
		Body:      msg.Body,
		Kind:      msg.Kind,
		Active:    msg.Active,
		CreatedAt: msg.CreatedAt,
		ExpiresAt: msg.ExpiresAt,
	}
}
