package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// AdminHandler manages session and settings endpoints.
type AdminHandler struct {
	session  *auth.Session
	guard    *auth.LoginGuard
	settings *service.SettingsService
	notifier *service.Notifier
}

// NewAdminHandler constructs handler.
func NewAdminHandler(session *auth.Session, guard *auth.LoginGuard, settings *service.SettingsService, notifier *service.Notifier) *AdminHandler {
	return &AdminHandler{session: session, guard: guard, settings: settings, notifier: notifier}
}

// Login POST /admin/login. Three consecutive failures lock further attempts
// until Unlock is called; the lockout lives outside the session itself.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	if h.guard.Locked() {
		return apperrors.NewForbidden("too many failed attempts")
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, ok := h.session.Authenticate(c.UserContext(), req.Secret)
	if !ok {
		h.guard.RecordFailure()
		return apperrors.NewUnauthorized("invalid secret")
	}
	h.guard.Reset()

	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.session.TTL()),
	}})
}

// Unlock POST /admin/unlock. Explicit re-entry after a lockout.
func (h *AdminHandler) Unlock(c *fiber.Ctx) error {
	h.guard.Reset()
	return c.SendStatus(fiber.StatusNoContent)
}

// Logout POST /admin/logout (admin).
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	h.session.Logout(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

// Extend POST /admin/extend (admin).
func (h *AdminHandler) Extend(c *fiber.Ctx) error {
	token, ok := h.session.Extend(c.UserContext())
	if !ok {
		return apperrors.NewUnauthorized("no active session")
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.session.TTL()),
	}})
}

// SetWebhook PUT /admin/settings/webhook (admin).
func (h *AdminHandler) SetWebhook(c *fiber.Ctx) error {
	var req dto.WebhookSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.SetWebhookURL(c.UserContext(), req.URL); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveWebhook DELETE /admin/settings/webhook (admin).
func (h *AdminHandler) RemoveWebhook(c *fiber.Ctx) error {
	if err := h.settings.RemoveWebhookURL(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TestWebhook POST /admin/settings/webhook/test (admin).
func (h *AdminHandler) TestWebhook(c *fiber.Ctx) error {
	delivered := h.notifier.Notify(c.UserContext(), service.KindAdminAlert, service.NotificationPayload{
		Title: "Test notification",
		Body:  "Webhook connectivity check",
	})
	if !delivered {
		return apperrors.NewNotificationError(nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"delivered": true}})
}

// SetRemote PUT /admin/settings/remote (admin).
func (h *AdminHandler) SetRemote(c *fiber.Ctx) error {
	var req dto.RemoteSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.SetRemote(c.UserContext(), req.URL, req.Key); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveRemote DELETE /admin/settings/remote (admin).
func (h *AdminHandler) RemoveRemote(c *fiber.Ctx) error {
	if err := h.settings.RemoveRemote(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TestRemote POST /admin/settings/remote/test (admin).
func (h *AdminHandler) TestRemote(c *fiber.Ctx) error {
	if err := h.settings.TestRemote(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"data": fiber.Map{"reachable": false, "error": err.Error()},
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reachable": true}})
}
