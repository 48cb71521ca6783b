package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// AdminMiddleware gates privileged routes behind the admin session.
type AdminMiddleware struct {
	session *Session
}

// NewAdminMiddleware constructs middleware.
func NewAdminMiddleware(session *Session) *AdminMiddleware {
	return &AdminMiddleware{session: session}
}

// Handle requires a valid bearer session token and a live session.
func (m *AdminMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	if !m.session.ValidateToken(parts[1]) {
		return apperrors.NewUnauthorized("invalid token")
	}
	if !m.session.IsAuthenticated(c.UserContext()) {
		return apperrors.NewUnauthorized("session expired")
	}
	return c.Next()
}
