package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bus-booking-service/internal/domain"
	apperrors "github.com/spec-kit/bus-booking-service/pkg/util"
)

// RequireRoles restricts a route to the given roles. Registered as available
// middleware; no ticket route applies it in this version.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !domain.Authorize(allowed, principal.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
