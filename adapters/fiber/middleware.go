// Package fiber provides route guards for Fiber frontends rendering
// the catalog, backed by the session manager and authorization gate.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/estante-app/estante/core"
	"github.com/estante-app/estante/session"
)

const identityKey = "estante_identity"

// Guard wraps protected routes. Authenticated-only routes trust local
// session state; admin-only routes block on the server-verified check.
type Guard struct {
	manager *session.Manager
	gate    *session.Gate
}

func NewGuard(manager *session.Manager, gate *session.Gate) *Guard {
	return &Guard{manager: manager, gate: gate}
}

// RequireAuth rejects requests while the session is unauthenticated and
// stores the identity in the context for downstream handlers.
func (g *Guard) RequireAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := g.manager.Identity()
		if !id.Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": core.ErrNotAuthenticated.Error(),
			})
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireAdmin waits for the gate's server-verified admin decision and
// rejects anything but Allowed. A check still pending when the request
// context ends denies access.
func (g *Guard) RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		if g.gate.Wait(c.Context(), session.AdminOnly) != session.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": core.ErrAdminCheckFailed.Error(),
			})
		}

		c.Locals(identityKey, g.manager.Identity())
		return c.Next()
	}
}

// IdentityFromCtx returns the identity a guard stored for this request.
func IdentityFromCtx(c fiber.Ctx) (core.Identity, bool) {
	id, ok := c.Locals(identityKey).(core.Identity)
	return id, ok
}
