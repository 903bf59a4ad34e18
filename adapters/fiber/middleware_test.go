package fiber

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estante-app/estante/core"
	"github.com/estante-app/estante/session"
)

func newTestApp(t *testing.T, backend *session.FakeAPI) (*fiber.App, *session.Manager) {
	t.Helper()

	manager := session.NewManager(session.NewFakeStore(), backend)
	gate := session.NewGate(manager, backend)
	t.Cleanup(gate.Close)
	guard := NewGuard(manager, gate)

	app := fiber.New()
	app.Get("/library", guard.RequireAuth(), func(c fiber.Ctx) error {
		id, ok := IdentityFromCtx(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"name": id.DisplayName})
	})
	app.Get("/admin", guard.RequireAdmin(), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, manager
}

func TestGuard_RequireAuth(t *testing.T) {
	app, manager := newTestApp(t, session.NewFakeAPI())

	resp, err := app.Test(httptest.NewRequest("GET", "/library", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	require.NoError(t, manager.Login("tok123", core.RoleReader, "Ana", "", 42))

	resp, err = app.Test(httptest.NewRequest("GET", "/library", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGuard_RequireAdmin(t *testing.T) {
	backend := session.NewFakeAPI()
	backend.VerifyAdminFn = func(_ context.Context, token string) (bool, error) {
		return token == "admin-token", nil
	}
	app, manager := newTestApp(t, backend)

	// Logged out: denied outright.
	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Logged in as a non-admin: the server-verified check denies.
	require.NoError(t, manager.Login("reader-token", core.RoleAdmin, "Ana", "", 1))
	resp, err = app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Admin account passes.
	manager.Logout()
	require.NoError(t, manager.Login("admin-token", core.RoleAdmin, "Root", "", 2))
	resp, err = app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
