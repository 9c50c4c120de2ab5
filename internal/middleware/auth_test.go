package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"tokenadmin/internal/models"
	"tokenadmin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func newProtectedApp() *fiber.App {
	app := fiber.New()
	auth := NewAuthMiddleware(testSecret)
	app.Get("/drafts", auth.Handler, HasPermission(models.PermissionDraftsWrite), func(c *fiber.Ctx) error {
		claims, err := utils.GetAdminClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.UserID)
	})
	return app
}

func bearer(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	token, err := utils.GenerateToken(models.AdminClaims{UserID: "ops-7", Role: role}, testSecret, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: fiber.StatusUnauthorized},
		{name: "basic auth", header: "Basic b3BzOnB3", want: fiber.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: fiber.StatusUnauthorized},
		{name: "expired token", header: bearer(t, models.RoleAdmin, -time.Minute), want: fiber.StatusUnauthorized},
		{name: "missing permission", header: bearer(t, models.RoleAnalyst, time.Minute), want: fiber.StatusForbidden},
		{name: "admin", header: bearer(t, models.RoleAdmin, time.Minute), want: fiber.StatusOK},
	}

	app := newProtectedApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/drafts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHasPermission_WithoutClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/", HasPermission(models.PermissionFeesRead), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
