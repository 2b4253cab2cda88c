package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-api/internal/domain"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

type stubLoader map[string]*domain.User

func (s stubLoader) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func buildTestApp(tm *TokenManager, users stubLoader) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			body := fiber.Map{"message": de.Message}
			for k, v := range de.Details {
				body[k] = v
			}
			return c.Status(de.HTTPStatus).JSON(body)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"id": p.UserID()})
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func bearer(t *testing.T, tm *TokenManager, id string, role domain.Role) string {
	t.Helper()
	session, err := tm.GenerateToken(id, role)
	require.NoError(t, err)
	return "Bearer " + session.Token
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	users := stubLoader{
		"active":     {ID: "active", Role: domain.RoleUser, IsActive: true, IsVerified: true},
		"admin":      {ID: "admin", Role: domain.RoleAdmin, IsActive: true, IsVerified: true},
		"inactive":   {ID: "inactive", Role: domain.RoleUser, IsActive: false, IsVerified: true},
		"unverified": {ID: "unverified", Role: domain.RoleUser, IsActive: true, IsVerified: false},
	}
	app := buildTestApp(tm, users)

	t.Run("missing header", func(t *testing.T) {
		resp, _ := doRequest(t, app, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doRequest(t, app, "/me", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deleted user", func(t *testing.T) {
		resp, _ := doRequest(t, app, "/me", bearer(t, tm, "ghost", domain.RoleUser))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("active user", func(t *testing.T) {
		resp, body := doRequest(t, app, "/me", bearer(t, tm, "active", domain.RoleUser))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "active", body["id"])
	})

	t.Run("inactive user", func(t *testing.T) {
		resp, _ := doRequest(t, app, "/me", bearer(t, tm, "inactive", domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unverified user", func(t *testing.T) {
		resp, body := doRequest(t, app, "/me", bearer(t, tm, "unverified", domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, false, body["isVerified"])
	})

	t.Run("role comes from the stored account", func(t *testing.T) {
		resp, _ := doRequest(t, app, "/admin", bearer(t, tm, "active", domain.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doRequest(t, app, "/admin", bearer(t, tm, "admin", domain.RoleAdmin))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
