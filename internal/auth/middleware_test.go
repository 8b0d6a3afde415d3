package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatedServer(t *testing.T, svc *JWTService) *echo.Echo {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	g := e.Group("", Middleware(svc, log))
	g.GET("/whoami", func(c echo.Context) error {
		fromEcho, ok := FromContext(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		fromCtx, ok := ClaimsFromContext(c.Request().Context())
		if !ok || fromCtx != fromEcho {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, map[string]string{"email": fromCtx.Email})
	})
	return e
}

func TestMiddleware(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc := NewJWTService("gate-secret", time.Hour)

	valid, err := svc.Issue("user-1", "a@b.com")
	require.NoError(t, err)
	expired, err := NewJWTService("gate-secret", time.Hour, WithClock(func() time.Time { return issuedAt })).Issue("user-1", "a@b.com")
	require.NoError(t, err)
	foreign, err := NewJWTService("other-secret", time.Hour).Issue("user-1", "a@b.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "valid token", header: "Bearer " + valid, status: http.StatusOK},
		{name: "missing header", header: "", status: http.StatusUnauthorized, code: "MISSING_CREDENTIALS"},
		{name: "missing scheme", header: valid, status: http.StatusUnauthorized, code: "MISSING_CREDENTIALS"},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, code: "TOKEN_EXPIRED"},
		{name: "wrong secret", header: "Bearer " + foreign, status: http.StatusUnauthorized, code: "INVALID_SIGNATURE"},
		{name: "garbage", header: "Bearer abc", status: http.StatusUnauthorized, code: "MALFORMED_TOKEN"},
	}

	e := newGatedServer(t, svc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.status == http.StatusOK {
				assert.Equal(t, "a@b.com", body["email"])
				return
			}
			assert.Equal(t, "Auth failed", body["message"])
			assert.Equal(t, tt.code, body["code"])
		})
	}
}
