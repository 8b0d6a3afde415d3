package auth

import (
	"errors"
	"log/slog"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "shopapi/internal/errors"
)

// ContextKey is the echo context key holding the verified *Claims.
const ContextKey = "user"

// Middleware is the auth gate for protected routes. It extracts the bearer
// token from the Authorization header, verifies it and attaches the claims to
// both the echo context and the request context. Any failure is a 401.
func Middleware(verifier TokenVerifier, log *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  ContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verifier.Verify(auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ContextKey).(*Claims)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithClaims(req.Context(), claims)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			rejected := rejection(err)
			log.DebugContext(c.Request().Context(), "request rejected",
				"path", c.Path(),
				"reason", rejected.Code,
			)
			httpErr := apperrors.MapErrorToHTTP(rejected)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
		},
	})
}

// FromContext returns the claims stored by Middleware.
func FromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok
}

// rejection narrows a gate failure to an authentication error. Extraction
// failures carry no application error and mean no usable token was sent.
func rejection(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindAuthentication {
		return appErr
	}
	return apperrors.ErrMissingCredentials
}
