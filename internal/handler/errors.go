package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/errors"
)

// fail converts err into the HTTP error returned to the client. Storage and
// internal causes are logged here and never reach the response body.
func fail(c echo.Context, log *slog.Logger, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"kind", errors.KindOf(err).String(),
			"error", err,
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Message: message,
		Code:    "VALIDATION_ERROR",
	})
}

// RequestLink tells the client how to fetch a created record.
type RequestLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func linkTo(c echo.Context, path string) RequestLink {
	return RequestLink{
		Type: http.MethodGet,
		URL:  c.Scheme() + "://" + c.Request().Host + path,
	}
}
