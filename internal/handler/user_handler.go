package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/repository"
	"shopapi/internal/service"
)

// UserHandler handles principal management.
type UserHandler struct {
	svc service.UserService
	log *slog.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// UserDeletedResponse reports the outcome of a user deletion.
type UserDeletedResponse struct {
	Message string                  `json:"message"`
	Data    repository.DeleteResult `json:"data"`
}

// Delete godoc
// @Summary Delete user by id
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} UserDeletedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	res, err := h.svc.DeleteUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, UserDeletedResponse{
		Message: "User deleted",
		Data:    res,
	})
}
