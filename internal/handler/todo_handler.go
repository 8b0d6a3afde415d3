package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"shopapi/internal/model"
	"shopapi/internal/service"
)

// TodoHandler handles the todos collection.
type TodoHandler struct {
	resource[model.Todo]
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(svc service.ItemService[model.Todo], log *slog.Logger) *TodoHandler {
	return &TodoHandler{resource[model.Todo]{svc: svc, log: log, param: "todoId"}}
}

// CreateTodoRequest represents a todo creation request. Date defaults to now.
type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Date        *time.Time `json:"date"`
}

// CreatedTodo is a new todo with a link to itself.
type CreatedTodo struct {
	model.Todo
	Request RequestLink `json:"request"`
}

// TodoCreatedResponse is returned after a todo is created.
type TodoCreatedResponse struct {
	Message     string      `json:"message"`
	CreatedTodo CreatedTodo `json:"createdTodo"`
}

// List godoc
// @Summary List todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	return h.list(c)
}

// Create godoc
// @Summary Create todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTodoRequest true "Todo payload"
// @Success 201 {object} TodoCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	var req CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	todo := &model.Todo{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Date != nil {
		todo.Date = *req.Date
	}
	if err := h.svc.Create(c.Request().Context(), todo); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, TodoCreatedResponse{
		Message: "Created Todo Successfully",
		CreatedTodo: CreatedTodo{
			Todo:    *todo,
			Request: linkTo(c, "/todos/"+todo.ID.String()),
		},
	})
}

// Get godoc
// @Summary Get todo by id
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Success 200 {object} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{todoId} [get]
func (h *TodoHandler) Get(c echo.Context) error {
	return h.get(c)
}

// Patch godoc
// @Summary Partially update todo
// @Description Applies the operations in order; the last value for a field wins.
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Param request body []patch.Operation true "Edit operations"
// @Success 200 {object} patch.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos/{todoId} [patch]
func (h *TodoHandler) Patch(c echo.Context) error {
	return h.patch(c)
}

// Delete godoc
// @Summary Delete todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Success 200 {object} repository.DeleteResult
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos/{todoId} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	return h.remove(c)
}
