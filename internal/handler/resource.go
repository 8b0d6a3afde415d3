package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/patch"
	"shopapi/internal/service"
)

// resource implements the read, patch and delete endpoints shared by every
// collection. param names the path parameter holding the record id.
type resource[T any] struct {
	svc   service.ItemService[T]
	log   *slog.Logger
	param string
}

func (r resource[T]) list(c echo.Context) error {
	items, err := r.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, r.log, err)
	}
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, items)
}

func (r resource[T]) get(c echo.Context) error {
	item, err := r.svc.Get(c.Request().Context(), c.Param(r.param))
	if err != nil {
		return fail(c, r.log, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (r resource[T]) patch(c echo.Context) error {
	var ops []patch.Operation
	if err := c.Bind(&ops); err != nil {
		return badRequest("body must be a list of {propName, value} operations")
	}
	for i := range ops {
		if err := c.Validate(&ops[i]); err != nil {
			return badRequest(err.Error())
		}
	}

	res, err := r.svc.Patch(c.Request().Context(), c.Param(r.param), ops)
	if err != nil {
		return fail(c, r.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (r resource[T]) remove(c echo.Context) error {
	res, err := r.svc.Delete(c.Request().Context(), c.Param(r.param))
	if err != nil {
		return fail(c, r.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
