package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"shopapi/internal/model"
	"shopapi/internal/service"
)

// ProductHandler handles the products collection.
type ProductHandler struct {
	resource[model.Product]
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ItemService[model.Product], log *slog.Logger) *ProductHandler {
	return &ProductHandler{resource[model.Product]{svc: svc, log: log, param: "productId"}}
}

// CreateProductRequest represents a product creation request.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"19.99"`
}

// CreatedProduct is a new product with a link to itself.
type CreatedProduct struct {
	model.Product
	Request RequestLink `json:"request"`
}

// ProductCreatedResponse is returned after a product is created.
type ProductCreatedResponse struct {
	Message        string         `json:"message"`
	CreatedProduct CreatedProduct `json:"createdProduct"`
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	return h.list(c)
}

// Create godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product payload"
// @Success 201 {object} ProductCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
	}
	if err := h.svc.Create(c.Request().Context(), product); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, ProductCreatedResponse{
		Message: "Created Product Successfully",
		CreatedProduct: CreatedProduct{
			Product: *product,
			Request: linkTo(c, "/products/"+product.ID.String()),
		},
	})
}

// Get godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{productId} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	return h.get(c)
}

// Patch godoc
// @Summary Partially update product
// @Description Applies the operations in order; the last value for a field wins.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param request body []patch.Operation true "Edit operations"
// @Success 200 {object} patch.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products/{productId} [patch]
func (h *ProductHandler) Patch(c echo.Context) error {
	return h.patch(c)
}

// Delete godoc
// @Summary Delete product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} repository.DeleteResult
// @Failure 401 {object} errors.ErrorResponse
// @Router /products/{productId} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	return h.remove(c)
}
