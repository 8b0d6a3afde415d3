package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"shopapi/internal/handler"
	"shopapi/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Todos    *handler.TodoHandler
	// Metrics is optional; when set requests are recorded and /metrics is served.
	Metrics *metrics.Metrics
}

// Register wires routes and middleware. gate guards every route that needs
// an authenticated principal.
func Register(e *echo.Echo, log *slog.Logger, gate echo.MiddlewareFunc, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(log)))
	// Metrics wraps Recover so requests that panic are still counted.
	if h.Metrics != nil {
		e.Use(h.Metrics.Middleware())
		e.GET("/metrics", h.Metrics.Handler())
	}
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	// Public routes
	user := e.Group("/user")
	user.POST("/signup", h.Auth.Signup)
	user.POST("/login", h.Auth.Login)

	// Secured routes (require JWT authentication)
	user.DELETE("/:userId", h.Users.Delete, gate)

	products := e.Group("/products", gate)
	products.GET("", h.Products.List)
	products.POST("", h.Products.Create)
	products.GET("/:productId", h.Products.Get)
	products.PATCH("/:productId", h.Products.Patch)
	products.DELETE("/:productId", h.Products.Delete)

	todos := e.Group("/todos", gate)
	todos.GET("", h.Todos.List)
	todos.POST("", h.Todos.Create)
	todos.GET("/:todoId", h.Todos.Get)
	todos.PATCH("/:todoId", h.Todos.Patch)
	todos.DELETE("/:todoId", h.Todos.Delete)
}

func requestLoggerConfig(log *slog.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
