package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/config"
	"parcel-ledger/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "parcel-ledger/docs/swagger"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// checks are run by GET /health.
	checks map[string]HealthCheck
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Kind classifies the failure (validation, not_found, conflict, ...).
	Kind string `json:"kind"`
	// Code is the machine-readable error identifier.
	Code string `json:"code"`
	// Message is the error description.
	Message string `json:"message"`
	// Field names the offending input field, if any.
	Field string `json:"field,omitempty"`
	// Details carries structured context such as dependent record counts.
	Details map[string]any `json:"details,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "parcel-ledger",
		ErrorHandler:          ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	s := &Server{
		App:    app,
		cfg:    cfg,
		checks: make(map[string]HealthCheck),
	}
	app.Get("/health", s.health)

	return s
}

// AddHealthCheck registers a dependency probe reported by GET /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	result := fiber.Map{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			result[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	return c.Status(status).JSON(result)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

// ErrorHandler renders errors returned by handlers as ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	rayID, _ := c.Locals("requestid").(string)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Kind:    kindForStatus(fe.Code),
			Code:    "http_error",
			Message: fe.Message,
			RayID:   rayID,
		})
	}

	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}

	resp := ErrorResponse{
		Kind:    string(e.Kind),
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
		Details: e.Details,
		RayID:   rayID,
	}

	if e.Kind == apperr.KindInternal {
		logger.Get().Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ray_id", rayID),
		)
		resp.Code = "internal"
		resp.Message = "Internal server error"
	}

	return c.Status(apperr.HTTPStatus(e.Kind)).JSON(resp)
}

func kindForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return string(apperr.KindNotFound)
	case status == fiber.StatusUnauthorized:
		return string(apperr.KindUnauthenticated)
	case status == fiber.StatusForbidden:
		return string(apperr.KindPermission)
	case status >= 500:
		return string(apperr.KindInternal)
	default:
		return string(apperr.KindValidation)
	}
}
