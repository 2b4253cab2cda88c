package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/observability"
	"github.com/storefront-labs/storefront-api/internal/service"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

// MiddlewareConfig tunes the global middleware chain.
type MiddlewareConfig struct {
	Timeout     time.Duration
	CORSOrigins string
	// ExposeInternalErrors puts the raw cause of 5xx errors in the response.
	ExposeInternalErrors bool
}

// RegisterMiddlewares attaches global middlewares such as logging and error handling.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics, cfg.ExposeInternalErrors))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func corsOrigins(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "*"
	}
	return raw
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, exposeInternal bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, logger, metrics, err, exposeInternal)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error, exposeInternal bool) error {
	domainErr := apperrors.ToDomainError(translateError(err))
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

	message := domainErr.Message
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(domainErr))
		if exposeInternal && domainErr.Err != nil {
			message = domainErr.Err.Error()
		}
	}

	response := fiber.Map{}
	for k, v := range domainErr.Details {
		response[k] = v
	}
	response["message"] = message
	return c.Status(domainErr.HTTPStatus).JSON(response)
}

// translateError maps service sentinels onto HTTP-facing errors.
func translateError(err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		var details map[string]any
		if len(validation.Fields) > 0 {
			details = map[string]any{"fields": validation.Fields}
		}
		return apperrors.NewValidationError(validation.Message, details)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NewNotFound("User", nil)
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFound("Resource", nil)
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewValidationError("User already exists", nil)
	case errors.Is(err, domain.ErrAlreadyVerified):
		return apperrors.NewValidationError("Email already verified", nil)
	case errors.Is(err, domain.ErrInvalidCode):
		return apperrors.NewValidationError("Invalid OTP", nil)
	case errors.Is(err, domain.ErrCodeExpired):
		return apperrors.NewValidationError("OTP expired", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("Invalid credentials")
	case errors.Is(err, domain.ErrAccountInactive):
		return apperrors.NewForbidden("Account is deactivated", nil)
	case errors.Is(err, domain.ErrEmailNotVerified):
		return apperrors.NewForbidden("Please verify your email first", map[string]any{"isVerified": false})
	case errors.Is(err, domain.ErrSelfDeactivation):
		return apperrors.NewValidationError("You cannot deactivate your own account", nil)
	case errors.Is(err, domain.ErrNotConfigured):
		return apperrors.NewServiceUnavailable("This feature is not configured")
	case errors.Is(err, service.ErrInvalidWorkbook):
		return apperrors.NewValidationError("Invalid Excel file", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewDomainError("TIMEOUT", "Request timed out", fiber.StatusGatewayTimeout, nil)
	}
	return err
}
