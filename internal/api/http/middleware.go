package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// ErrorWriter renders every failure through the standard error envelope.
type ErrorWriter struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	debug   bool
}

// NewErrorWriter builds the shared error renderer.
func NewErrorWriter(logger *zap.Logger, metrics *observability.Metrics, debugMode bool) *ErrorWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorWriter{logger: logger, metrics: metrics, debug: debugMode}
}

// Write translates err and writes the envelope. It is usable as fiber.ErrorHandler
// and as the authorizer's reject handler.
func (w *ErrorWriter) Write(c *fiber.Ctx, err error) error {
	err = fromFiberError(err)
	status, body := apperrors.Translate(err, w.debug)

	w.metrics.RecordError(c.Path(), c.Method(), body.Error.ErrorCode)
	if status >= fiber.StatusInternalServerError {
		w.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("code", body.Error.ErrorCode),
			zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, writer *ErrorWriter, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics, auth.SubjectOf))
	app.Use(errorHandlingMiddleware(logger, writer))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, writer *ErrorWriter) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", stack))
				err = apperrors.NewPanicError(r, stack)
			}
			if err != nil {
				err = writer.Write(c, err)
			}
		}()
		return c.Next()
	}
}

// fromFiberError maps framework errors (unknown route, bad method, body limits) onto domain kinds.
func fromFiberError(err error) error {
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		return err
	}
	switch {
	case fiberErr.Code == fiber.StatusNotFound:
		return apperrors.NewNotFound("Resource")
	case fiberErr.Code >= fiber.StatusInternalServerError:
		return apperrors.NewInternalError(err)
	default:
		return apperrors.NewBadRequest(fiberErr.Message)
	}
}
