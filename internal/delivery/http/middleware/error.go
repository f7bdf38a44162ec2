package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "brightsteps/internal/delivery/context"
	"brightsteps/internal/delivery/http/response"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError is echo's HTTPErrorHandler. Client errors are rendered verbatim;
// server faults are logged in full and rendered without internal detail.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	appErr, isAppErr := errors.AsType[domainerrors.AppError](err)
	if isAppErr && !domainerrors.IsServerFault(appErr) {
		_ = response.Fail(c, appErr)

		return
	}

	if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok && httpErr.Code < http.StatusInternalServerError {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, "")

		return
	}

	attrs := []any{
		slog.String("error", fmt.Sprintf("%+v", err)),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	}
	if isAppErr {
		attrs = append(attrs, slog.String("error_code", appErr.ErrorCode()), slog.String("details", appErr.Details()))
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
	logger.Error("Unhandled error", attrs...)

	_ = response.Fail(c, domainerrors.ErrInternalError)
}
