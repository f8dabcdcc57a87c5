package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit emits one structured log line per request, tagged with the request
// id and, once authenticated, the calling account.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			// the error handler has not written the response yet
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID, _ := c.Locals(requestIDHeader).(string); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if accountID, _ := c.Locals(accountIDLocal).(string); accountID != "" {
			attrs = append(attrs, slog.String("account_id", accountID))
		}

		switch {
		case err == nil:
			logger.Info("request completed", attrs...)
		case status < fiber.StatusInternalServerError:
			logger.Warn("request completed", append(attrs, slog.String("error", err.Error()))...)
		default:
			logger.Error("request completed", append(attrs, slog.Any("error", err))...)
		}
		return err
	}
}
