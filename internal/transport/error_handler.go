package transport

import (
	"errors"
	"net/http"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/observability"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders errors the handlers did not map themselves.
// Unknown errors become GENERIC_ERROR without leaking their text.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := http.StatusText(status)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		log := observability.WithContextLogger(logger, c.UserContext()).With(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status >= fiber.StatusInternalServerError {
			log.Error("request error")
		} else {
			log.Info("request rejected")
		}

		return c.Status(status).JSON(fiber.Map{
			"code":    codeForStatus(status).String(),
			"message": message,
		})
	}
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case fiber.StatusBadRequest:
		return domain.CodeValidation
	case fiber.StatusNotFound:
		return domain.CodeNotFound
	default:
		return domain.CodeGeneric
	}
}
