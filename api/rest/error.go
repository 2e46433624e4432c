package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"transcoder/api/model"
	"transcoder/shared/apperr"
	"transcoder/shared/log"
)

// ErrorHandler renders every error as model.ErrorResponse. Server-side failures are
// logged, client errors are not.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		resp := model.ErrorResponse{Error: "Internal server error", Message: err.Error()}

		var fe *fiber.Error
		if e, ok := apperr.As(err); ok {
			code = e.Code
			resp = model.ErrorResponse{Error: e.Summary, Message: e.Message, Usage: e.Usage}
		} else if errors.As(err, &fe) {
			code = fe.Code
			resp = model.ErrorResponse{Error: fe.Message}
		}

		if code >= fiber.StatusInternalServerError {
			log.LoggerWithTrace(c.UserContext(), logger).Error("Request failed",
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(resp)
	}
}
