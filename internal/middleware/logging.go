package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/splitpot/backend/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()
		memberID := logger.GetMemberIDFromContext(c)

		details := map[string]interface{}{
			"method":       c.Method(),
			"path":         c.Path(),
			"status_code":  statusCode,
			"latency_ms":   latency.Milliseconds(),
			"user_agent":   c.Get("User-Agent"),
			"ip":           c.IP(),
			"request_body": logger.GetRequestBodySummary(c),
			"request_id":   requestID,
		}

		if memberID != nil {
			if statusCode >= 400 {
				logger.ErrorWithMember(*memberID, "http_request", err, details)
			} else {
				logger.InfoWithMember(*memberID, "http_request", details)
			}
		} else {
			if statusCode >= 400 {
				logger.Error("http_request", err, details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		statusCode := c.Response().StatusCode()
		memberID := logger.GetMemberIDFromContext(c)

		if statusCode == fiber.StatusForbidden || statusCode == fiber.StatusConflict {
			details := map[string]interface{}{
				"method":    c.Method(),
				"path":      c.Path(),
				"ip":        c.IP(),
				"member_id": memberID,
				"reason":    "access_denied",
			}
			if statusCode == fiber.StatusConflict {
				details["reason"] = "conflict"
			}

			if memberID != nil {
				logger.WarnWithMember(*memberID, "access_denied", details)
			} else {
				logger.Warn("access_denied_unauthenticated", details)
			}
		}

		return err
	}
}
