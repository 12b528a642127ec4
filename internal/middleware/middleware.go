package middleware

import (
	"runtime/debug"

	"judge-qna/internal/core/dispatch"
	"judge-qna/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// ConnectionLimiter caps the number of concurrently handled requests.
type ConnectionLimiter struct {
	limit    int
	waitlist chan struct{}
}

func NewConnectionLimiter(limit int) *ConnectionLimiter {
	return &ConnectionLimiter{
		limit:    limit,
		waitlist: make(chan struct{}, limit),
	}
}

func (cl *ConnectionLimiter) Acquire() bool {
	select {
	case cl.waitlist <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cl *ConnectionLimiter) Release() {
	select {
	case <-cl.waitlist:
	default:
	}
}

// ConnectionLimit rejects requests beyond the configured concurrency.
func ConnectionLimit(limiter *ConnectionLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !limiter.Acquire() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Server is at maximum capacity")
		}
		defer limiter.Release()
		return c.Next()
	}
}

// PanicRecovery converts any panic escaping a handler into the generic
// 500 body, with the stack logged for the operator.
func PanicRecovery() fiber.Handler {
	return func(c fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(map[string]interface{}{
					"panic":  r,
					"method": c.Method(),
					"path":   c.Path(),
					"ip":     c.IP(),
					"stack":  string(debug.Stack()),
				}).Errorf("panic recovered")

				err := c.Status(fiber.StatusInternalServerError).JSON(dispatch.ErrorBody{
					Error: dispatch.MsgInternalError,
				})
				if err != nil {
					logger.WithField("error", err).Errorf("failed to send error response")
				}
			}
		}()
		return c.Next()
	}
}
