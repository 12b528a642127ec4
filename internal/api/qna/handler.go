package qna

import (
	"context"

	"judge-qna/config"
	"judge-qna/internal/core/dispatch"
	"judge-qna/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// Handler exposes a configured Dispatcher over HTTP.
type Handler struct {
	dispatcher *dispatch.Dispatcher
}

func NewHandler(d *dispatch.Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// Handle decodes the request body, dispatches it and writes the result.
// Anything unexpected, including a malformed body, collapses to the
// generic 500 payload so no raw fault ever reaches the caller.
func (h *Handler) Handle(c fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{
				"panic": r,
				"path":  c.Path(),
			}).Errorf("%v: recovered in endpoint handler", config.ModuleQnA)
			err = internalError(c)
		}
	}()

	payload, decodeErr := dispatch.DecodePayload(c.Body())
	if decodeErr != nil {
		logger.Error(decodeErr, "%v: request body decode failed", config.ModuleQnA)
		return internalError(c)
	}

	body, status := h.dispatcher.Handle(context.Background(), payload)
	return c.Status(status).JSON(body)
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dispatch.ErrorBody{Error: dispatch.MsgInternalError})
}
