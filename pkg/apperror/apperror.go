package apperror

import (
	"errors"
	"fmt"

	"judge-qna/config"
	"judge-qna/pkg/apperror/status"
	"judge-qna/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// ErrorResponse is the standardized HTTP error payload for the
// management endpoints (upload, ingest, health). The QnA endpoint has
// its own fixed wire format and does not go through this package.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

type SuccessMessage struct {
	Code       status.SuccessCode `json:"code"`
	Message    string             `json:"message"`
	TrackingID string             `json:"tracking_id"`
	Data       any                `json:"data"`
}

// WriteError logs a structured warning and returns a standardized JSON error.
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

// BadRequest writes a 400 with a domain-prefixed error code.
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	errorCode := fmt.Sprintf("QA-%d", code)
	return WriteError(module, c, fiber.StatusBadRequest, errorCode, message)
}

// InternalError writes a 500. A CodedError keeps its own code on the
// wire; anything else falls back to the generic internal code.
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	code := status.Internal
	var coded status.CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	return WriteError(module, c, fiber.StatusInternalServerError, fmt.Sprintf("QA-%d", code), err.Error())
}

// Success writes a standardized JSON success envelope.
func Success(module config.Module, c fiber.Ctx, response SuccessMessage) error {
	logger.WithFields(map[string]interface{}{
		"module": module,
		"code":   response.Code,
		"path":   c.Path(),
	}).Debugf("http success")

	return c.Status(fiber.StatusOK).JSON(response)
}
