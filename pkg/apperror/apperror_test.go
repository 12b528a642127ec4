package apperror

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"judge-qna/config"
	"judge-qna/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(raw)
}

func TestInternalError_KeepsCodedErrorCode(t *testing.T) {
	app := fiber.New()
	app.Get("/coded", func(c fiber.Ctx) error {
		err := status.New(status.StorageWriteFailed, errors.New("disk full"))
		return InternalError(config.ModuleUpload, c, err)
	})
	app.Get("/plain", func(c fiber.Ctx) error {
		return InternalError(config.ModuleUpload, c, errors.New("boom"))
	})

	code, body := get(t, app, "/coded")
	if code != 500 {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, `"error_code":"QA-1001"`) {
		t.Fatalf("coded error lost its code: %s", body)
	}

	_, body = get(t, app, "/plain")
	if !strings.Contains(body, `"error_code":"QA-1000"`) {
		t.Fatalf("plain error code = %s", body)
	}
}

func TestBadRequest_Envelope(t *testing.T) {
	app := fiber.New()
	app.Get("/bad", func(c fiber.Ctx) error {
		return BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	})

	code, body := get(t, app, "/bad")
	if code != 400 {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, `"error":"file is required"`) || !strings.Contains(body, `"error_code":"QA-1"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestSuccess_Envelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c fiber.Ctx) error {
		return Success(config.ModuleIngest, c, SuccessMessage{
			Code:    status.OK,
			Message: "done",
			Data:    map[string]int{"doc_id": 7},
		})
	})

	code, body := get(t, app, "/ok")
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, `"message":"done"`) || !strings.Contains(body, `"doc_id":7`) {
		t.Fatalf("body = %s", body)
	}
}
