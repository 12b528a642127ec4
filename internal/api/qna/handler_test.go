package qna

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"judge-qna/internal/core/dispatch"

	"github.com/gofiber/fiber/v3"
)

func newTestApp(responder dispatch.Responder) *fiber.App {
	app := fiber.New()
	d := dispatch.New("/get_rag_response", false, responder)
	RegisterRoutes(app, d, []string{"POST"})
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/get_rag_response", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, strings.TrimSpace(string(raw))
}

func TestEndpoint_Single(t *testing.T) {
	app := newTestApp(func(_ context.Context, q string) (string, error) {
		return "Answer: " + q, nil
	})

	status, body := postJSON(t, app, `{"question":"hi"}`)
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	if body != `{"answer":"Answer: hi"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestEndpoint_Batch(t *testing.T) {
	app := newTestApp(func(_ context.Context, q string) (string, error) {
		return q + "!", nil
	})

	status, body := postJSON(t, app, `{"questions":[{"id":"a","question":"x"},{"id":"b","question":"y"}]}`)
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	want := `{"answer":[{"id":"a","answer":"x!"},{"id":"b","answer":"y!"}]}`
	if body != want {
		t.Fatalf("body = %s, want %s", body, want)
	}
}

func TestEndpoint_HistoryGated(t *testing.T) {
	calls := 0
	app := newTestApp(func(_ context.Context, q string) (string, error) {
		calls++
		return "", nil
	})

	status, body := postJSON(t, app, `{"question":"hi","chat_history":[]}`)
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	if body != `{"error":"History is not accepted"}` {
		t.Fatalf("body = %s", body)
	}
	if calls != 0 {
		t.Fatalf("responder invoked %d times while gated", calls)
	}
}

func TestEndpoint_MissingParameter(t *testing.T) {
	app := newTestApp(func(_ context.Context, q string) (string, error) { return q, nil })

	status, body := postJSON(t, app, `{"something_else":1}`)
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	if body != `{"error":"Missing parameter."}` {
		t.Fatalf("body = %s", body)
	}
}

func TestEndpoint_MalformedBody(t *testing.T) {
	app := newTestApp(func(_ context.Context, q string) (string, error) { return q, nil })

	status, body := postJSON(t, app, `{"question":`)
	if status != 500 {
		t.Fatalf("status = %d", status)
	}
	if body != `{"error":"Error occurred while processing the request"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestEndpoint_PresetsFlow(t *testing.T) {
	app := newTestApp(func(_ context.Context, q string) (string, error) {
		return "ok", nil
	})

	status, body := postJSON(t, app, `{"presets":{"history_accepted":true}}`)
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	want := `{"response":"Sucessfully updated","message":"History accepted: true"}`
	if body != want {
		t.Fatalf("body = %s, want %s", body, want)
	}

	// History-carrying request now passes the gate on the same app.
	status, body = postJSON(t, app, `{"question":"hi","chat_history":[1]}`)
	if status != 200 {
		t.Fatalf("status after enabling history = %d (%s)", status, body)
	}
}

func TestEndpoint_ResponderFailureMasked(t *testing.T) {
	app := newTestApp(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("backend down")
	})

	status, body := postJSON(t, app, `{"question":"hi"}`)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != `{"answer":"An error occurred while processing the question."}` {
		t.Fatalf("body = %s", body)
	}
	if strings.Contains(body, "backend down") {
		t.Fatalf("internal error detail leaked: %s", body)
	}
}
