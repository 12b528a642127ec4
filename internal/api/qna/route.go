package qna

import (
	"strings"

	"judge-qna/internal/core/dispatch"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers the QnA endpoint under the dispatcher's
// configured route with the given HTTP methods (POST when none given).
func RegisterRoutes(r fiber.Router, d *dispatch.Dispatcher, methods []string) {
	if len(methods) == 0 {
		methods = []string{fiber.MethodPost}
	}
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(m)))
	}

	h := NewHandler(d)
	r.Add(normalized, d.Route(), h.Handle)
}
