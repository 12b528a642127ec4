package responder

import "context"

// Static returns a responder that prefixes the question, useful for
// development and smoke tests when no model backend is configured.
func Static() func(ctx context.Context, question string) (string, error) {
	return func(_ context.Context, question string) (string, error) {
		return "Answer: " + question, nil
	}
}
