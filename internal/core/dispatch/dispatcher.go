package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"judge-qna/config"
	"judge-qna/pkg/logger"
)

// Responder produces an answer for a question. It is supplied at
// construction time and treated as opaque: no timeout and no retry is
// imposed here.
type Responder func(ctx context.Context, question string) (string, error)

// Dispatcher routes a decoded payload to batch, single-question or
// preset-update handling. It owns the history_accepted flag; the flag is
// guarded because fiber serves requests concurrently.
type Dispatcher struct {
	route     string
	responder Responder

	mu              sync.RWMutex
	historyAccepted bool
}

func New(route string, historyAccepted bool, responder Responder) *Dispatcher {
	return &Dispatcher{
		route:           route,
		responder:       responder,
		historyAccepted: historyAccepted,
	}
}

// Route returns the endpoint path this dispatcher was configured with.
func (d *Dispatcher) Route() string { return d.route }

// HistoryAccepted reports whether payloads carrying chat_history are
// currently accepted.
func (d *Dispatcher) HistoryAccepted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.historyAccepted
}

// Handle routes the payload and returns the response body and HTTP
// status. It never propagates a fault: panics are logged and converted
// to the generic 500 body.
func (d *Dispatcher) Handle(ctx context.Context, p Payload) (body any, status int) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{
				"panic": r,
				"route": d.route,
			}).Errorf("%v: recovered while handling request", config.ModuleDispatch)
			body = ErrorBody{Error: MsgInternalError}
			status = http.StatusInternalServerError
		}
	}()

	switch p.Kind {
	case KindBatch:
		return d.handleBatch(ctx, p)
	case KindSingle:
		return d.handleSingle(ctx, p)
	case KindPresets:
		return d.handlePresets(p)
	default:
		return ErrorBody{Error: MsgMissingParameter}, http.StatusBadRequest
	}
}

// itemResult records the outcome of one responder call, so the
// drop-on-failure policy below is explicit rather than a side effect.
type itemResult struct {
	item   QuestionItem
	answer string
	err    error
}

func (d *Dispatcher) handleBatch(ctx context.Context, p Payload) (any, int) {
	if p.HasChatHistory && !d.HistoryAccepted() {
		return ErrorBody{Error: MsgHistoryNotAccepted}, http.StatusBadRequest
	}

	results := make([]itemResult, 0, len(p.Questions))
	for _, q := range p.Questions {
		answer, err := d.responder(ctx, q.Question)
		results = append(results, itemResult{item: q, answer: answer, err: err})
	}

	// Failed items are logged and dropped; the batch itself still
	// succeeds, answers keep input order.
	answers := make([]AnswerItem, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			logger.WithFields(map[string]interface{}{
				"question_id": r.item.ID,
				"question":    r.item.Question,
				"error":       r.err.Error(),
			}).Warnf("%v: responder failed for batch item", config.ModuleDispatch)
			continue
		}
		answers = append(answers, AnswerItem{ID: r.item.ID, Answer: r.answer})
	}
	return BatchAnswerBody{Answer: answers}, http.StatusOK
}

func (d *Dispatcher) handleSingle(ctx context.Context, p Payload) (any, int) {
	if p.HasChatHistory && !d.HistoryAccepted() {
		return ErrorBody{Error: MsgHistoryNotAccepted}, http.StatusBadRequest
	}

	answer, err := d.responder(ctx, p.Question)
	if err != nil {
		logger.Error(err, "%v: responder failed for question: %s", config.ModuleDispatch, p.Question)
		// Failure is masked as a sentinel answer, not an HTTP error.
		return SingleAnswerBody{Answer: MsgAnswerFailed}, http.StatusOK
	}
	return SingleAnswerBody{Answer: answer}, http.StatusOK
}

func (d *Dispatcher) handlePresets(p Payload) (any, int) {
	d.mu.Lock()
	if p.Presets.HasHistoryAccepted {
		// The empty string is a sentinel for "leave unchanged".
		if s, isString := p.Presets.HistoryAccepted.(string); !isString || s != "" {
			d.historyAccepted = truthy(p.Presets.HistoryAccepted)
		}
	}
	current := d.historyAccepted
	d.mu.Unlock()

	return PresetsBody{
		Response: MsgPresetsUpdated,
		Message:  fmt.Sprintf("History accepted: %v", current),
	}, http.StatusOK
}
