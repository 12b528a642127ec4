package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func echoResponder(_ context.Context, question string) (string, error) {
	return "Answer: " + question, nil
}

func failingResponder(_ context.Context, _ string) (string, error) {
	return "", errors.New("model unavailable")
}

func mustDecode(t *testing.T, body string) Payload {
	t.Helper()
	p, err := DecodePayload([]byte(body))
	if err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return p
}

func TestBatch_OrderAndIDsPreserved(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	p := mustDecode(t, `{"questions":[{"id":"q1","question":"a"},{"id":"q2","question":"b"},{"id":"q3","question":"c"}]}`)
	body, status := d.Handle(context.Background(), p)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	got := body.(BatchAnswerBody).Answer
	want := []AnswerItem{
		{ID: "q1", Answer: "Answer: a"},
		{ID: "q2", Answer: "Answer: b"},
		{ID: "q3", Answer: "Answer: c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("answers = %v, want %v", got, want)
	}
}

func TestBatch_HistoryGated(t *testing.T) {
	calls := 0
	d := New("/get_rag_response", false, func(_ context.Context, q string) (string, error) {
		calls++
		return q, nil
	})

	p := mustDecode(t, `{"questions":[{"id":"q1","question":"a"}],"chat_history":[{"role":"user","content":"hi"}]}`)
	body, status := d.Handle(context.Background(), p)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body.(ErrorBody).Error != MsgHistoryNotAccepted {
		t.Fatalf("body = %v", body)
	}
	if calls != 0 {
		t.Fatalf("responder called %d times while gated", calls)
	}
}

func TestBatch_FailedItemsDropped(t *testing.T) {
	// Only even-indexed questions succeed; failed items must disappear
	// from the output without aborting the batch.
	n := 0
	d := New("/get_rag_response", false, func(_ context.Context, q string) (string, error) {
		n++
		if n%2 == 0 {
			return "", errors.New("boom")
		}
		return "ok:" + q, nil
	})

	p := mustDecode(t, `{"questions":[{"id":"a","question":"1"},{"id":"b","question":"2"},{"id":"c","question":"3"}]}`)
	body, status := d.Handle(context.Background(), p)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	got := body.(BatchAnswerBody).Answer
	want := []AnswerItem{{ID: "a", Answer: "ok:1"}, {ID: "c", Answer: "ok:3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("answers = %v, want %v", got, want)
	}
}

func TestBatch_AllFailedReturnsEmptyList(t *testing.T) {
	d := New("/get_rag_response", false, failingResponder)

	p := mustDecode(t, `{"questions":[{"id":"a","question":"1"},{"id":"b","question":"2"}]}`)
	body, status := d.Handle(context.Background(), p)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	got := body.(BatchAnswerBody).Answer
	if got == nil || len(got) != 0 {
		t.Fatalf("answer = %#v, want empty non-nil slice", got)
	}
}

func TestSingle_Success(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	body, status := d.Handle(context.Background(), mustDecode(t, `{"question":"what is RAG?"}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if got := body.(SingleAnswerBody).Answer; got != "Answer: what is RAG?" {
		t.Fatalf("answer = %q", got)
	}
}

func TestSingle_FailureMaskedAsSentinel(t *testing.T) {
	d := New("/get_rag_response", false, failingResponder)

	body, status := d.Handle(context.Background(), mustDecode(t, `{"question":"x"}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (failure must not surface as HTTP error)", status)
	}
	if got := body.(SingleAnswerBody).Answer; got != MsgAnswerFailed {
		t.Fatalf("answer = %q, want sentinel", got)
	}
}

func TestSingle_HistoryGated(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	body, status := d.Handle(context.Background(), mustDecode(t, `{"question":"x","chat_history":[]}`))
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body.(ErrorBody).Error != MsgHistoryNotAccepted {
		t.Fatalf("body = %v", body)
	}
}

func TestPresets_EnableUnblocksHistory(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	body, status := d.Handle(context.Background(), mustDecode(t, `{"presets":{"history_accepted":true}}`))
	if status != http.StatusOK {
		t.Fatalf("presets status = %d, want 200", status)
	}
	pb := body.(PresetsBody)
	if pb.Response != MsgPresetsUpdated {
		t.Fatalf("response = %q", pb.Response)
	}
	if pb.Message != "History accepted: true" {
		t.Fatalf("message = %q", pb.Message)
	}

	// A batch carrying chat_history must now pass the gate.
	p := mustDecode(t, `{"questions":[{"id":"q1","question":"a"}],"chat_history":[1]}`)
	body, status = d.Handle(context.Background(), p)
	if status != http.StatusOK {
		t.Fatalf("gated batch after enable: status = %d, want 200", status)
	}
	if len(body.(BatchAnswerBody).Answer) != 1 {
		t.Fatalf("batch answers = %v", body)
	}
}

func TestPresets_EmptyObjectLeavesFlagUnchanged(t *testing.T) {
	for _, initial := range []bool{false, true} {
		d := New("/get_rag_response", initial, echoResponder)

		body, status := d.Handle(context.Background(), mustDecode(t, `{"presets":{}}`))
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		pb := body.(PresetsBody)
		if want := fmt.Sprintf("History accepted: %v", initial); pb.Message != want {
			t.Fatalf("message = %q, want %q", pb.Message, want)
		}
		if d.HistoryAccepted() != initial {
			t.Fatalf("flag changed by empty presets (initial %v)", initial)
		}
	}
}

func TestPresets_EmptyStringSentinelSkipsUpdate(t *testing.T) {
	d := New("/get_rag_response", true, echoResponder)

	_, status := d.Handle(context.Background(), mustDecode(t, `{"presets":{"history_accepted":""}}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !d.HistoryAccepted() {
		t.Fatalf("empty-string sentinel must not overwrite the flag")
	}
}

func TestPresets_Idempotent(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)
	p := mustDecode(t, `{"presets":{"history_accepted":true}}`)

	first, s1 := d.Handle(context.Background(), p)
	second, s2 := d.Handle(context.Background(), p)
	if s1 != s2 || !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated presets update not idempotent: %v/%d vs %v/%d", first, s1, second, s2)
	}
	if !d.HistoryAccepted() {
		t.Fatalf("flag not set")
	}
}

func TestPresets_TruthyValues(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"presets":{"history_accepted":true}}`, true},
		{`{"presets":{"history_accepted":false}}`, false},
		{`{"presets":{"history_accepted":1}}`, true},
		{`{"presets":{"history_accepted":0}}`, false},
		{`{"presets":{"history_accepted":"yes"}}`, true},
		{`{"presets":{"history_accepted":null}}`, false},
		{`{"presets":{"history_accepted":[1]}}`, true},
		{`{"presets":{"history_accepted":[]}}`, false},
	}
	for _, tc := range cases {
		d := New("/get_rag_response", !tc.want, echoResponder)
		d.Handle(context.Background(), mustDecode(t, tc.raw))
		if d.HistoryAccepted() != tc.want {
			t.Errorf("%s: flag = %v, want %v", tc.raw, d.HistoryAccepted(), tc.want)
		}
	}
}

func TestUnrecognizedPayload(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	body, status := d.Handle(context.Background(), mustDecode(t, `{"foo":"bar"}`))
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body.(ErrorBody).Error != MsgMissingParameter {
		t.Fatalf("body = %v", body)
	}
}

func TestHandle_PanickingResponderConvertedTo500(t *testing.T) {
	d := New("/get_rag_response", false, func(_ context.Context, _ string) (string, error) {
		panic("responder blew up")
	})

	body, status := d.Handle(context.Background(), mustDecode(t, `{"question":"x"}`))
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	eb, ok := body.(ErrorBody)
	if !ok || eb.Error != MsgInternalError {
		t.Fatalf("body = %v, want generic internal error", body)
	}
	if strings.Contains(eb.Error, "blew up") {
		t.Fatalf("internal detail leaked: %q", eb.Error)
	}
}

func TestBatchTakesPriorityOverQuestionAndPresets(t *testing.T) {
	d := New("/get_rag_response", false, echoResponder)

	p := mustDecode(t, `{"questions":[{"id":"q1","question":"a"}],"question":"ignored","presets":{"history_accepted":true}}`)
	body, status := d.Handle(context.Background(), p)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if _, ok := body.(BatchAnswerBody); !ok {
		t.Fatalf("batch key must win, got %T", body)
	}
	if d.HistoryAccepted() {
		t.Fatalf("presets branch must not run when questions is present")
	}
}
