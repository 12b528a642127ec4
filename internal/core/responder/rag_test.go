package responder

import (
	"context"
	"strings"
	"testing"

	"judge-qna/internal/core/retriever"
)

func TestBuildPrompt_IncludesContextsAndQuestion(t *testing.T) {
	hits := []retriever.Hit{
		{DocID: 7, PageIndex: 2, Content: "first snippet"},
		{DocID: 9, PageIndex: 1, Content: "second\x00snippet"},
	}
	sys, user := buildPrompt("what is the ruling?", hits)

	if !strings.Contains(sys, "doc_id=7") || !strings.Contains(sys, "doc_id=9") {
		t.Fatalf("system prompt missing contexts:\n%s", sys)
	}
	if strings.Contains(sys, "\x00") {
		t.Fatalf("NUL byte survived sanitization")
	}
	if !strings.Contains(user, "what is the ruling?") {
		t.Fatalf("user prompt missing question: %q", user)
	}
}

func TestStaticResponder(t *testing.T) {
	fn := Static()
	got, err := fn(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Answer: hello" {
		t.Fatalf("answer = %q", got)
	}
}

func TestNewRAG_TopKBounds(t *testing.T) {
	if r := NewRAG(0); r.topK != 12 {
		t.Fatalf("topK = %d, want default 12", r.topK)
	}
	if r := NewRAG(100); r.topK != 12 {
		t.Fatalf("topK = %d, want default 12", r.topK)
	}
	if r := NewRAG(5); r.topK != 5 {
		t.Fatalf("topK = %d, want 5", r.topK)
	}
}
