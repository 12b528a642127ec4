package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"judge-qna/config"
	"judge-qna/internal/core/retriever"
	"judge-qna/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// fallbackAnswer is returned when retrieval finds no supporting context.
const fallbackAnswer = "Not enough evidence in the indexed documents to answer."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// RAG answers questions by retrieval-augmented generation: embed the
// question, search Milvus for supporting chunks, prompt the LLM with
// them, and persist the exchange.
type RAG struct {
	topK int
}

func NewRAG(topK int) *RAG {
	if topK <= 0 || topK > 64 {
		topK = 12
	}
	return &RAG{topK: topK}
}

// Answer satisfies the dispatcher's responder contract.
func (r *RAG) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)

	embedCtx, cancelEmbed := context.WithTimeout(ctx, 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, question)
	if err != nil {
		logger.Error(err, "%v: embed question failed", config.ModuleResponder)
		return "", err
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, 1*time.Second)
	defer cancelSearch()
	hits, err := retriever.Search(searchCtx, vec, r.topK, retriever.Filters{})
	if err != nil {
		logger.Error(err, "%v: search failed", config.ModuleResponder)
		return "", err
	}

	if len(hits) == 0 {
		if err := persistExchange(ctx, question, fallbackAnswer, nil); err != nil {
			logger.Error(err, "%v: persist exchange failed", config.ModuleResponder)
		}
		return fallbackAnswer, nil
	}

	sysMsg, userMsg := buildPrompt(question, hits)
	llmCtx, cancelLLM := context.WithTimeout(ctx, 10*time.Second)
	defer cancelLLM()
	answer, err := callLLM(llmCtx, sysMsg, userMsg)
	if err != nil {
		logger.Error(err, "%v: llm call failed", config.ModuleResponder)
		return "", err
	}

	if err := persistExchange(ctx, question, answer, hits); err != nil {
		logger.Error(err, "%v: persist exchange failed", config.ModuleResponder)
	}
	return answer, nil
}

func buildPrompt(question string, hits []retriever.Hit) (systemMsg, userMsg string) {
	var b strings.Builder
	b.WriteString("You are a question answering assistant. Answer briefly and only from the contexts below. ")
	b.WriteString(fmt.Sprintf("If the contexts do not contain the answer, reply: %q.\n\n", fallbackAnswer))
	b.WriteString("Contexts:\n")
	for i, h := range hits {
		b.WriteString(fmt.Sprintf("[%d] (doc_id=%d, page=%d): %s\n\n", i+1, h.DocID, h.PageIndex, sanitize(h.Content)))
	}
	systemMsg = b.String()
	userMsg = fmt.Sprintf("Question: %s", question)
	return
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func callLLM(ctx context.Context, promptSystem, promptUser string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(config.Cfg.OpenAI.Key))
	req := chatRequest{
		Model:       config.Cfg.OpenAI.Model,
		Temperature: 0.2,
		MaxTokens:   512,
		Messages: []chatMessage{
			{Role: "system", Content: promptSystem},
			{Role: "user", Content: promptUser},
		},
	}
	var out chatResponse
	if err := client.Post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
