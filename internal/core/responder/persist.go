package responder

import (
	"context"
	"time"

	"judge-qna/internal/core/retriever"
	"judge-qna/internal/database"
	"judge-qna/internal/database/model"
)

// persistExchange records the question, answer and supporting context
// snippets as message rows.
func persistExchange(ctx context.Context, question, answer string, hits []retriever.Hit) error {
	conn, err := database.GetDB()
	if err != nil {
		return err
	}
	userID, err := database.EnsureDefaultUser(conn)
	if err != nil {
		return err
	}

	now := time.Now()
	msgUser := model.Message{
		UserID:    userID,
		Role:      "user",
		Content:   question,
		CreatedAt: &now,
	}
	if err := database.CreateEntity(ctx, &msgUser); err != nil {
		return err
	}
	msgAssistant := model.Message{
		UserID:    userID,
		Role:      "assistant",
		Content:   answer,
		CreatedAt: &now,
	}
	if err := database.CreateEntity(ctx, &msgAssistant); err != nil {
		return err
	}
	for _, h := range hits {
		docID := h.DocID
		msgCtx := model.Message{
			UserID:     userID,
			Role:       "context",
			Content:    h.Content,
			DocumentID: &docID,
			CreatedAt:  &now,
		}
		if err := database.CreateEntity(ctx, &msgCtx); err != nil {
			return err
		}
	}
	return nil
}
