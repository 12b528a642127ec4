package ingest

import (
	"context"
	"errors"
	"time"

	"judge-qna/config"
	"judge-qna/internal/core/embedding"
	"judge-qna/internal/database"
	"judge-qna/pkg/logger"

	"gorm.io/gorm"
)

// RunIngestion orchestrates the pipeline for one document: fetch,
// extract, chunk, embed, upsert vectors, persist chunk rows.
func RunIngestion(docID int64, force bool) {
	conn, err := database.GetDB()
	if err != nil {
		logger.Error(err, "%v: db unavailable", config.ModuleIngest)
		return
	}

	doc, err := GetDocumentByID(conn, docID)
	if err != nil {
		logger.Error(err, "%v: get document failed", config.ModuleIngest)
		return
	}
	if doc.FilePath == nil {
		logger.Error(errors.New("no file path"), "%v: document %d has no stored file", config.ModuleIngest, docID)
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":    docID,
		"file_path": *doc.FilePath,
	}).Info("ingest start")

	exists, err := HasChunks(conn, docID)
	if err != nil {
		logger.Error(err, "%v: check chunks failed", config.ModuleIngest)
		return
	}
	if exists && !force {
		logger.Info("%v: chunks already exist for doc %d; skip", config.ModuleIngest, docID)
		return
	}
	if exists && force {
		if err := DeleteChunksByDocID(conn, docID); err != nil {
			logger.Error(err, "%v: cleanup chunks failed", config.ModuleIngest)
			return
		}
	}

	_ = UpdateDocumentStatus(conn, docID, "processing")

	tmpPath, cleanup, err := FetchToLocalTemp(*doc.FilePath)
	if err != nil {
		failDocument(conn, docID, err, "fetch file failed")
		return
	}
	defer cleanup()

	pages, err := ExtractPDFTextPages(tmpPath)
	if err != nil {
		failDocument(conn, docID, err, "extract text failed")
		return
	}

	targetTokens := config.Cfg.Ingest.ChunkTokens
	overlap := config.Cfg.Ingest.ChunkOverlap
	chunks := BuildChunks(pages, targetTokens, overlap)
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  len(pages),
		"chunks": len(chunks),
	}).Info("ingest chunks built")

	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		inputs = append(inputs, ch.Content)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	vectors, err := embedding.Embed(ctx, inputs)
	if err != nil {
		failDocument(conn, docID, err, "embedding failed")
		return
	}
	if len(vectors) != len(chunks) {
		failDocument(conn, docID, errors.New("embedding count mismatch"), "embedding failed")
		return
	}

	milvusIDs, collection, err := UpsertVectors(ctx, vectors, docID, chunks)
	if err != nil {
		failDocument(conn, docID, err, "milvus upsert failed")
		return
	}

	if err := InsertChunks(conn, docID, chunks, milvusIDs, collection); err != nil {
		failDocument(conn, docID, err, "db insert chunks failed")
		return
	}

	_ = UpdateDocumentStatus(conn, docID, "ready")
	logger.Info("%v: doc %d ready", config.ModuleIngest, docID)
}

func failDocument(conn *gorm.DB, docID int64, err error, msg string) {
	logger.Error(err, "%v: %s (doc %d)", config.ModuleIngest, msg, docID)
	_ = UpdateDocumentStatus(conn, docID, "failed")
}
