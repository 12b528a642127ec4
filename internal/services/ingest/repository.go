package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"judge-qna/internal/database/model"

	"gorm.io/gorm"
)

func GetDocumentByID(conn *gorm.DB, docID int64) (*model.Document, error) {
	var doc model.Document
	if err := conn.First(&doc, docID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func HasChunks(conn *gorm.DB, docID int64) (bool, error) {
	var count int64
	if err := conn.Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func DeleteChunksByDocID(conn *gorm.DB, docID int64) error {
	return conn.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error
}

func UpdateDocumentStatus(conn *gorm.DB, docID int64, status string) error {
	return conn.Model(&model.Document{}).Where("id = ?", docID).Update("status", status).Error
}

func InsertChunks(conn *gorm.DB, docID int64, chunks []Chunk, milvusIDs []int64, collection string) error {
	records := make([]model.Chunk, 0, len(chunks))
	for i, ch := range chunks {
		preview := buildContentPreview(ch.Content, 512)
		h := sha256.Sum256([]byte(ch.Content))
		hash := hex.EncodeToString(h[:])
		var milvusID int64
		if i < len(milvusIDs) {
			milvusID = milvusIDs[i]
		}
		pageIndex := ch.PageIndex
		records = append(records, model.Chunk{
			DocumentID:       docID,
			ChunkIndex:       ch.ChunkIndex,
			PageIndex:        &pageIndex,
			Content:          ch.Content,
			ContentPreview:   &preview,
			MilvusCollection: collection,
			MilvusID:         milvusID,
			ContentHash:      hash,
		})
	}
	return conn.Create(&records).Error
}

// buildContentPreview keeps printable runes only and truncates by runes
// so multi-byte sequences never split.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' {
			continue
		}
		if r != '\n' && r != '\t' && r != '\r' && !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
