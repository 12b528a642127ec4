package model

import "time"

// Models mirror the MySQL schema; regenerate with `go run ./cmd/gen`
// after schema changes.

type User struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"column:email;uniqueIndex;size:255" json:"email"`
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Document struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID           int64      `gorm:"column:user_id" json:"user_id"`
	OriginalFilename *string    `gorm:"column:original_filename;size:512" json:"original_filename"`
	FilePath         *string    `gorm:"column:file_path;size:1024" json:"file_path"`
	Sha256           *string    `gorm:"column:sha256;size:64" json:"sha256"`
	Status           string     `gorm:"column:status;size:32;default:uploaded" json:"status"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (Document) TableName() string { return "documents" }

type Chunk struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID       int64   `gorm:"column:document_id;index" json:"document_id"`
	ChunkIndex       int32   `gorm:"column:chunk_index" json:"chunk_index"`
	PageIndex        *int32  `gorm:"column:page_index" json:"page_index"`
	Content          string  `gorm:"column:content;type:mediumtext" json:"content"`
	ContentPreview   *string `gorm:"column:content_preview;size:1024" json:"content_preview"`
	TokenCount       *int32  `gorm:"column:token_count" json:"token_count"`
	MilvusCollection string  `gorm:"column:milvus_collection;size:128" json:"milvus_collection"`
	MilvusID         int64   `gorm:"column:milvus_id" json:"milvus_id"`
	ContentHash      string  `gorm:"column:content_hash;size:64" json:"content_hash"`
}

func (Chunk) TableName() string { return "chunks" }

// Message records one turn of a QnA exchange: the question, the answer
// and any context snippets that grounded it.
type Message struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"column:user_id;index" json:"user_id"`
	Role       string     `gorm:"column:role;size:32" json:"role"`
	Content    string     `gorm:"column:content;type:mediumtext" json:"content"`
	DocumentID *int64     `gorm:"column:document_id" json:"document_id"`
	CreatedAt  *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
