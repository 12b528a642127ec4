package retriever

// Hit is one vector-search result with chunk metadata.
type Hit struct {
	ChunkID    int64   `json:"chunk_id"`
	DocID      int64   `json:"doc_id"`
	ChunkIndex int32   `json:"chunk_index"`
	PageIndex  int32   `json:"page_index"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// Filters narrows a search to particular documents.
type Filters struct {
	DocIDs []int64
}
