package ingest

import (
	"strings"
)

type Chunk struct {
	ChunkIndex int32
	PageIndex  int32
	Content    string
}

// BuildChunks cuts page texts into roughly token-sized pieces with
// overlap. Token approximation: ~4 chars per token.
func BuildChunks(pages []string, targetTokens int, overlapTokens int) []Chunk {
	if targetTokens <= 0 {
		targetTokens = 600
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	targetChars := targetTokens * 4
	overlapChars := overlapTokens * 4

	chunks := make([]Chunk, 0, 128)
	chunkIdx := int32(0)
	for pageIdx, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		runes := []rune(text)
		for start := 0; start < len(runes); {
			end := start + targetChars
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, Chunk{
				ChunkIndex: chunkIdx,
				PageIndex:  int32(pageIdx + 1),
				Content:    string(runes[start:end]),
			})
			chunkIdx++
			if end == len(runes) {
				break
			}
			// Advance with overlap, by runes so multi-byte text is safe.
			next := end - overlapChars
			if next <= start {
				next = end
			}
			start = next
		}
	}
	return chunks
}
