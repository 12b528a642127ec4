package ingest

import (
	"strings"
	"testing"
)

func TestBuildChunks_EmptyPagesSkipped(t *testing.T) {
	chunks := BuildChunks([]string{"", "   ", "content here"}, 600, 80)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].PageIndex != 3 {
		t.Fatalf("page index = %d, want 3", chunks[0].PageIndex)
	}
}

func TestBuildChunks_SplitsLongPageWithOverlap(t *testing.T) {
	// 10 target tokens -> 40 chars per chunk, 2 tokens -> 8 chars overlap.
	page := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := BuildChunks([]string{page}, 10, 2)
	if len(chunks) < 3 {
		t.Fatalf("chunks = %d, want >= 3", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != int32(i) {
			t.Fatalf("chunk %d has index %d", i, ch.ChunkIndex)
		}
	}
	// Consecutive chunks share the overlap region.
	first := chunks[0].Content
	second := chunks[1].Content
	if !strings.HasPrefix(second, first[len(first)-8:]) {
		t.Fatalf("no overlap between %q and %q", first, second)
	}
}

func TestBuildChunks_MultiByteSafe(t *testing.T) {
	page := strings.Repeat("日本語テキスト", 50)
	chunks := BuildChunks([]string{page}, 10, 2)
	for _, ch := range chunks {
		for _, r := range ch.Content {
			if r == '�' {
				t.Fatalf("chunk split a multi-byte rune: %q", ch.Content)
			}
		}
	}
}

func TestBuildContentPreview(t *testing.T) {
	got := buildContentPreview("\uFEFFhello\x01 world\n", 100)
	if got != "hello world" {
		t.Fatalf("preview = %q", got)
	}
	long := strings.Repeat("x", 600)
	if n := len(buildContentPreview(long, 512)); n != 512 {
		t.Fatalf("preview length = %d, want 512", n)
	}
}

func TestSanitizePrintable(t *testing.T) {
	got := sanitizePrintable("\uFEFFa\tb\x00c\n")
	if got != "a\tbc" {
		t.Fatalf("sanitized = %q", got)
	}
}
