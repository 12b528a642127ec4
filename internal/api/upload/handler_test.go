package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreToLocal_Sha256MatchesContent(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	content := "hello pdf content"
	want := sha256.Sum256([]byte(content))
	wantHex := hex.EncodeToString(want[:])

	fh := &multipart.FileHeader{Filename: "doc.pdf"}
	path, gotHex, err := storeToLocal(strings.NewReader(content), fh, sha256.New())
	if err != nil {
		t.Fatal(err)
	}

	// The recorded digest and the content-addressed filename must both
	// be the SHA-256 of the stored bytes.
	if gotHex != wantHex {
		t.Fatalf("sha256 = %s, want %s", gotHex, wantHex)
	}
	if filepath.Base(path) != wantHex+".pdf" {
		t.Fatalf("stored name = %s, want %s.pdf", filepath.Base(path), wantHex)
	}
	stored, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(stored) != content {
		t.Fatalf("stored content = %q", stored)
	}
}
