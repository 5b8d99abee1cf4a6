package checksum

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/starford/docpress/internal/apperr"
)

var tokenRe = regexp.MustCompile(`^[a-z2-7]{52}$`)

func TestSum_Deterministic(t *testing.T) {
	data := []byte("hello docpress")
	a, b := Sum(data), Sum(data)
	if a != b {
		t.Fatalf("Sum not deterministic: %q vs %q", a, b)
	}
	if !tokenRe.MatchString(a) {
		t.Errorf("token %q does not match %s", a, tokenRe)
	}
	if len(a) != Len {
		t.Errorf("len = %d, want %d", len(a), Len)
	}
}

func TestSum_KnownVector(t *testing.T) {
	// sha256("") = e3b0c442..., base32 without padding, lowercased.
	want := "4oymiquy7qobjgx36tejs35zeqt24qpemsnzgtfeswmrw6csxbkq"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %q, want %q", got, want)
	}
}

func TestSum_SingleByteChange(t *testing.T) {
	a := []byte("the quick brown fox")
	b := []byte("the quick brown fix")
	if Sum(a) == Sum(b) {
		t.Error("one-byte change produced the same token")
	}
}

func TestFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.docx")
	if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(p)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != Sum([]byte("payload")) {
		t.Errorf("File = %q, want Sum of contents", got)
	}
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.docx"))
	if !errors.Is(err, apperr.ErrRead) {
		t.Errorf("err = %v, want ErrRead", err)
	}
}
