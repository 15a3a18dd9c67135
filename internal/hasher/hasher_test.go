package hasher

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_UnknownAlgorithm(t *testing.T) {
	if _, err := New("md5"); err == nil {
		t.Fatal("New(\"md5\") should fail; only sha256/sha512 are supported")
	}
}

func TestNew_DefaultsToSHA256(t *testing.T) {
	h, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") failed: %v", err)
	}
	if h.Algorithm() != SHA256 {
		t.Errorf("Algorithm() = %q, want %q", h.Algorithm(), SHA256)
	}
	if h.HexLength() != 64 {
		t.Errorf("HexLength() = %d, want 64", h.HexLength())
	}
}

func TestSum_KnownVector(t *testing.T) {
	h, err := New(SHA256)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Well-known SHA-256 of "hello world".
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	got, err := h.Sum(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Sum() failed: %v", err)
	}
	if got != want {
		t.Errorf("Sum() = %q, want %q", got, want)
	}
}

func TestSum_EmptyInput(t *testing.T) {
	h, _ := New(SHA256)

	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got, err := h.Sum(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Sum() failed: %v", err)
	}
	if got != want {
		t.Errorf("Sum() of empty input = %q, want %q", got, want)
	}
}

func TestFile_MatchesSum(t *testing.T) {
	h, _ := New(SHA256)

	// Larger than one read buffer so chunked reads are exercised.
	data := bytes.Repeat([]byte("drift"), 40000)

	path := filepath.Join(t.TempDir(), "large.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	want, err := h.Sum(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Sum() failed: %v", err)
	}
	got, err := h.File(path)
	if err != nil {
		t.Fatalf("File() failed: %v", err)
	}
	if got != want {
		t.Errorf("File() = %q, want %q (same bytes through Sum)", got, want)
	}
	if len(got) != h.HexLength() {
		t.Errorf("fingerprint length = %d, want %d", len(got), h.HexLength())
	}
}

func TestFile_MissingPathReturnsReadFailure(t *testing.T) {
	h, _ := New(SHA256)

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := h.File(missing)
	if err == nil {
		t.Fatal("File() on a missing path should fail")
	}

	var rf *ReadFailure
	if !errors.As(err, &rf) {
		t.Fatalf("File() error = %T, want *ReadFailure", err)
	}
	if rf.Path != missing {
		t.Errorf("ReadFailure.Path = %q, want %q", rf.Path, missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFailure should unwrap to the underlying os error, got %v", err)
	}
}

func TestSHA512_Length(t *testing.T) {
	h, err := New(SHA512)
	if err != nil {
		t.Fatalf("New(SHA512) failed: %v", err)
	}
	sum, err := h.Sum(strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Sum() failed: %v", err)
	}
	if len(sum) != 128 || h.HexLength() != 128 {
		t.Errorf("sha512 hex length = %d (HexLength %d), want 128", len(sum), h.HexLength())
	}
}
