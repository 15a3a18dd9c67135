// Package hasher computes content fingerprints for files.
//
// Fingerprints are the sole change-detection signal for the baseline: exFAT
// and similar removable media cannot be trusted to report modification times
// accurately, so everything downstream keys off the content hash alone.
package hasher

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Supported fingerprint algorithms. The algorithm is recorded alongside the
// baseline; mixing algorithms across runs invalidates every comparison.
const (
	SHA256 = "sha256"
	SHA512 = "sha512"
)

// DefaultAlgorithm is used when the caller does not pick one explicitly.
const DefaultAlgorithm = SHA256

// readBufSize bounds per-file memory during hashing. Files on removable
// media can be tens of gigabytes; they are never loaded whole.
const readBufSize = 64 * 1024

// ReadFailure reports an I/O problem while fingerprinting a single file.
// It carries the offending path so callers can isolate the failure to that
// path instead of aborting a whole scan.
type ReadFailure struct {
	Path string
	Err  error
}

func (e *ReadFailure) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadFailure) Unwrap() error {
	return e.Err
}

// Hasher produces deterministic fixed-length content fingerprints using a
// single configured algorithm.
type Hasher struct {
	algorithm string
	size      int // digest size in bytes
}

// New returns a Hasher for the named algorithm. An empty name selects
// DefaultAlgorithm.
func New(algorithm string) (*Hasher, error) {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	switch algorithm {
	case SHA256:
		return &Hasher{algorithm: SHA256, size: sha256.Size}, nil
	case SHA512:
		return &Hasher{algorithm: SHA512, size: sha512.Size}, nil
	default:
		return nil, fmt.Errorf("unsupported fingerprint algorithm %q", algorithm)
	}
}

// Algorithm returns the configured algorithm name.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// HexLength returns the length of a hex-encoded fingerprint produced by this
// hasher. Used to sanity-check stored fingerprints against the active
// algorithm.
func (h *Hasher) HexLength() int {
	return h.size * 2
}

func (h *Hasher) newDigest() hash.Hash {
	switch h.algorithm {
	case SHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}

// Sum fingerprints everything readable from r. The reader is consumed in
// bounded chunks.
func (h *Hasher) Sum(r io.Reader) (string, error) {
	d := h.newDigest()
	buf := make([]byte, readBufSize)
	if _, err := io.CopyBuffer(d, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

// File fingerprints the file at path. Any failure to open or read the file
// is returned as a *ReadFailure tagged with the path. There are no retries;
// retry policy belongs to the caller.
func (h *Hasher) File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ReadFailure{Path: path, Err: err}
	}
	defer f.Close()

	sum, err := h.Sum(f)
	if err != nil {
		return "", &ReadFailure{Path: path, Err: err}
	}
	return sum, nil
}
