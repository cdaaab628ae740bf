// Package cryptorand wraps crypto/rand with helpers for nonces, keys and
// operator secrets.
package cryptorand

import (
	"crypto/rand"
	"io"

	"golang.org/x/xerrors"
)

// Bytes returns n bytes read from crypto/rand.
func Bytes(n int) ([]byte, error) {
	return BytesFrom(rand.Reader, n)
}

// BytesFrom returns exactly n bytes read from r. A short read is an error,
// so a nil error always means the full slice was filled.
func BytesFrom(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, xerrors.Errorf("invalid byte count %d", n)
	}
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, xerrors.Errorf("read random bytes: %w", err)
	}
	return b, nil
}
