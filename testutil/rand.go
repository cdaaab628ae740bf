package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/secretcrypt/cryptorand"
)

// MustRandString returns a random string of length n.
func MustRandString(t testing.TB, n int) string {
	t.Helper()
	s, err := cryptorand.String(n)
	require.NoError(t, err)
	return s
}

// MustRandSecret returns a random operator secret long enough to derive a
// key from.
func MustRandSecret(t testing.TB) string {
	t.Helper()
	s, err := cryptorand.SecretString(32)
	require.NoError(t, err)
	return s
}
