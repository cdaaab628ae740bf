package secretcrypt_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/secretcrypt/secretcrypt"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		a, ok := secretcrypt.DeriveKey(secretA)
		require.True(t, ok)
		b, ok := secretcrypt.DeriveKey(secretA)
		require.True(t, ok)
		require.Equal(t, a, b)
		require.Equal(t, a.HexDigest(), b.HexDigest())
		require.Len(t, a.HexDigest(), 64)
	})

	t.Run("Distinct", func(t *testing.T) {
		t.Parallel()
		a, _ := secretcrypt.DeriveKey(secretA)
		b, _ := secretcrypt.DeriveKey(secretB)
		require.NotEqual(t, a, b)
	})

	t.Run("TooShort", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"", "x", strings.Repeat("y", secretcrypt.MinSecretLength-1)} {
			_, ok := secretcrypt.DeriveKey(secretcrypt.Secret(s))
			require.False(t, ok, "secret of length %d", len(s))
		}
	})

	t.Run("CountsCharacters", func(t *testing.T) {
		t.Parallel()
		// 8 two-byte runes are 16 bytes but only 8 characters.
		_, ok := secretcrypt.DeriveKey(secretcrypt.Secret(strings.Repeat("é", 8)))
		require.False(t, ok)
		_, ok = secretcrypt.DeriveKey(secretcrypt.Secret(strings.Repeat("é", 16)))
		require.True(t, ok)
	})
}

func TestSecretFormatting(t *testing.T) {
	t.Parallel()

	s := secretcrypt.Secret(secretA)
	key, _ := secretcrypt.DeriveKey(s)
	for _, out := range []string{
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%s", s),
		fmt.Sprintf("%#v", s),
		fmt.Sprintf("%v", key),
		fmt.Sprintf("%#v", key),
		fmt.Sprintf("%v", secretcrypt.Config{Secret: secretA, FallbackSecret: secretB}),
		fmt.Sprintf("%#v", secretcrypt.Config{Secret: secretA, FallbackSecret: secretB}),
	} {
		require.Contains(t, out, "REDACTED")
		require.NotContains(t, out, secretA)
		require.NotContains(t, out, secretB)
	}
}

func TestIsEncrypted(t *testing.T) {
	t.Parallel()

	c := newCrypter(t, secretA)
	require.True(t, secretcrypt.IsEncrypted(mustEncrypt(t, c, "sk-1")))

	for _, s := range []string{
		"",
		"sk-1",
		"enc:",
		"enc:v1:",
		"enc:v1:c2hvcnQ",
		"enc:v7:" + strings.Repeat("A", 64),
		"enc:v1:" + strings.Repeat("*", 64),
	} {
		require.False(t, secretcrypt.IsEncrypted(s), "%q", s)
	}
}

func TestSecretEntropy(t *testing.T) {
	t.Parallel()

	repeated := secretcrypt.Secret(strings.Repeat("a", 32))
	require.True(t, repeated.Usable())
	require.True(t, repeated.Weak())

	generated := secretcrypt.Secret("k9P!vR2#qL7@xW4$mT8%zN3^bH6&dF1*")
	require.False(t, generated.Weak())
	require.Greater(t, generated.Entropy(), repeated.Entropy())
}
