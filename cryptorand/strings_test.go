package cryptorand_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/coder/secretcrypt/cryptorand"
)

func TestString(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		rs, err := cryptorand.String(16)
		require.NoError(t, err, "unexpected error from String")
		require.Len(t, rs, 16)
		seen[rs] = struct{}{}
	}
	require.Len(t, seen, 20, "random strings should not repeat")
}

func TestStringCharset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name       string
		Charset    string
		HelperFunc func(int) (string, error)
		Length     int
	}{
		{
			Name:    "MultiByte",
			Charset: "üñîçødé",
			Length:  20,
		},
		{
			Name:       "Empty",
			Charset:    cryptorand.Default,
			Length:     0,
			HelperFunc: cryptorand.String,
		},
		{
			Name:    "Numeric",
			Charset: cryptorand.Numeric,
			Length:  1,
		},
		{
			Name:       "Hex",
			Charset:    cryptorand.Hex,
			Length:     64,
			HelperFunc: cryptorand.HexString,
		},
		{
			Name:       "Secret",
			Charset:    cryptorand.Secret,
			Length:     32,
			HelperFunc: cryptorand.SecretString,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 5; i++ {
				rs, err := cryptorand.StringCharset(test.Charset, test.Length)
				require.NoError(t, err)
				require.Equal(t, test.Length, utf8.RuneCountInString(rs))
				for _, r := range rs {
					require.True(t, strings.ContainsRune(test.Charset, r), "rune %q not in charset", r)
				}

				if test.HelperFunc != nil {
					rs, err = test.HelperFunc(test.Length)
					require.NoError(t, err)
					require.Equal(t, test.Length, utf8.RuneCountInString(rs))
				}
			}
		})
	}
}

func TestStringCharsetInvalid(t *testing.T) {
	t.Parallel()

	_, err := cryptorand.StringCharset("", 4)
	require.Error(t, err)

	_, err = cryptorand.StringCharset(cryptorand.Hex, -1)
	require.Error(t, err)
}

func TestBytes(t *testing.T) {
	t.Parallel()

	a, err := cryptorand.Bytes(24)
	require.NoError(t, err)
	require.Len(t, a, 24)

	b, err := cryptorand.Bytes(24)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	empty, err := cryptorand.Bytes(0)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = cryptorand.Bytes(-1)
	require.Error(t, err)
}
