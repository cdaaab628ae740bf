package cryptorand

import (
	"crypto/rand"
	"io"
	"strings"

	"golang.org/x/xerrors"
)

// Charsets
const (
	// Numeric includes decimal numbers (0-9)
	Numeric = "0123456789"

	// Upper is uppercase characters in the Latin alphabet
	Upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Lower is lowercase characters in the Latin alphabet
	Lower = "abcdefghijklmnopqrstuvwxyz"

	// Alpha is upper or lowercase alphabetic characters
	Alpha = Upper + Lower

	// Default is uppercase, lowercase, or numeric characters
	Default = Numeric + Alpha

	// Hex is hexadecimal lowercase characters
	Hex = "0123456789abcdef"

	// Symbols are safe to paste into shells and .env files without quoting.
	Symbols = "-_.+=@%"

	// Secret is the charset used for generated operator secrets.
	Secret = Default + Symbols
)

// StringCharset generates a random string of size runes drawn uniformly
// from charSetStr.
func StringCharset(charSetStr string, size int) (string, error) {
	return stringCharsetFrom(rand.Reader, charSetStr, size)
}

// stringCharsetFrom rejects any byte that would bias the modulo, so each
// rune in the charset is equally likely. Charsets are limited to 256 runes.
func stringCharsetFrom(r io.Reader, charSetStr string, size int) (string, error) {
	if size == 0 {
		return "", nil
	}
	if size < 0 {
		return "", xerrors.Errorf("invalid size %d", size)
	}
	charSet := []rune(charSetStr)
	if len(charSet) == 0 {
		return "", xerrors.Errorf("charSetStr must not be empty")
	}
	if len(charSet) > 256 {
		return "", xerrors.Errorf("charset has %d runes, at most 256 are supported", len(charSet))
	}

	limit := 256 - (256 % len(charSet))
	var buf strings.Builder
	buf.Grow(size)
	written := 0
	for written < size {
		// Over-read so that rejected bytes rarely require a second syscall.
		entropy, err := BytesFrom(r, 2*(size-written))
		if err != nil {
			return "", err
		}
		for _, b := range entropy {
			if int(b) >= limit {
				continue
			}
			_, _ = buf.WriteRune(charSet[int(b)%len(charSet)])
			written++
			if written == size {
				break
			}
		}
	}
	return buf.String(), nil
}

// String returns a random string using Default.
func String(size int) (string, error) {
	return StringCharset(Default, size)
}

// HexString returns a hexadecimal string of given length.
func HexString(size int) (string, error) {
	return StringCharset(Hex, size)
}

// SecretString returns a random operator secret of the given length using
// the Secret charset.
func SecretString(size int) (string, error) {
	return StringCharset(Secret, size)
}

// MustString generates a random string of the given length, using
// the Default charset. It will panic if an error occurs.
func MustString(size int) string {
	s, err := String(size)
	if err != nil {
		panic(err)
	}
	return s
}
