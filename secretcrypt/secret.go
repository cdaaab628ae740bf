package secretcrypt

import (
	"crypto/sha256"
	"fmt"
	"unicode/utf8"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

// MinSecretLength is the minimum number of characters an operator secret
// needs before a key is derived from it. Shorter secrets yield no key.
const MinSecretLength = 16

// Secret is an operator-supplied passphrase. It formats as a placeholder so
// it can't end up in logs through %v or %#v.
type Secret string

func (Secret) String() string {
	return "Secret(REDACTED)"
}

func (Secret) GoString() string {
	return "secretcrypt.Secret(REDACTED)"
}

// Len returns the length of the secret in characters.
func (s Secret) Len() int {
	return utf8.RuneCountInString(string(s))
}

// Usable reports whether a key can be derived from the secret.
func (s Secret) Usable() bool {
	return s.Len() >= MinSecretLength
}

// MinSecretEntropy is the estimated entropy, in bits, below which New warns
// that the secret is guessable. It does not prevent a key from being derived.
const MinSecretEntropy = 60

// Entropy estimates the strength of the secret in bits.
func (s Secret) Entropy() float64 {
	return passwordvalidator.GetEntropy(string(s))
}

// Weak reports whether a usable secret is below MinSecretEntropy.
func (s Secret) Weak() bool {
	return passwordvalidator.Validate(string(s), MinSecretEntropy) != nil
}

// KeySize is the size of a derived key in bytes.
const KeySize = 32

// Key is 256 bits of key material derived from a Secret.
type Key [KeySize]byte

// HexDigest identifies the key without revealing it. Two processes with the
// same operator secret report the same digest.
func (k Key) HexDigest() string {
	digest := sha256.Sum256(k[:])
	return fmt.Sprintf("%x", digest)
}

func (Key) String() string {
	return "Key(REDACTED)"
}

func (Key) GoString() string {
	return "secretcrypt.Key(REDACTED)"
}

// DeriveKey hashes the secret into a 256-bit key. The second return value is
// false when the secret is too short, which callers treat as "encryption
// disabled" rather than an error.
func DeriveKey(secret Secret) (Key, bool) {
	if !secret.Usable() {
		return Key{}, false
	}
	return Key(sha256.Sum256([]byte(secret))), true
}
