package secretcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/cryptorand"
)

// Cipher versions. The version is written into every envelope so values
// sealed by an older primitive stay readable after the default changes.
const (
	// VersionAES256GCM seals with AES-256-GCM and a 12 byte nonce.
	VersionAES256GCM = "v1"
	// VersionXChaCha20Poly1305 seals with XChaCha20-Poly1305 and a 24 byte
	// nonce.
	VersionXChaCha20Poly1305 = "v2"

	DefaultVersion = VersionAES256GCM
)

// Versions lists every cipher version that can be decrypted.
var Versions = []string{VersionAES256GCM, VersionXChaCha20Poly1305}

// Cipher is an authenticated encryption primitive bound to a single key.
// Sealed output is nonce || ciphertext || tag.
type Cipher interface {
	Version() string
	Encrypt([]byte) ([]byte, error)
	Decrypt([]byte) ([]byte, error)
	// Overhead is the number of bytes Encrypt adds to the plaintext.
	Overhead() int
}

// NewCipher returns the cipher for version keyed with key.
func NewCipher(version string, key Key) (Cipher, error) {
	return newCipher(version, key, rand.Reader)
}

func newCipher(version string, key Key, r io.Reader) (Cipher, error) {
	var (
		aead cipher.AEAD
		err  error
	)
	switch version {
	case VersionAES256GCM:
		var block cipher.Block
		block, err = aes.NewCipher(key[:])
		if err != nil {
			return nil, xerrors.Errorf("create aes cipher: %w", err)
		}
		aead, err = cipher.NewGCM(block)
	case VersionXChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key[:])
	default:
		return nil, xerrors.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	if err != nil {
		return nil, xerrors.Errorf("create %s aead: %w", version, err)
	}
	return &aeadCipher{version: version, aead: aead, rand: r}, nil
}

type aeadCipher struct {
	version string
	aead    cipher.AEAD
	rand    io.Reader
}

func (a *aeadCipher) Version() string {
	return a.version
}

func (a *aeadCipher) Overhead() int {
	return a.aead.NonceSize() + a.aead.Overhead()
}

func (a *aeadCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce, err := cryptorand.BytesFrom(a.rand, a.aead.NonceSize())
	if err != nil {
		return nil, xerrors.Errorf("generate nonce: %w", err)
	}
	return a.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (a *aeadCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < a.Overhead() {
		return nil, xerrors.Errorf("%w: ciphertext too short", ErrMalformed)
	}
	nonceSize := a.aead.NonceSize()
	decrypted, err := a.aead.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, err
	}
	return decrypted, nil
}
