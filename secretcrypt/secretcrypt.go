// Package secretcrypt encrypts credential values before they are persisted
// and decrypts them after they are read.
//
// Encrypted values are self-describing strings of the form
// "enc:<version>:<payload>", so encrypted and plaintext rows can coexist and
// new cipher versions can be introduced without rewriting old rows.
//
// By default every degraded path is non-fatal: with no key configured values
// pass through unchanged, and values that fail to decrypt are returned as
// stored. Strict mode turns those paths into typed errors.
package secretcrypt

import (
	"context"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"
)

// Options configures a Crypter.
type Options struct {
	// Secret is the operator secret. Secrets shorter than MinSecretLength
	// leave the Crypter in pass-through mode.
	Secret Secret
	// Version selects the cipher for new values. Defaults to DefaultVersion.
	Version string
	// Strict returns errors instead of degrading.
	Strict bool
	Logger slog.Logger
	// Registerer receives the operation counter. May be nil.
	Registerer prometheus.Registerer
	// Rand is the nonce source. Defaults to crypto/rand.
	Rand io.Reader
}

// Crypter encrypts and decrypts individual values. It is immutable after
// New and safe for concurrent use.
type Crypter struct {
	logger  slog.Logger
	strict  bool
	metrics *metrics

	// primary seals new values. It is nil when no key is available.
	primary Cipher
	// ciphers holds one cipher per version, all keyed with the same key.
	ciphers map[string]Cipher
	digest  string
}

// New derives the key from opts.Secret and prepares a cipher for every
// supported version. A missing or short secret is not an error.
func New(opts Options) (*Crypter, error) {
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	c := &Crypter{
		logger:  opts.Logger.Named("secretcrypt"),
		strict:  opts.Strict,
		metrics: m,
	}

	key, ok := DeriveKey(opts.Secret)
	if !ok {
		if _, err := newCipher(version, Key{}, opts.Rand); err != nil {
			return nil, err
		}
		if opts.Secret.Len() > 0 {
			c.logger.Warn(context.Background(), "encryption key is too short, values will be stored in plaintext",
				slog.F("min_length", MinSecretLength),
			)
		} else {
			c.logger.Info(context.Background(), "no encryption key configured, values will be stored in plaintext")
		}
		return c, nil
	}

	c.ciphers = make(map[string]Cipher, len(Versions))
	for _, v := range Versions {
		ciph, err := newCipher(v, key, opts.Rand)
		if err != nil {
			return nil, xerrors.Errorf("create cipher %s: %w", v, err)
		}
		c.ciphers[v] = ciph
	}
	primary, ok := c.ciphers[version]
	if !ok {
		return nil, xerrors.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	c.primary = primary
	c.digest = key.HexDigest()
	if opts.Secret.Weak() {
		c.logger.Warn(context.Background(), "encryption key has low entropy, generate one with \"secretcrypt keygen\"",
			slog.F("entropy_bits", int(opts.Secret.Entropy())),
			slog.F("min_entropy_bits", MinSecretEntropy),
		)
	}
	c.logger.Debug(context.Background(), "at-rest encryption enabled",
		slog.F("cipher_version", version),
		slog.F("key_digest", c.digest),
	)
	return c, nil
}

// Enabled reports whether a key is available.
func (c *Crypter) Enabled() bool {
	return c.primary != nil
}

// Strict reports whether degraded paths return errors.
func (c *Crypter) Strict() bool {
	return c.strict
}

// Version returns the cipher version used for new values, or "" when
// encryption is disabled.
func (c *Crypter) Version() string {
	if c.primary == nil {
		return ""
	}
	return c.primary.Version()
}

// KeyDigest identifies the active key, or "" when encryption is disabled.
func (c *Crypter) KeyDigest() string {
	return c.digest
}

// Encrypt seals plaintext into an envelope. Blank values and envelopes that
// open under the current key are returned unchanged; anything else,
// including look-alike strings and envelopes from another key, is sealed.
// Without a key, or if the
// cipher fails, the plaintext is returned; in strict mode those cases return
// ErrKeyUnavailable or an *EncryptFailedError instead.
func (c *Crypter) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if isBlank(plaintext) || c.opens(plaintext) {
		c.metrics.record(OperationEncrypt, ResultPassthrough)
		return plaintext, nil
	}
	if c.primary == nil {
		c.metrics.record(OperationEncrypt, ResultKeyUnavailable)
		if c.strict {
			return "", ErrKeyUnavailable
		}
		return plaintext, nil
	}

	sealed, err := c.primary.Encrypt([]byte(plaintext))
	if err != nil {
		c.metrics.record(OperationEncrypt, ResultFailed)
		if c.strict {
			return "", &EncryptFailedError{Inner: err}
		}
		c.logger.Warn(ctx, "encrypt failed, storing value in plaintext",
			slog.F("cipher_version", c.primary.Version()),
			slog.Error(err),
		)
		return plaintext, nil
	}
	c.metrics.record(OperationEncrypt, ResultEncrypted)
	return formatEnvelope(c.primary.Version(), sealed), nil
}

// Decrypt opens an envelope. Values without the marker are returned
// unchanged. A marked value that can't be opened, because there is no key
// or the data fails authentication, is also returned unchanged; in strict
// mode those cases return ErrKeyUnavailable or a *DecryptFailedError.
func (c *Crypter) Decrypt(ctx context.Context, stored string) (string, error) {
	if isBlank(stored) || !HasMarker(stored) {
		c.metrics.record(OperationDecrypt, ResultPassthrough)
		return stored, nil
	}
	if c.primary == nil {
		c.metrics.record(OperationDecrypt, ResultKeyUnavailable)
		if c.strict {
			return "", ErrKeyUnavailable
		}
		c.logger.Warn(ctx, "found encrypted value but no encryption key is configured")
		return stored, nil
	}

	version, payload, err := parseEnvelope(stored)
	if err != nil {
		return c.decryptFailed(ctx, stored, version, err)
	}
	ciph, ok := c.ciphers[version]
	if !ok {
		return c.decryptFailed(ctx, stored, version, xerrors.Errorf("%w: %q", ErrUnknownVersion, version))
	}
	plaintext, err := ciph.Decrypt(payload)
	if err != nil {
		return c.decryptFailed(ctx, stored, version, err)
	}
	c.metrics.record(OperationDecrypt, ResultDecrypted)
	return string(plaintext), nil
}

// opens reports whether s is an envelope that authenticates under the
// current key.
func (c *Crypter) opens(s string) bool {
	if c.primary == nil || !IsEncrypted(s) {
		return false
	}
	version, payload, err := parseEnvelope(s)
	if err != nil {
		return false
	}
	ciph, ok := c.ciphers[version]
	if !ok {
		return false
	}
	_, err = ciph.Decrypt(payload)
	return err == nil
}

func (c *Crypter) decryptFailed(ctx context.Context, stored, version string, err error) (string, error) {
	c.metrics.record(OperationDecrypt, ResultFailed)
	if c.strict {
		return "", &DecryptFailedError{Inner: err}
	}
	// Wrong key, corruption and tampering all look the same from here.
	c.logger.Warn(ctx, "decrypt failed, returning stored value",
		slog.F("cipher_version", version),
		slog.F("key_digest", c.digest),
		slog.Error(err),
	)
	return stored, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
