package secretcrypt

import (
	"github.com/coder/serpent"
)

// Environment variables read by Config.Options.
const (
	EnvEncryptionKey   = "SECRETCRYPT_ENCRYPTION_KEY"
	EnvFallbackKey     = "SECRETCRYPT_SECRET_KEY"
	EnvStrict          = "SECRETCRYPT_STRICT"
	EnvCipherVersion   = "SECRETCRYPT_CIPHER_VERSION"
	annotationSecret   = "secret"
	annotationSecretOn = "true"
)

// Config is the operator-facing configuration of at-rest encryption. It is
// populated once at startup from flags and environment variables.
type Config struct {
	Secret         string
	FallbackSecret string
	Strict         bool
	Version        string
}

// Options binds the config to flags and environment variables.
func (c *Config) Options() serpent.OptionSet {
	return serpent.OptionSet{
		{
			Name:        "Encryption Key",
			Description: "Secret used to derive the at-rest encryption key. Must be at least 16 characters; shorter values disable encryption.",
			Flag:        "encryption-key",
			Env:         EnvEncryptionKey,
			Value:       serpent.StringOf(&c.Secret),
			Annotations: SecretAnnotations(),
		},
		{
			Name:        "Fallback Encryption Key",
			Description: "Used when the encryption key is unset.",
			Flag:        "fallback-encryption-key",
			Env:         EnvFallbackKey,
			Value:       serpent.StringOf(&c.FallbackSecret),
			Annotations: SecretAnnotations(),
		},
		{
			Name:        "Strict Encryption",
			Description: "Return errors instead of falling back to plaintext or opaque ciphertext.",
			Flag:        "strict",
			Env:         EnvStrict,
			Default:     "false",
			Value:       serpent.BoolOf(&c.Strict),
		},
		{
			Name:        "Cipher Version",
			Description: "Cipher used for newly encrypted values. v1 is AES-256-GCM, v2 is XChaCha20-Poly1305.",
			Flag:        "cipher-version",
			Env:         EnvCipherVersion,
			Default:     DefaultVersion,
			Value:       serpent.EnumOf(&c.Version, Versions...),
		},
	}
}

// ActiveSecret returns the first non-empty secret. A too-short primary
// secret does not fall through to the fallback.
func (c Config) ActiveSecret() Secret {
	if c.Secret != "" {
		return Secret(c.Secret)
	}
	return Secret(c.FallbackSecret)
}

// SecretAnnotations marks an option as holding sensitive material so help
// output and config dumps leave its value out.
func SecretAnnotations() serpent.Annotations {
	return serpent.Annotations{}.Mark(annotationSecret, annotationSecretOn)
}

// IsSecretOption reports whether the option holds key material and must not
// be printed.
func IsSecretOption(opt serpent.Option) bool {
	return opt.Annotations.IsSet(annotationSecret)
}

// String never includes the secrets.
func (c Config) String() string {
	return "secretcrypt.Config{Secret: REDACTED}"
}

func (c Config) GoString() string {
	return c.String()
}
