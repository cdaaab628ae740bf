package secretcrypt

import (
	"golang.org/x/xerrors"
)

var (
	// ErrKeyUnavailable is returned in strict mode when no usable operator
	// secret is configured.
	ErrKeyUnavailable = xerrors.New("no encryption key configured")
	// ErrMalformed means a marked value could not be parsed as an envelope.
	ErrMalformed = xerrors.New("malformed encrypted value")
	// ErrUnknownVersion means the envelope names a cipher version this build
	// can't decrypt.
	ErrUnknownVersion = xerrors.New("unknown cipher version")
)

// DecryptFailedError is returned in strict mode when a marked value can't be
// decrypted: wrong key, corruption or tampering.
type DecryptFailedError struct {
	Inner error
}

func (e *DecryptFailedError) Error() string {
	return xerrors.Errorf("decrypt failed: %w", e.Inner).Error()
}

func (e *DecryptFailedError) Unwrap() error {
	return e.Inner
}

// EncryptFailedError is returned in strict mode when the underlying
// primitive fails, e.g. the random source errors.
type EncryptFailedError struct {
	Inner error
}

func (e *EncryptFailedError) Error() string {
	return xerrors.Errorf("encrypt failed: %w", e.Inner).Error()
}

func (e *EncryptFailedError) Unwrap() error {
	return e.Inner
}

// IsDecryptFailed reports whether err is or wraps a DecryptFailedError.
func IsDecryptFailed(err error) bool {
	var derr *DecryptFailedError
	return xerrors.As(err, &derr)
}
