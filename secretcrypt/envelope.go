package secretcrypt

import (
	"encoding/base64"
	"slices"
	"strings"

	"golang.org/x/xerrors"
)

// Marker prefixes every encrypted value. The full layout is
// "enc:<version>:<base64url payload>".
const Marker = "enc:"

// Strict decoding rejects payloads whose unused trailing bits are set, so
// every payload has exactly one stored form.
var payloadEncoding = base64.RawURLEncoding.Strict()

// HasMarker reports whether s is tagged as ciphertext. Decrypt dispatches on
// this alone; anything else is treated as plaintext.
func HasMarker(s string) bool {
	return strings.HasPrefix(s, Marker)
}

// IsEncrypted reports whether s is structurally an envelope: it carries the
// marker, a known version and a payload long enough to hold a nonce and tag.
// It does not check authenticity.
func IsEncrypted(s string) bool {
	version, payload, err := parseEnvelope(s)
	if err != nil {
		return false
	}
	minLen, ok := minPayloadLen[version]
	return ok && len(payload) >= minLen
}

// minPayloadLen is nonce + tag for each version.
var minPayloadLen = map[string]int{
	VersionAES256GCM:         12 + 16,
	VersionXChaCha20Poly1305: 24 + 16,
}

func formatEnvelope(version string, payload []byte) string {
	var b strings.Builder
	b.Grow(len(Marker) + len(version) + 1 + payloadEncoding.EncodedLen(len(payload)))
	_, _ = b.WriteString(Marker)
	_, _ = b.WriteString(version)
	_ = b.WriteByte(':')
	_, _ = b.WriteString(payloadEncoding.EncodeToString(payload))
	return b.String()
}

func parseEnvelope(s string) (version string, payload []byte, err error) {
	rest, ok := strings.CutPrefix(s, Marker)
	if !ok {
		return "", nil, xerrors.Errorf("%w: missing marker", ErrMalformed)
	}
	version, encoded, ok := strings.Cut(rest, ":")
	if !ok || version == "" {
		return "", nil, xerrors.Errorf("%w: missing version", ErrMalformed)
	}
	if !slices.Contains(Versions, version) {
		return version, nil, xerrors.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	payload, err = payloadEncoding.DecodeString(encoded)
	if err != nil {
		return version, nil, xerrors.Errorf("%w: payload is not base64url", ErrMalformed)
	}
	return version, payload, nil
}
