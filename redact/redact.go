// Package redact masks credential fields in configuration records before
// they are logged or displayed.
package redact

import (
	"reflect"
	"slices"
	"sort"
	"strings"
	"unicode"

	"cdr.dev/slog/v3"
)

// Mask replaces sensitive values.
const Mask = "***"

// KeySet is an immutable set of sensitive field names. Names are normalized
// on the way in, so "apiKey", "API Key" and "api-key" all match "api_key".
// The zero value holds no names, and Record treats it as DefaultKeys.
type KeySet struct {
	names map[string]struct{}
}

// DefaultKeys is the set used when a caller does not supply one.
var DefaultKeys = NewKeySet(
	"api_key",
	"access_key_id",
	"secret_access_key",
	"password",
	"secret",
)

// NewKeySet returns a set holding the normalized names.
func NewKeySet(names ...string) KeySet {
	ks := KeySet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n := Normalize(n); n != "" {
			ks.names[n] = struct{}{}
		}
	}
	return ks
}

// Has reports whether name is sensitive.
func (ks KeySet) Has(name string) bool {
	_, ok := ks.names[Normalize(name)]
	return ok
}

// Len returns the number of names in the set.
func (ks KeySet) Len() int {
	return len(ks.names)
}

// Names returns the normalized names in sorted order.
func (ks KeySet) Names() []string {
	out := make([]string, 0, len(ks.names))
	for n := range ks.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Union returns a new set holding the names of ks and every other set.
func (ks KeySet) Union(others ...KeySet) KeySet {
	out := KeySet{names: make(map[string]struct{}, len(ks.names))}
	for n := range ks.names {
		out.names[n] = struct{}{}
	}
	for _, o := range others {
		for n := range o.names {
			out.names[n] = struct{}{}
		}
	}
	return out
}

// Normalize lowercases name, splits camelCase words and collapses any run of
// non-alphanumeric characters into a single underscore.
func Normalize(name string) string {
	runes := []rune(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(runes) + 4)
	pendingSep := false
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			var next rune
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && unicode.IsLower(next)) {
				pendingSep = b.Len() > 0
			}
		}
		if pendingSep {
			_ = b.WriteByte('_')
			pendingSep = false
		}
		_, _ = b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Record returns a copy of record with every sensitive, non-empty value
// replaced by Mask. The input is never modified. A zero KeySet selects
// DefaultKeys.
func Record(record map[string]any, keys KeySet) map[string]any {
	if record == nil {
		return nil
	}
	if keys.names == nil {
		keys = DefaultKeys
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		if keys.Has(k) && !IsEmpty(v) {
			out[k] = Mask
			continue
		}
		out[k] = v
	}
	return out
}

// Fields returns the redacted record as slog fields sorted by name, ready to
// be passed to a logger.
func Fields(record map[string]any, keys KeySet) []slog.Field {
	redacted := Record(record, keys)
	names := make([]string, 0, len(redacted))
	for k := range redacted {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]slog.Field, 0, len(names))
	for _, k := range names {
		fields = append(fields, slog.F(k, redacted[k]))
	}
	return fields
}

// IsEmpty reports whether v holds no value worth masking: nil, a nil
// pointer, an empty string or an empty byte slice.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	case []byte:
		return len(val) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
