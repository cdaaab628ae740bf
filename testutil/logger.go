package testutil

import (
	"testing"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/slogtest"
)

// Logger returns a "standard" testing logger at debug level. Warnings are
// expected from degraded encryption paths and do not fail the test.
func Logger(t testing.TB) slog.Logger {
	return slogtest.Make(t, nil).Leveled(slog.LevelDebug)
}
