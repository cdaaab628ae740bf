package buildinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/mod/semver"

	"github.com/coder/secretcrypt/buildinfo"
	"github.com/coder/secretcrypt/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.GoleakOptions...)
}

func TestBuildInfo(t *testing.T) {
	t.Parallel()

	t.Run("Version", func(t *testing.T) {
		t.Parallel()
		version := buildinfo.Version()
		require.True(t, semver.IsValid(version), "version %q is not semver", version)
		// Tests never have a tag injected.
		assert.True(t, buildinfo.IsDev())
	})

	t.Run("ExternalURL", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, buildinfo.ExternalURL(), "github.com/coder/secretcrypt")
	})

	t.Run("Time", func(t *testing.T) {
		t.Parallel()
		_, _ = buildinfo.Time()
	})
}
