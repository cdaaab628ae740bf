// Package buildinfo reports the version the binary was built from.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"
)

const repository = "https://github.com/coder/secretcrypt"

var (
	buildInfo      *debug.BuildInfo
	buildInfoValid bool
	readBuildInfo  sync.Once

	version     string
	readVersion sync.Once

	// Injected with ldflags at build!
	tag string
)

// Info describes the running binary.
type Info struct {
	Version     string    `json:"version" yaml:"version"`
	BuildTime   time.Time `json:"build_time" yaml:"build_time"`
	ExternalURL string    `json:"external_url" yaml:"external_url"`
	// CipherVersions lists the envelope versions this build can read.
	CipherVersions []string `json:"cipher_versions" yaml:"cipher_versions"`
}

// Version returns the semantic version of the build.
// Use golang.org/x/mod/semver to compare versions.
func Version() string {
	readVersion.Do(func() {
		revision, valid := revision()
		if valid && len(revision) >= 7 {
			revision = "+" + revision[:7]
		} else {
			revision = ""
		}
		if tag == "" {
			version = "v0.0.0-devel" + revision
			return
		}
		t := strings.TrimPrefix(tag, "v")
		if semver.Build("v"+t) == "" {
			t += revision
		}
		version = "v" + t
	})
	return version
}

// IsDev reports whether this is a development build.
func IsDev() bool {
	return strings.HasPrefix(semver.Prerelease(Version()), "-devel")
}

// ExternalURL returns a URL referencing the current version.
// For production builds, this will link directly to a release.
// For development builds, this will link to a commit.
func ExternalURL() string {
	if !IsDev() {
		return fmt.Sprintf("%s/releases/tag/%s", repository, semver.Canonical(Version()))
	}
	revision, valid := revision()
	if !valid {
		return repository
	}
	return fmt.Sprintf("%s/commit/%s", repository, revision)
}

// Time returns when the Git revision was published.
func Time() (time.Time, bool) {
	value, valid := find("vcs.time")
	if !valid {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// revision returns the Git hash of the build.
func revision() (string, bool) {
	return find("vcs.revision")
}

// find looks up a setting in the build info. It reports false when the
// binary carries no build info or the setting is absent.
func find(key string) (string, bool) {
	readBuildInfo.Do(func() {
		buildInfo, buildInfoValid = debug.ReadBuildInfo()
	})
	if !buildInfoValid {
		return "", false
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key != key {
			continue
		}
		return setting.Value, true
	}
	return "", false
}
