// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Heavily inspired by https://github.com/btcsuite/btcd/blob/master/version.go

package bpstd

import (
	"bytes"
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Commit stores the current commit of this build, which includes the
	// most recent tag, the number of commits since that tag (if non-zero),
	// the commit hash, and a dirty marker. This should be set using the
	// -ldflags during compilation.
	Commit string

	// CommitHash stores the current commit hash of this build.
	CommitHash string

	// GoVersion stores the go version that the executable was compiled
	// with.
	GoVersion string
)

// versionFieldsAlphabet is the set of characters that are permitted for use in
// a version string field.
const versionFieldsAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// These constants define the library version and follow the semantic
// versioning 2.0.0 spec (http://semver.org/).
const (
	// AppMajor defines the major version of this library.
	AppMajor uint = 0

	// AppMinor defines the minor version of this library.
	AppMinor uint = 11

	// AppPatch defines the patch version of this library.
	AppPatch uint = 0

	// AppStatus defines the release status (e.g. beta).
	AppStatus = "beta"

	// AppPreRelease defines the pre-release version. It MUST only contain
	// characters from the semantic versioning spec.
	AppPreRelease = ""
)

func init() {
	for _, r := range AppStatus + AppPreRelease {
		if !strings.ContainsRune(versionFieldsAlphabet, r) {
			panic(fmt.Errorf("rune: %v is not in the semantic "+
				"alphabet", r))
		}
	}

	// Get build information from the runtime.
	if info, ok := debug.ReadBuildInfo(); ok {
		GoVersion = info.GoVersion
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				CommitHash = setting.Value
			}
		}
	}
}

// Version returns the version as a properly formed string per the semantic
// versioning 2.0.0 spec (http://semver.org/). Builds without a Commit set via
// -ldflags fall back to the VCS revision the Go toolchain recorded.
func Version() string {
	switch {
	case Commit != "":
		return fmt.Sprintf("%s commit=%s", semanticVersion(), Commit)

	case CommitHash != "":
		return fmt.Sprintf("%s commit_hash=%s", semanticVersion(),
			CommitHash)

	default:
		return semanticVersion()
	}
}

// normalizeVerString returns the passed string stripped of all characters
// which are not valid according to the given alphabet.
func normalizeVerString(str, alphabet string) string {
	var result bytes.Buffer
	for _, r := range str {
		if strings.ContainsRune(alphabet, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// semanticVersion returns the SemVer part of the version.
func semanticVersion() string {
	version := fmt.Sprintf("%d.%d.%d", AppMajor, AppMinor, AppPatch)

	appStatus := normalizeVerString(AppStatus, versionFieldsAlphabet)
	preRelease := normalizeVerString(AppPreRelease, versionFieldsAlphabet)

	switch {
	case appStatus != "" && preRelease != "":
		version = fmt.Sprintf(
			"%s-%s.%s", version, appStatus, preRelease,
		)
	case appStatus != "":
		version = fmt.Sprintf("%s-%s", version, appStatus)
	case preRelease != "":
		version = fmt.Sprintf("%s-%s", version, preRelease)
	}

	return version
}
