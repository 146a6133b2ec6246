// Package version provides build version information for omarchist.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"
	// Commit is the git commit hash (set by build flags)
	Commit = "unknown"
	// BuildDate is the build date (set by build flags)
	BuildDate = "unknown"
)

// Info contains version and build information
type Info struct {
	Version   string `json:"version" yaml:"version" toml:"version"`
	Commit    string `json:"commit" yaml:"commit" toml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date" toml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version" toml:"go_version"`
	Platform  string `json:"platform" yaml:"platform" toml:"platform"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return i.Version
}

// Full returns a detailed version string with all build information
func (i Info) Full() string {
	return fmt.Sprintf("%s (%s) built %s %s %s", i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// IsRelease reports whether the build carries a stable semantic version.
// Development builds and prereleases are not releases.
func (i Info) IsRelease() bool {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}
