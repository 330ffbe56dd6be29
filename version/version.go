// Package version holds build information and the "version" command.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/jongio/taskport/version.Version=..." at build time.
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds version information for a taskport binary.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	Platform  string `json:"platform"`
}

// New returns the build information for the named binary.
func New(name string) *Info {
	return &Info{
		Name:      name,
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable version string.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s)", i.Name, i.Version, i.GitCommit, i.BuildDate, i.Platform)
}
