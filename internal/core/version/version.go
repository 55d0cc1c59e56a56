// Package version reports build information for toxlens binaries
package version

import "runtime/debug"

// BuildInfo holds version information about the binary
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// set via -ldflags "-X 'toxlens/internal/core/version.version=v0.1.0' -X ..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	readBuild = debug.ReadBuildInfo
)

// Info returns build information for service, vcs stamps fill in unset ldflags
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	info, ok := readBuild()
	if !ok {
		return bi
	}
	bi.GoVersion = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if bi.Commit == "none" {
				bi.Commit = s.Value
			}
		case "vcs.time":
			if bi.Date == "unknown" {
				bi.Date = s.Value
			}
		}
	}
	return bi
}
