package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are populated at build time via -ldflags, e.g.
//
//	-X github.com/faizmokh/timesheets/internal/version.Version=v0.3.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a human-friendly version string that surfaces build metadata.
// Builds made with `go install` carry no ldflags, so the module version and
// VCS stamp recorded by the toolchain are used instead.
func Info() string {
	version, commit, date := Version, Commit, Date
	if bi, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			version = v
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "none":
				commit = s.Value[:min(len(s.Value), 12)]
			case s.Key == "vcs.time" && date == "unknown":
				date = s.Value
			}
		}
	}
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
