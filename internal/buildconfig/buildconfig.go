// Package buildconfig exposes version metadata stamped into the server and
// distill binaries with -ldflags "-X".
package buildconfig

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// Date is the build timestamp, "unknown" for unstamped builds.
func Date() string {
	return date
}

// String renders a one-line summary for version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

// VersionInfo is the build block reported by /health.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}
