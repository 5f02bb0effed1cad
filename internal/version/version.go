// Package version exposes build metadata injected through ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/workflow-telemetry/internal/version.Version=v1.0.0"
package version

import "fmt"

var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by the version command.
func String() string {
	return fmt.Sprintf("workflow-telemetry %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// UserAgent identifies outgoing HTTP requests.
func UserAgent() string {
	return "workflow-telemetry/" + Version
}
