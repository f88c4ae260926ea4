package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time. When unset, the VCS stamp from
// `go build` is used.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		commit, date := buildStamp()
		fmt.Fprintf(cmd.OutOrStdout(), "seastate %s (commit: %s, built: %s, %s)\n",
			Version, commit, date, runtime.Version())
	},
}

// buildStamp resolves commit and build time, preferring ldflags.
func buildStamp() (commit, date string) {
	commit, date = Commit, BuildDate
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}

// VersionString is the version reported by the health endpoint and MCP server.
func VersionString() string {
	commit, _ := buildStamp()
	return fmt.Sprintf("%s (%s)", Version, commit)
}
