package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"reindent/internal/driver"
	"reindent/internal/version"
)

// buildReport is what `reindent version` knows about the running binary.
// Fields other than Tool and Version are filled only with --full.
type buildReport struct {
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	Commit      string `json:"commit,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	GoVersion   string `json:"go,omitempty"`
	CacheSchema uint16 `json:"cache_schema,omitempty"`
}

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "also show commit, build date, toolchain and cache schema")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show reindent build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(versionFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
		if err := applyColorFlag(cmd); err != nil {
			return err
		}

		rep := readBuildReport(versionFull, debug.ReadBuildInfo)
		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		writeBuildReport(cmd.OutOrStdout(), rep, versionFull)
		return nil
	},
}

// readBuildReport prefers the values stamped with -ldflags and falls back to
// the VCS settings the go tool embeds in the binary.
func readBuildReport(full bool, readInfo func() (*debug.BuildInfo, bool)) buildReport {
	rep := buildReport{
		Tool:    "reindent",
		Version: strings.TrimSpace(version.Version),
	}
	if rep.Version == "" {
		rep.Version = "dev"
	}
	if !full {
		return rep
	}

	rep.Commit = strings.TrimSpace(version.GitCommit)
	rep.BuildDate = strings.TrimSpace(version.BuildDate)
	rep.GoVersion = runtime.Version()
	rep.CacheSchema = driver.CacheSchemaVersion

	if info, ok := readInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rep.Commit == "" {
					rep.Commit = s.Value
				}
			case "vcs.time":
				if rep.BuildDate == "" {
					rep.BuildDate = s.Value
				}
			case "vcs.modified":
				rep.Modified = s.Value == "true"
			}
		}
		if info.GoVersion != "" {
			rep.GoVersion = info.GoVersion
		}
	}
	if rep.Commit == "" {
		rep.Commit = "unknown"
	}
	if rep.BuildDate == "" {
		rep.BuildDate = "unknown"
	}
	return rep
}

func writeBuildReport(out io.Writer, rep buildReport, full bool) {
	fmt.Fprintf(out, "%s %s\n", rep.Tool, version.Colored(rep.Version))
	if !full {
		return
	}
	commit := rep.Commit
	if rep.Modified {
		commit += " (modified)"
	}
	fmt.Fprintf(out, "  commit: %s\n", commit)
	fmt.Fprintf(out, "  built:  %s\n", rep.BuildDate)
	fmt.Fprintf(out, "  go:     %s\n", rep.GoVersion)
	fmt.Fprintf(out, "  cache:  schema %d\n", rep.CacheSchema)
}
