package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gqlmerge/internal/version"
)

// versionPayload is printed by `version --format=json`; hash and date are
// omitted unless requested.
type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var (
		format           string
		full, hash, date bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show gqlmerge build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Current()
			p := versionPayload{Tool: "gqlmerge", Version: info.Version}
			if hash || full {
				p.GitCommit = orUnknown(info.GitCommit)
			}
			if date || full {
				p.BuildDate = orUnknown(info.BuildDate)
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			case "pretty":
				fmt.Fprintf(out, "%s %s\n", p.Tool, version.Colored(p.Version, colorEnabled(cmd)))
				if p.GitCommit != "" {
					fmt.Fprintf(out, "commit: %s\n", p.GitCommit)
				}
				if p.BuildDate != "" {
					fmt.Fprintf(out, "built:  %s\n", p.BuildDate)
				}
				return nil
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&hash, "hash", false, "include git commit hash")
	f.BoolVar(&date, "date", false, "include build timestamp")
	f.BoolVar(&full, "full", false, "show all recorded build metadata")
	f.StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
