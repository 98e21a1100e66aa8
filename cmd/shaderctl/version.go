package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "0.1.0-dev"
	commit  = ""
)

type versionPayload struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := versionPayload{Tool: "shaderctl", Version: version, Commit: commit}
		return emit(cmd.OutOrStdout(), p, func(w io.Writer) error {
			line := headerColor.Sprint(p.Tool) + " " + p.Version
			if p.Commit != "" {
				line += " (" + p.Commit + ")"
			}
			_, err := fmt.Fprintln(w, line)
			return err
		})
	},
}
