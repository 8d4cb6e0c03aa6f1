// Package cli implements the medmuse command-line client.  It talks to a
// running backend over HTTP through pkg/client.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medmuse/medmuse-backend/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ServerAddr string
	UserID     int64
	Timeout    time.Duration
	JSONOutput bool
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "medmuse",
		Short:   "MedMuse CLI client for the symptom-tracking backend",
		Long:    "medmuse drives the MedMuse backend HTTP API: generate health reports\nfrom tracked symptoms, list and inspect them, and download rendered PDFs.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "backend address")
	pf.Int64VarP(&opts.UserID, "user", "u", 0, "user ID to act as (required)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-request timeout")
	pf.BoolVar(&opts.JSONOutput, "json", false, "emit raw JSON instead of text")

	cmd.AddCommand(NewReportCmd(opts), NewMigrateCmd())

	return cmd
}

// newClient builds the SDK client from the global flags.
func (o *RootOptions) newClient() (*client.Client, error) {
	if o.UserID <= 0 {
		return nil, fmt.Errorf("--user is required and must be positive")
	}
	return client.NewClient(o.ServerAddr, o.UserID, client.WithTimeout(o.Timeout))
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
