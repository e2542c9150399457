// Package commands implements the fsdadm CLI using cobra.
//
// fsdadm drives an in-process sandbox: a synthetic host with a handful of
// mounts, the hook framework, and the filesystem disturber wired together.
// Process-to-kernel transport is deliberately out of scope; the sandbox
// exists so the disturber's command surface and behavior can be exercised
// and observed end to end.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the CLI root with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fsdadm",
		Short: "fsdadm - filesystem disturber administration sandbox",
		Long: `fsdadm drives the filesystem disturber against an in-process
synthetic host: mount a few filesystems, install disturbance policies,
run reads and watch protocol-legal pathologies surface.

Examples:
  fsdadm demo
  fsdadm demo --chance 50 --range 5:15
  fsdadm stress --duration 10s --workers 8
  fsdadm top`,
		Version: version,
	}

	rootCmd.AddCommand(
		newDemoCmd(),
		newStressCmd(),
		newTopCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("metrics", "", "serve prometheus metrics and pprof on this address")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
