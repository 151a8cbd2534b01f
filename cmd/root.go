// Package cmd provides the command-line interface for the metaissue tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metaissue",
	Short: "Metaissue fans a meta issue out into sub-issues across repositories",
	Long: `Metaissue reads the checklist in a meta tracking issue, creates one sub-issue
in every checked repository (plus an optional spec issue), and rewrites the
meta issue with an overview linking to everything it created.

It is meant to run as a GitHub Actions step: inputs arrive as INPUT_<NAME>
environment variables and the runner's GITHUB_* variables supply defaults.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Optional config file supplying inputs (yaml, json, toml)")

	rootCmd.AddCommand(runCmd)
}
