package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "carbondash",
	Short: "Embodied carbon dashboard for Speckle streams",
	Long: `carbondash connects to a Speckle server, summarizes one commit of a
stream (branches, commits, connectors, contributors) and renders it next
to embodied carbon charts read from local CSV exports.

Surfaces:
  serve   - JSON API over HTTP
  report  - one-shot summary on stdout
  tui     - interactive terminal dashboard`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/carbondash/config.yml)")
	rootCmd.PersistentFlags().String("server", "", "Speckle server URL (default speckle.xyz)")
	rootCmd.PersistentFlags().String("token", "", "Speckle personal access token")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "carbondash - Embodied Carbon Dashboard\n")
		fmt.Fprintf(out, "  Version:    %s\n", version)
		fmt.Fprintf(out, "  Commit:     %s\n", commit)
		fmt.Fprintf(out, "  Built:      %s\n", buildTime)
		fmt.Fprintf(out, "  Go version: %s\n", goVersion)
	},
}

// addSelectionFlags registers the stream and commit choice on cmd.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("stream", "", "stream name (default: first stream)")
	cmd.Flags().String("commit", "", "commit message, matched exactly (default: newest)")
}

// setup loads configuration for cmd and wires the shared components.
func setup(cmd *cobra.Command, tuiMode bool) (*app, error) {
	cfg, err := loadConfig(cfgFile, cmd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg, tuiMode)
}
