package main

import (
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/carbondash/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the terminal dashboard. Without --stream a stream picker opens
first. Logs go to log-file only while the dashboard owns the terminal.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	addSelectionFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	req := a.request()
	return tui.Run(cmd.Context(), a.pipeline, tui.Options{
		Server:      req.Server,
		Token:       req.Token,
		StreamName:  req.StreamName,
		CommitLabel: req.CommitLabel,
	})
}
