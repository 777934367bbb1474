package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tinytelemetry/carbondash/internal/report"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard for one commit",
	Long: `Run the pipeline once and print the summary cards, the embed URL and
the chart datasets.

Formats:
  text  - human readable (default)
  json  - indented JSON
  toon  - token-oriented object notation

Examples:
  carbondash report --stream "25 King" --format json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", string(report.FormatText), "output format: text, json or toon")
	addSelectionFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	a, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := a.pipeline.Run(ctx, a.request())
	if err != nil {
		return err
	}
	return report.Encode(cmd.OutOrStdout(), d, format)
}
