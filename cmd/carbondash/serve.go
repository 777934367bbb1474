package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/carbondash/internal/httpserver"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard as a JSON API",
	Long: `Start the HTTP API. Every dashboard request authenticates with its own
bearer token; the configured token is never used by the server.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	// Warm the chart store so /api/query has rows before the first request.
	loaded := 0
	if datasets, err := a.loader.LoadAll(ctx); err != nil {
		a.log.Warn("chart datasets not loaded", "err", err)
	} else {
		loaded = len(datasets)
	}

	apiServer := httpserver.NewServer(a.cfg.APIAddr, a.store, a.pipeline, a.loader, a.log.Logger)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	printStartupBanner(a.cfg, loaded)
	a.log.Info("api listening", "addr", apiServer.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		a.log.Error("server: errgroup exited with error", "err", err)
		return err
	}
	return nil
}

func printStartupBanner(cfg appConfig, datasets int) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╔═╗╦═╗╔╗ ╔═╗╔╗╔╔╦╗╔═╗╔═╗╦ ╦
    ║  ╠═╣╠╦╝╠╩╗║ ║║║║ ║║╠═╣╚═╗╠═╣
    ╚═╝╩ ╩╩╚═╚═╝╚═╝╝╚╝═╩╝╩ ╩╚═╝╩ ╩`)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+dim.Render("v"+version))
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	lines = append(lines, fmt.Sprintf("    %s  Speckle        %s", check, cyan.Render(cfg.Server)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Charts"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Data Dir       %s", check, dim.Render(shortenPath(cfg.DataDir))))
	if datasets > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Datasets       %s", check, dim.Render(fmt.Sprintf("%d loaded", datasets))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Datasets       %s", dot, dim.Render("not loaded")))
	}
	if cfg.DBPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render(shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", dot, dim.Render("in-memory")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
