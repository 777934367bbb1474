package main

import (
	"errors"
	"fmt"

	"github.com/tinytelemetry/carbondash/internal/catalog"
	"github.com/tinytelemetry/carbondash/internal/charts"
	"github.com/tinytelemetry/carbondash/internal/duckdb"
	"github.com/tinytelemetry/carbondash/internal/logging"
	"github.com/tinytelemetry/carbondash/internal/pipeline"
	"github.com/tinytelemetry/carbondash/internal/report"
	"github.com/tinytelemetry/carbondash/internal/selection"
)

// app holds the components every subcommand shares.
type app struct {
	cfg      appConfig
	log      *logging.Logger
	store    *duckdb.Store
	loader   *charts.Loader
	pipeline *pipeline.Pipeline
}

// newApp wires logging, the chart store and the pipeline from cfg.
// tuiMode keeps log output off the terminal.
func newApp(cfg appConfig, tuiMode bool) (*app, error) {
	policy, err := selection.ParsePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	branchCount, err := report.ParseBranchCount(cfg.BranchCount)
	if err != nil {
		return nil, err
	}
	specs, err := charts.LoadManifest(cfg.DatasetManifest)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(logging.Options{
		File:  cfg.LogFile,
		Level: cfg.LogLevel,
		TUI:   tuiMode,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("opening chart store: %w", err)
	}

	loader := charts.NewLoader(store, store, cfg.DataDir, specs, logger.With("component", "charts"))
	p := pipeline.New(pipeline.Config{
		Server: cfg.Server,
		Limits: catalog.Limits{
			Streams:  cfg.StreamLimit,
			Branches: cfg.BranchLimit,
			Commits:  cfg.CommitLimit,
		},
		Policy: policy,
		Cards:  report.Options{BranchCount: branchCount},
		Title:  cfg.Title,
		About:  cfg.About,
	},
		pipeline.SpeckleDialer(cfg.RequestTimeout, cfg.MaxRetries, logger.With("component", "speckle")),
		loader,
		logger.With("component", "pipeline"),
	)

	logger.Debug("configuration loaded",
		"config", cfg.ConfigPath,
		"server", cfg.Server,
		"data_dir", cfg.DataDir,
		"db_path", cfg.DBPath,
		"datasets", len(specs),
		"policy", policy.String(),
	)

	return &app{cfg: cfg, log: logger, store: store, loader: loader, pipeline: p}, nil
}

// Close releases the store and the log file.
func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.log.Close())
}

// request builds the first run from configured values.
func (a *app) request() pipeline.Request {
	return pipeline.Request{
		Server:      a.cfg.Server,
		Token:       a.cfg.Token,
		StreamName:  a.cfg.Stream,
		CommitLabel: a.cfg.Commit,
	}
}
