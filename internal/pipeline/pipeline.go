// Package pipeline runs the dashboard stages in order: connect, catalog,
// selection, statistics, cards, embed URL and chart data.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/carbondash/internal/catalog"
	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/report"
	"github.com/tinytelemetry/carbondash/internal/selection"
	"github.com/tinytelemetry/carbondash/internal/speckle"
	"github.com/tinytelemetry/carbondash/internal/stats"
)

// Dialer opens a fresh authenticated session for one run.
type Dialer func(ctx context.Context, server, token string) (model.Session, error)

// SpeckleDialer returns a Dialer backed by the GraphQL client.
func SpeckleDialer(timeout time.Duration, maxRetries int, logger *slog.Logger) Dialer {
	return func(ctx context.Context, server, token string) (model.Session, error) {
		c, err := speckle.Dial(ctx, speckle.Config{
			Server:     server,
			Token:      token,
			Timeout:    timeout,
			MaxRetries: maxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ChartLoader loads every configured chart dataset.
type ChartLoader interface {
	LoadAll(ctx context.Context) ([]model.TabularDataset, error)
}

// Config holds settings shared by every run.
type Config struct {
	Server string
	Limits catalog.Limits
	Policy selection.Policy
	Cards  report.Options
	Title  string
	About  string
}

// Request carries everything one run depends on. Previous, when set, is
// the selection shown before this run and is kept if still valid.
type Request struct {
	Server      string
	Token       string
	StreamName  string
	CommitLabel string
	CommitID    string
	Previous    *model.Selection
}

// Pipeline is safe for concurrent use; runs share nothing but the chart
// loader.
type Pipeline struct {
	cfg    Config
	dial   Dialer
	charts ChartLoader
	logger *slog.Logger
}

// New creates a pipeline. charts may be nil to skip the chart stage.
func New(cfg Config, dial Dialer, charts ChartLoader, logger *slog.Logger) *Pipeline {
	if cfg.Server == "" {
		cfg.Server = model.DefaultServer
	}
	if cfg.Title == "" {
		cfg.Title = model.DefaultTitle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, dial: dial, charts: charts, logger: logger}
}

// Config returns the shared run settings.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run executes every stage for req. The first failing stage aborts the run
// and its error is returned, wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.Dashboard, error) {
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID)
	start := time.Now()

	server := p.server(req.Server)
	sess, err := p.dial(ctx, server, req.Token)
	if err != nil {
		return nil, p.fail(log, "connect", err)
	}
	acc := catalog.New(sess, p.cfg.Limits)

	streams, err := acc.ListStreams(ctx)
	if err != nil {
		return nil, p.fail(log, "list streams", err)
	}

	stream, err := p.pickStream(ctx, acc, streams, req)
	if err != nil {
		return nil, p.fail(log, "find stream", err)
	}
	log = log.With("stream", stream.ID)

	branches, err := acc.ListBranches(ctx, stream.ID)
	if err != nil {
		return nil, p.fail(log, "list branches", err)
	}
	page, err := acc.ListCommits(ctx, stream.ID, 0)
	if err != nil {
		return nil, p.fail(log, "list commits", err)
	}

	sel, stale, err := p.resolve(stream, page.Commits, req)
	if err != nil {
		return nil, p.fail(log, "select commit", err)
	}
	if stale {
		log.Info("previous commit no longer listed", "previous", req.Previous.CommitID, "now", sel.CommitID)
	}

	summary := stats.Aggregate(stream, branches, page)
	d := &model.Dashboard{
		RunID:            runID,
		Title:            p.cfg.Title,
		About:            p.cfg.About,
		Server:           server,
		Streams:          streams,
		Selection:        sel,
		Stale:            stale,
		Options:          selection.Options(page.Commits),
		Cards:            report.Cards(summary, p.cfg.Cards),
		CommitsTruncated: summary.Commits.Truncated,
		ReportedCommits:  summary.Commits.ReportedTotal,
		EmbedURL:         sess.EmbedURL(sel.Ref()),
	}

	if d.Datasets, err = p.LoadCharts(ctx); err != nil {
		return nil, p.fail(log, "load charts", err)
	}

	log.Info("run complete",
		"commit", sel.CommitID,
		"commits", summary.Commits.Fetched,
		"datasets", len(d.Datasets),
		"duration", time.Since(start))
	return d, nil
}

// Streams lists the streams visible to token, for pickers.
func (p *Pipeline) Streams(ctx context.Context, server, token string) ([]model.Stream, error) {
	sess, err := p.dial(ctx, p.server(server), token)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	streams, err := catalog.New(sess, p.cfg.Limits).ListStreams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	return streams, nil
}

// LoadCharts runs only the chart stage.
func (p *Pipeline) LoadCharts(ctx context.Context) ([]model.TabularDataset, error) {
	if p.charts == nil {
		return []model.TabularDataset{}, nil
	}
	return p.charts.LoadAll(ctx)
}

func (p *Pipeline) server(s string) string {
	if s == "" {
		return p.cfg.Server
	}
	return s
}

func (p *Pipeline) pickStream(ctx context.Context, acc *catalog.Accessor, streams []model.Stream, req Request) (model.Stream, error) {
	name := req.StreamName
	if name == "" && req.Previous != nil {
		name = req.Previous.StreamName
	}
	if name == "" {
		if len(streams) == 0 {
			return model.Stream{}, fmt.Errorf("no streams available: %w", model.ErrNotFound)
		}
		return streams[0], nil
	}
	return acc.FindStreamIn(ctx, name, streams)
}

func (p *Pipeline) resolve(stream model.Stream, commits []model.Commit, req Request) (model.Selection, bool, error) {
	candidates := []model.Stream{stream}
	switch {
	case req.CommitID != "":
		sel, err := selection.ResolveByID(stream.Name, req.CommitID, candidates, commits)
		return sel, false, err
	case req.CommitLabel != "":
		sel, err := selection.Resolve(stream.Name, req.CommitLabel, candidates, commits, p.cfg.Policy)
		return sel, false, err
	case req.Previous != nil && req.Previous.StreamID == stream.ID && req.Previous.CommitID != "":
		sel, stale := selection.Reconcile(*req.Previous, commits)
		return sel, stale, nil
	}
	sel, err := selection.Resolve(stream.Name, "", candidates, commits, p.cfg.Policy)
	return sel, false, err
}

func (p *Pipeline) fail(log *slog.Logger, stage string, err error) error {
	log.Warn("run failed", "stage", stage, "err", err)
	return fmt.Errorf("%s: %w", stage, err)
}
