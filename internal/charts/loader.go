package charts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tinytelemetry/carbondash/internal/duckdb"
	"github.com/tinytelemetry/carbondash/internal/model"
)

// Source reads the two projected columns of a CSV file.
type Source interface {
	ReadProjection(ctx context.Context, path, categoryCol, metricCol string) ([]duckdb.CSVRow, error)
}

// Loader projects CSV datasets onto (category, metric) rows. When a writer
// is set, each loaded dataset replaces its previous rows in the store.
type Loader struct {
	source  Source
	writer  model.DatasetWriter
	dataDir string
	specs   []DatasetSpec
	logger  *slog.Logger
}

// NewLoader creates a loader over dataDir. A nil specs slice uses
// DefaultSpecs; writer may be nil.
func NewLoader(source Source, writer model.DatasetWriter, dataDir string, specs []DatasetSpec, logger *slog.Logger) *Loader {
	if specs == nil {
		specs = DefaultSpecs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, writer: writer, dataDir: dataDir, specs: specs, logger: logger}
}

// Specs returns the configured datasets in display order.
func (l *Loader) Specs() []DatasetSpec {
	return append([]DatasetSpec(nil), l.specs...)
}

// Spec looks up a dataset by name.
func (l *Loader) Spec(name string) (DatasetSpec, bool) {
	for _, s := range l.specs {
		if s.Name == name {
			return s, true
		}
	}
	return DatasetSpec{}, false
}

// Load reads one dataset by name.
func (l *Loader) Load(ctx context.Context, name string) (model.TabularDataset, error) {
	spec, ok := l.Spec(name)
	if !ok {
		return model.TabularDataset{}, fmt.Errorf("dataset %q is not configured: %w", name, model.ErrDatasetNotFound)
	}
	return l.LoadSpec(ctx, spec)
}

// LoadAll reads every configured dataset in order and stops at the first
// failure.
func (l *Loader) LoadAll(ctx context.Context) ([]model.TabularDataset, error) {
	out := make([]model.TabularDataset, 0, len(l.specs))
	for _, spec := range l.specs {
		ds, err := l.LoadSpec(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// LoadSpec projects one dataset. Metric values are parsed but otherwise
// passed through unchanged.
func (l *Loader) LoadSpec(ctx context.Context, spec DatasetSpec) (model.TabularDataset, error) {
	start := time.Now()
	path := spec.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dataDir, path)
	}

	raw, err := l.source.ReadProjection(ctx, path, spec.CategoryColumn, spec.MetricColumn)
	if err != nil {
		return model.TabularDataset{}, fmt.Errorf("dataset %s: %w", spec.Name, err)
	}

	rows := make([]model.DatasetRow, 0, len(raw))
	for _, r := range raw {
		if !r.Valid {
			return model.TabularDataset{}, fmt.Errorf("dataset %s: %s line %d: empty %q for %q: %w",
				spec.Name, spec.File, r.Line, spec.MetricColumn, r.Category, model.ErrSchemaMismatch)
		}
		v, err := strconv.ParseFloat(r.Metric, 64)
		if err != nil {
			return model.TabularDataset{}, fmt.Errorf("dataset %s: %s line %d: %q is not a number: %w",
				spec.Name, spec.File, r.Line, r.Metric, model.ErrSchemaMismatch)
		}
		rows = append(rows, model.DatasetRow{Category: r.Category, Metric: v})
	}

	if l.writer != nil {
		if err := l.writer.ReplaceDataset(ctx, spec.Name, rows); err != nil {
			return model.TabularDataset{}, fmt.Errorf("dataset %s: storing rows: %w", spec.Name, err)
		}
	}

	l.logger.Debug("dataset loaded", "dataset", spec.Name, "rows", len(rows), "duration", time.Since(start))
	return model.TabularDataset{
		Name:          spec.Name,
		Title:         spec.Title,
		Chart:         spec.Chart,
		CategoryLabel: spec.CategoryLabel,
		MetricLabel:   spec.MetricLabel,
		Rows:          rows,
	}, nil
}
