package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/tinytelemetry/carbondash/internal/model"
)

// CSVRow is one projected CSV record before the metric is parsed.
// Valid is false when the metric cell was empty.
type CSVRow struct {
	Line     int
	Category string
	Metric   string
	Valid    bool
}

// ReadProjection reads the named category and metric columns of a CSV file
// with a header row. All cells are read as text; the caller interprets them.
func (s *Store) ReadProjection(ctx context.Context, path, categoryCol, metricCol string) ([]CSVRow, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%s: %w", path, model.ErrDatasetNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %v", path, model.ErrDatasetNotFound, err)
	case info.IsDir():
		return nil, fmt.Errorf("%s is a directory: %w", path, model.ErrDatasetNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()

	source := fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteLiteral(path))

	header, err := s.csvHeader(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	var missing []string
	for _, col := range []string{categoryCol, metricCol} {
		if _, ok := header[col]; !ok {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing column %s: %w", path, strings.Join(missing, ", "), model.ErrSchemaMismatch)
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s", quoteIdent(categoryCol), quoteIdent(metricCol), source)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer rows.Close()

	var out []CSVRow
	line := 1 // header
	for rows.Next() {
		line++
		var cat, metric sql.NullString
		if err := rows.Scan(&cat, &metric); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, CSVRow{
			Line:     line,
			Category: cat.String,
			Metric:   strings.TrimSpace(metric.String),
			Valid:    metric.Valid && strings.TrimSpace(metric.String) != "",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

func (s *Store) csvHeader(ctx context.Context, source string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+source+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	header := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		header[c] = struct{}{}
	}
	return header, nil
}

// ReplaceDataset swaps the stored rows of one dataset in a single
// transaction. Other datasets are untouched.
func (s *Store) ReplaceDataset(ctx context.Context, name string, rows []model.DatasetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chart_rows WHERE dataset = ?", name); err != nil {
		return fmt.Errorf("clearing %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chart_rows (dataset, ordinal, category, metric) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, name, i, r.Category, r.Metric); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM dataset_loads WHERE dataset = ?", name); err != nil {
		return fmt.Errorf("recording load of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO dataset_loads (dataset, row_count) VALUES (?, ?)", name, len(rows)); err != nil {
		return fmt.Errorf("recording load of %s: %w", name, err)
	}
	return tx.Commit()
}

// DatasetRowCounts returns the number of stored rows per dataset.
func (s *Store) DatasetRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT dataset, COUNT(*) FROM chart_rows GROUP BY dataset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// ChartRow is one stored row of a chart dataset, in source file order.
type ChartRow struct {
	Ordinal  int     `json:"ordinal"`
	Category string  `json:"category"`
	Metric   float64 `json:"metric"`
}

// DatasetLoad records the last load of one dataset.
type DatasetLoad struct {
	Dataset  string    `json:"dataset"`
	RowCount int       `json:"row_count"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ChartRows returns the stored rows of dataset ordered as in its source
// file. A dataset that was never loaded is model.ErrDatasetNotFound.
func (s *Store) ChartRows(ctx context.Context, dataset string) ([]ChartRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()

	var loaded int
	err := s.db.QueryRowContext(ctx, "SELECT row_count FROM dataset_loads WHERE dataset = ?", dataset).Scan(&loaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s not loaded: %w", dataset, model.ErrDatasetNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT ordinal, category, metric FROM chart_rows WHERE dataset = ? ORDER BY ordinal", dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ChartRow, 0, loaded)
	for rows.Next() {
		var r ChartRow
		var category sql.NullString
		if err := rows.Scan(&r.Ordinal, &category, &r.Metric); err != nil {
			return nil, err
		}
		r.Category = category.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// DatasetLoads lists the recorded loads, newest first.
func (s *Store) DatasetLoads(ctx context.Context) ([]DatasetLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT dataset, row_count, loaded_at FROM dataset_loads ORDER BY loaded_at DESC, dataset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DatasetLoad
	for rows.Next() {
		var l DatasetLoad
		if err := rows.Scan(&l.Dataset, &l.RowCount, &l.LoadedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
