package duckdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinytelemetry/carbondash/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func replaceTestRows(t *testing.T, store *Store, name string, rows []model.DatasetRow) {
	t.Helper()
	if err := store.ReplaceDataset(context.Background(), name, rows); err != nil {
		t.Fatalf("ReplaceDataset(%s): %v", name, err)
	}
}

const lcsCSV = `Row Labels,Sum of Global Warming Potential Total (kgCO2eq),Count
A1,10.0,3
A2,5.0,1
`

func TestReadProjection(t *testing.T) {
	store := newTestStore(t)
	path := writeCSV(t, "lcs.csv", lcsCSV)

	rows, err := store.ReadProjection(context.Background(), path, "Row Labels", "Sum of Global Warming Potential Total (kgCO2eq)")
	if err != nil {
		t.Fatalf("ReadProjection: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadProjection returned %d rows, want 2", len(rows))
	}
	if rows[0].Category != "A1" || rows[0].Metric != "10.0" || !rows[0].Valid {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Category != "A2" || rows[1].Line != 3 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestReadProjection_QuotedPathAndColumns(t *testing.T) {
	store := newTestStore(t)
	path := writeCSV(t, "king's tally.csv", "\"Row \"\"Labels\"\"\",GWP\nSteel,1.5\n")

	rows, err := store.ReadProjection(context.Background(), path, `Row "Labels"`, "GWP")
	if err != nil {
		t.Fatalf("ReadProjection: %v", err)
	}
	if len(rows) != 1 || rows[0].Category != "Steel" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReadProjection_EmptyMetric(t *testing.T) {
	store := newTestStore(t)
	path := writeCSV(t, "div.csv", "Row Labels,GWP\nConcrete,\n")

	rows, err := store.ReadProjection(context.Background(), path, "Row Labels", "GWP")
	if err != nil {
		t.Fatalf("ReadProjection: %v", err)
	}
	if len(rows) != 1 || rows[0].Valid {
		t.Errorf("empty metric should be invalid, got %+v", rows)
	}
}

func TestReadProjection_MissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadProjection(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "Row Labels", "GWP")
	if !errors.Is(err, model.ErrDatasetNotFound) {
		t.Fatalf("err = %v, want ErrDatasetNotFound", err)
	}
}

func TestReadProjection_MissingColumn(t *testing.T) {
	store := newTestStore(t)
	path := writeCSV(t, "lcs.csv", lcsCSV)

	_, err := store.ReadProjection(context.Background(), path, "Row Labels", "GWP")
	if !errors.Is(err, model.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
	if !strings.Contains(err.Error(), `"GWP"`) {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestReplaceDataset(t *testing.T) {
	store := newTestStore(t)

	replaceTestRows(t, store, "materials", []model.DatasetRow{{Category: "Steel", Metric: 3}, {Category: "Wood", Metric: 1}})
	replaceTestRows(t, store, "lca-stages", []model.DatasetRow{{Category: "A1", Metric: 10}})
	replaceTestRows(t, store, "materials", []model.DatasetRow{{Category: "Glass", Metric: 2}})

	counts, err := store.DatasetRowCounts()
	if err != nil {
		t.Fatalf("DatasetRowCounts: %v", err)
	}
	if counts["materials"] != 1 || counts["lca-stages"] != 1 {
		t.Errorf("counts = %v, want materials=1 lca-stages=1", counts)
	}

	results, err := store.ExecuteQuery("SELECT category FROM chart_rows WHERE dataset = 'materials'")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(results) != 1 || results[0]["category"] != "Glass" {
		t.Errorf("materials rows = %v, want only Glass", results)
	}
}

func TestChartRows_SourceOrder(t *testing.T) {
	store := newTestStore(t)
	replaceTestRows(t, store, "lca-stages", []model.DatasetRow{
		{Category: "A1", Metric: 10}, {Category: "A2", Metric: 5}, {Category: "B1", Metric: 7.5},
	})

	rows, err := store.ChartRows(context.Background(), "lca-stages")
	if err != nil {
		t.Fatalf("ChartRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	for i, want := range []string{"A1", "A2", "B1"} {
		if rows[i].Ordinal != i || rows[i].Category != want {
			t.Errorf("row %d = %+v, want ordinal %d category %s", i, rows[i], i, want)
		}
	}
	if rows[2].Metric != 7.5 {
		t.Errorf("metric = %v, want 7.5", rows[2].Metric)
	}
}

func TestChartRows_EmptyLoadIsNotMissing(t *testing.T) {
	store := newTestStore(t)
	replaceTestRows(t, store, "materials", nil)

	rows, err := store.ChartRows(context.Background(), "materials")
	if err != nil {
		t.Fatalf("ChartRows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestChartRows_UnknownDataset(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ChartRows(context.Background(), "lca-stages")
	if !errors.Is(err, model.ErrDatasetNotFound) {
		t.Errorf("err = %v, want ErrDatasetNotFound", err)
	}
}

func TestDatasetLoads(t *testing.T) {
	store := newTestStore(t)
	replaceTestRows(t, store, "materials", []model.DatasetRow{{Category: "Steel", Metric: 3}, {Category: "Wood", Metric: 1}})
	replaceTestRows(t, store, "materials", []model.DatasetRow{{Category: "Glass", Metric: 2}})

	loads, err := store.DatasetLoads(context.Background())
	if err != nil {
		t.Fatalf("DatasetLoads: %v", err)
	}
	if len(loads) != 1 || loads[0].Dataset != "materials" || loads[0].RowCount != 1 {
		t.Errorf("loads = %+v, want one materials load of 1 row", loads)
	}
	if loads[0].LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	version, pending, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 2 || pending != 0 {
		t.Errorf("version=%d pending=%d, want 2 and 0", version, pending)
	}
}

func TestExecuteQuery_SelectAllowed(t *testing.T) {
	store := newTestStore(t)
	replaceTestRows(t, store, "lca-stages", []model.DatasetRow{{Category: "A1", Metric: 10}})

	results, err := store.ExecuteQuery("SELECT COUNT(*) as cnt FROM chart_rows")
	if err != nil {
		t.Fatalf("ExecuteQuery SELECT: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("ExecuteQuery returned %d rows, want 1", len(results))
	}
}

func TestExecuteQuery_WithAllowed(t *testing.T) {
	store := newTestStore(t)
	replaceTestRows(t, store, "lca-stages", []model.DatasetRow{{Category: "A1", Metric: 10}})

	results, err := store.ExecuteQuery("WITH c AS (SELECT SUM(metric) AS total FROM chart_rows) SELECT total FROM c")
	if err != nil {
		t.Fatalf("ExecuteQuery WITH: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("ExecuteQuery WITH returned %d rows, want 1", len(results))
	}
}

func TestExecuteQuery_DMLRejected(t *testing.T) {
	store := newTestStore(t)

	rejected := []string{
		"INSERT INTO chart_rows VALUES ('x', 0, 'hack', 1)",
		"UPDATE chart_rows SET metric = 0",
		"DELETE FROM chart_rows",
		"DROP TABLE chart_rows",
		"CREATE TABLE evil (id int)",
		"ALTER TABLE chart_rows ADD COLUMN evil varchar",
		"TRUNCATE chart_rows",
	}

	for _, sql := range rejected {
		if _, err := store.ExecuteQuery(sql); err == nil {
			t.Errorf("ExecuteQuery(%q) should have been rejected", sql)
		}
	}
}

func TestExecuteQuery_DuckDBKeywordsRejected(t *testing.T) {
	store := newTestStore(t)

	rejected := []struct {
		sql     string
		keyword string
	}{
		{"SELECT COPY(chart_rows, '/tmp/dump.csv') FROM chart_rows", "COPY"},
		{"SELECT ATTACH FROM chart_rows", "ATTACH"},
		{"SELECT LOAD FROM chart_rows", "LOAD"},
		{"SELECT INSTALL FROM chart_rows", "INSTALL"},
		{"SELECT PRAGMA FROM chart_rows", "PRAGMA"},
		{"SELECT SET FROM chart_rows", "SET"},
		{"SELECT 1 /* hidden */ FROM chart_rows WHERE 1 = 1 -- \n AND DROP", "DROP"},
	}

	for _, tt := range rejected {
		_, err := store.ExecuteQuery(tt.sql)
		if err == nil {
			t.Errorf("ExecuteQuery should reject %s keyword", tt.keyword)
			continue
		}
		if !strings.Contains(err.Error(), tt.keyword) {
			t.Errorf("ExecuteQuery error %q should mention keyword %s", err.Error(), tt.keyword)
		}
	}

	semicolonCases := []string{
		"SELECT * FROM chart_rows; DROP TABLE chart_rows",
		"SELECT * FROM chart_rows; COPY chart_rows TO '/tmp/dump.csv'",
	}
	for _, sql := range semicolonCases {
		_, err := store.ExecuteQuery(sql)
		if err == nil || !strings.Contains(err.Error(), "semicolons") {
			t.Errorf("ExecuteQuery should reject query with semicolons: %s (err=%v)", sql, err)
		}
	}
}

func TestExecuteQuery_FileAccessRejected(t *testing.T) {
	store := newTestStore(t)

	for _, sql := range []string{
		"SELECT * FROM read_csv('/etc/passwd')",
		"SELECT * FROM read_text ('/etc/hostname')",
		"SELECT * FROM '/tmp/data.csv'",
		`SELECT * FROM "data.parquet"`,
		"SELECT * FROM glob('/*')",
	} {
		if _, err := store.ExecuteQuery(sql); err == nil {
			t.Errorf("ExecuteQuery(%q) should have been rejected", sql)
		}
	}
}

func TestTableRowCounts(t *testing.T) {
	store := newTestStore(t)

	counts, err := store.TableRowCounts()
	if err != nil {
		t.Fatalf("TableRowCounts: %v", err)
	}
	for _, table := range []string{"chart_rows", "dataset_loads"} {
		if _, ok := counts[table]; !ok {
			t.Errorf("TableRowCounts missing table %q", table)
		}
	}
}

func TestSchemaDescriptionMentionsTables(t *testing.T) {
	desc := newTestStore(t).GetSchemaDescription()
	for _, want := range []string{"chart_rows", "metric", "dataset_loads"} {
		if !strings.Contains(desc, want) {
			t.Errorf("schema description missing %q", want)
		}
	}
}
