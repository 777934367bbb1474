package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/pipeline"
)

type fakeRunner struct {
	reqs []pipeline.Request
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (*model.Dashboard, error) {
	f.reqs = append(f.reqs, req)
	return testDashboard(), nil
}

func (f *fakeRunner) Streams(context.Context, string, string) ([]model.Stream, error) {
	return testStreams, nil
}

var testStreams = []model.Stream{
	{ID: "s1", Name: "25 King", BranchCount: 3},
	{ID: "s2", Name: "Annex"},
}

func testDashboard() *model.Dashboard {
	return &model.Dashboard{
		Title:     model.DefaultTitle,
		Streams:   testStreams,
		Selection: model.Selection{StreamID: "s1", StreamName: "25 King", CommitID: "c2", CommitLabel: "facade"},
		Options: []model.CommitOption{
			{Label: "facade", CommitID: "c2"},
			{Label: "facade", CommitID: "c1"},
		},
		Cards: []model.SummaryCard{
			{Label: "Number of branches", Value: 3, Names: []string{"main"}},
			{Label: "Number of commits", Value: 2, Names: []string{}},
			{Label: "Number of connectors", Value: 1, Names: []string{"Revit"}},
			{Label: "Number of contributors", Value: 2, Names: []string{"Ana", "Bo"}},
		},
		EmbedURL: "https://speckle.xyz/embed?stream=s1&commit=c2",
		Datasets: []model.TabularDataset{
			{Name: "lca-stages", Title: "kgCO2eq by LCA Stage", Chart: model.ChartBar, CategoryLabel: "lca_stage", MetricLabel: "kgCO2eq",
				Rows: []model.DatasetRow{{Category: "A1", Metric: 10}, {Category: "A2", Metric: 5}}},
			{Name: "materials", Title: "kgCO2eq by Material", Chart: model.ChartDonut, CategoryLabel: "material", MetricLabel: "kgCO2eq",
				Rows: []model.DatasetRow{{Category: "Concrete", Metric: 75}, {Category: "Steel", Metric: 25}}},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, app *App, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := app.Update(msg)
	return cmd
}

func dashboardOf(app *App) *dashboardPage {
	return app.pages[PageDashboard].(*dashboardPage)
}

// completeRun delivers the result of the dashboard's in-flight run.
func completeRun(t *testing.T, app *App, d *model.Dashboard, err error) {
	t.Helper()
	p := dashboardOf(app)
	require.True(t, p.loading)
	update(t, app, dashboardMsg{seq: p.waitSeq, d: d, err: err})
}

func TestNew_StartPage(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{})
	assert.Equal(t, PageStreams, app.ActivePage())

	app = New(context.Background(), &fakeRunner{}, Options{StreamName: "25 King"})
	assert.Equal(t, PageDashboard, app.ActivePage())
}

func TestPickStreamThenCommit(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{Token: "tok"})
	app.Init()
	update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	update(t, app, streamsMsg{streams: testStreams})

	update(t, app, keyMsg("enter"))
	require.Equal(t, PageDashboard, app.ActivePage())
	s := dashboardOf(app).s
	assert.Equal(t, "25 King", s.streamName)
	assert.Nil(t, s.request().Previous)

	completeRun(t, app, testDashboard(), nil)
	view := app.View()
	assert.Contains(t, view, "Number of contributors")
	assert.Contains(t, view, "embed?stream=s1")

	update(t, app, keyMsg("c"))
	require.Equal(t, PageCommits, app.ActivePage())
	update(t, app, tea.KeyMsg{Type: tea.KeyDown})
	update(t, app, keyMsg("enter"))
	require.Equal(t, PageDashboard, app.ActivePage())

	req := s.request()
	assert.Equal(t, "c1", req.CommitID, "duplicate labels are picked by ID")
	assert.Equal(t, "tok", req.Token)
}

func TestRerunKeepsSelection(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{StreamName: "25 King"})
	app.Init()
	completeRun(t, app, testDashboard(), nil)

	update(t, app, keyMsg("r"))
	req := dashboardOf(app).s.request()
	require.NotNil(t, req.Previous)
	assert.Equal(t, "c2", req.Previous.CommitID)
	assert.Empty(t, req.CommitID)
}

func TestStaleRunResultIgnored(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{StreamName: "25 King"})
	app.Init()
	p := dashboardOf(app)
	old := p.waitSeq
	update(t, app, keyMsg("r"))

	update(t, app, dashboardMsg{seq: old, d: testDashboard()})
	assert.True(t, p.loading)
	assert.Nil(t, p.s.last)
}

func TestRunErrorIsShown(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{StreamName: "25 King"})
	app.Init()
	completeRun(t, app, nil, errors.New("connect: authentication failed"))

	assert.Contains(t, app.View(), "authentication failed")
	update(t, app, keyMsg("c"))
	assert.Equal(t, PageDashboard, app.ActivePage(), "no commits to pick after a failed run")
}

func TestEscReturnsToStreams(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{StreamName: "25 King"})
	app.Init()
	completeRun(t, app, testDashboard(), nil)

	update(t, app, keyMsg("esc"))
	assert.Equal(t, PageStreams, app.ActivePage())
	assert.NotEmpty(t, app.pages[PageStreams].(*streamsPage).list.Items(), "streams come from the last run")
}

func TestQuit(t *testing.T) {
	app := New(context.Background(), &fakeRunner{}, Options{})
	cmd := update(t, app, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderDataset(t *testing.T) {
	d := testDashboard()

	bars := renderDataset(d.Datasets[0], 100)
	assert.Contains(t, bars, "kgCO2eq by LCA Stage")
	assert.Contains(t, bars, "A1")

	shares := renderDataset(d.Datasets[1], 100)
	assert.Contains(t, shares, "75.0%")
	assert.Contains(t, shares, "total 100")

	table := renderDataset(model.TabularDataset{
		Title: "Sum of GWP per Revit Category", Chart: model.ChartTable,
		CategoryLabel: "revit_category", MetricLabel: "kgCO2eq",
		Rows: []model.DatasetRow{{Category: "Walls", Metric: 12345.5}},
	}, 80)
	assert.Contains(t, table, "revit_category")
	assert.Contains(t, table, "12,345.5")

	empty := renderDataset(model.TabularDataset{Title: "Empty", Chart: model.ChartBar}, 80)
	assert.Contains(t, empty, "No data available")
}

func TestRenderLogBars(t *testing.T) {
	out := renderDataset(model.TabularDataset{
		Title: "Energy", Chart: model.ChartBarLog, MetricLabel: "mj", CategoryLabel: "cat",
		Rows: []model.DatasetRow{{Category: "Walls", Metric: 12000}, {Category: "Floors", Metric: 0.5}},
	}, 100)
	assert.Contains(t, out, "log scale")
	assert.Contains(t, out, "12,000")
}

func TestBarValue(t *testing.T) {
	assert.Equal(t, 0.0, barValue(-3, false))
	assert.InDelta(t, 2.0, barValue(99, true), 1e-9)
	assert.Equal(t, 5.0, barValue(5, false))
}

func TestRenderDashboardWarnings(t *testing.T) {
	d := testDashboard()
	d.Stale = true
	d.CommitsTruncated = true
	d.ReportedCommits = 250
	out := renderDashboard(d, 120)
	assert.Contains(t, out, "previously selected commit is gone")
	assert.Contains(t, out, "250")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.True(t, strings.HasSuffix(truncate("Структура", 4), "…"))
}
