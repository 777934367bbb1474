package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/carbondash/internal/model"
)

// dashboardPage runs the pipeline and shows its result.
type dashboardPage struct {
	s       *session
	keys    KeyMap
	vp      viewport.Model
	loading bool
	waitSeq int
	err     error
	width   int
	height  int
}

func newDashboardPage(s *session) *dashboardPage {
	return &dashboardPage{s: s, keys: DefaultKeyMap(), vp: viewport.New(0, 0)}
}

func (p *dashboardPage) ID() string { return PageDashboard }

func (p *dashboardPage) Init() tea.Cmd {
	cmd, seq := p.s.runDashboard()
	p.loading, p.waitSeq, p.err = true, seq, nil
	return tea.Batch(cmd, spinnerTick())
}

func (p *dashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.vp.Width, p.vp.Height = msg.Width, max(1, msg.Height-1)
		p.refreshContent()
		return nil, nil
	case SpinnerTickMsg:
		if p.loading {
			return spinnerTick(), nil
		}
		return nil, nil
	case dashboardMsg:
		if msg.seq != p.waitSeq {
			return nil, nil
		}
		p.loading, p.err = false, msg.err
		if msg.err == nil {
			p.s.finish(msg.d)
			p.vp.GotoTop()
		}
		p.refreshContent()
		return nil, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Rerun):
			return p.Init(), nil
		case key.Matches(msg, p.keys.Back), key.Matches(msg, p.keys.Streams):
			return nil, navTo(PageStreams)
		case key.Matches(msg, p.keys.Commits), key.Matches(msg, p.keys.Enter):
			if !p.loading && p.s.last != nil {
				return nil, navTo(PageCommits)
			}
			return nil, nil
		}
	}

	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd, nil
}

func (p *dashboardPage) refreshContent() {
	if p.s.last == nil || p.err != nil {
		return
	}
	p.vp.SetContent(renderDashboard(p.s.last, max(40, p.width)))
}

func (p *dashboardPage) View(width, height int) string {
	if p.loading {
		return renderLoadingPlaceholder(width, height, "Running dashboard...")
	}
	help := helpLine(p.keys.Commits, p.keys.Streams, p.keys.Rerun, p.keys.Back, p.keys.Quit)
	if p.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render("Run failed"),
			p.err.Error(),
			"",
			help)
	}
	if p.s.last == nil {
		return help
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.vp.View(), help)
}

// renderDashboard lays out one run result for the given width.
func renderDashboard(d *model.Dashboard, width int) string {
	var parts []string
	parts = append(parts, titleStyle.Render(d.Title))
	if d.About != "" {
		parts = append(parts, helpStyle.Render(d.About))
	}

	sel := d.Selection
	commit := helpStyle.Render("no commits")
	if sel.CommitID != "" {
		commit = fmt.Sprintf("%s %s", sel.CommitLabel, helpStyle.Render("("+sel.CommitID+")"))
	}
	parts = append(parts, fmt.Sprintf("Stream %s · Commit %s", lipgloss.NewStyle().Bold(true).Render(sel.StreamName), commit))
	if d.Stale {
		parts = append(parts, warnStyle.Render("The previously selected commit is gone; showing the newest one."))
	}
	if d.CommitsTruncated {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("Showing the newest commits only; the stream has %d.", d.ReportedCommits)))
	}
	parts = append(parts, "", renderCards(d.Cards, width), "")

	if d.EmbedURL != "" {
		parts = append(parts, "Viewer  "+linkStyle.Render(d.EmbedURL), "")
	}

	for _, ds := range d.Datasets {
		parts = append(parts, renderDataset(ds, width-2))
	}
	return strings.Join(parts, "\n")
}
