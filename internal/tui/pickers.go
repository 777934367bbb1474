package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/carbondash/internal/model"
)

// pickItem is one row of a picker list.
type pickItem struct {
	id    string
	title string
	desc  string
}

func (i pickItem) Title() string       { return i.title }
func (i pickItem) Description() string { return i.desc }
func (i pickItem) FilterValue() string { return i.title }

func newPickerList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowHelp(false)
	return l
}

func selectedItem(l list.Model) (pickItem, bool) {
	it, ok := l.SelectedItem().(pickItem)
	return it, ok
}

func resizeList(l *list.Model, width, height int) {
	l.SetSize(width, max(1, height-2))
}

// streamsPage lists the streams visible to the account.
type streamsPage struct {
	s       *session
	list    list.Model
	keys    KeyMap
	loading bool
	err     error
}

func newStreamsPage(s *session) *streamsPage {
	return &streamsPage{s: s, list: newPickerList("Streams"), keys: DefaultKeyMap()}
}

func (p *streamsPage) ID() string { return PageStreams }

func (p *streamsPage) Init() tea.Cmd {
	if len(p.s.streams) > 0 {
		p.setStreams(p.s.streams)
		return nil
	}
	p.loading, p.err = true, nil
	return tea.Batch(p.s.fetchStreams(), spinnerTick())
}

func (p *streamsPage) setStreams(streams []model.Stream) {
	items := make([]list.Item, 0, len(streams))
	for _, st := range streams {
		desc := st.Description
		if desc == "" {
			desc = fmt.Sprintf("%s · %d branches · %d collaborators", st.ID, st.BranchCount, len(st.Collaborators))
		}
		items = append(items, pickItem{id: st.ID, title: st.Name, desc: desc})
	}
	p.list.SetItems(items)
	for i, st := range streams {
		if st.Name == p.s.streamName {
			p.list.Select(i)
			break
		}
	}
}

func (p *streamsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resizeList(&p.list, msg.Width, msg.Height)
		return nil, nil
	case SpinnerTickMsg:
		if p.loading {
			return spinnerTick(), nil
		}
		return nil, nil
	case streamsMsg:
		p.loading, p.err = false, msg.err
		if msg.err == nil {
			p.s.streams = msg.streams
			p.setStreams(msg.streams)
		}
		return nil, nil
	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Rerun):
			p.s.streams = nil
			return p.Init(), nil
		case key.Matches(msg, p.keys.Back):
			if p.s.last != nil {
				return nil, navTo(PageDashboard)
			}
			return nil, nil
		case key.Matches(msg, p.keys.Enter):
			if it, ok := selectedItem(p.list); ok {
				p.s.pickStream(it.title)
				return nil, navTo(PageDashboard)
			}
			return nil, nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd, nil
}

func (p *streamsPage) View(width, height int) string {
	if p.loading {
		return renderLoadingPlaceholder(width, height, "Loading streams...")
	}
	help := helpLine(p.keys.Enter, p.keys.Rerun, p.keys.Back, p.keys.Quit)
	if p.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render("Could not list streams: "+p.err.Error()), "", help)
	}
	if len(p.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, helpStyle.Render("No streams available."), "", help)
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.list.View(), help)
}

// commitsPage lists the fetched commits of the current stream. Duplicate
// messages appear as separate entries and are picked by ID.
type commitsPage struct {
	s    *session
	list list.Model
	keys KeyMap
}

func newCommitsPage(s *session) *commitsPage {
	return &commitsPage{s: s, list: newPickerList("Commits"), keys: DefaultKeyMap()}
}

func (p *commitsPage) ID() string { return PageCommits }

func (p *commitsPage) Init() tea.Cmd {
	if p.s.last == nil {
		p.list.SetItems(nil)
		return nil
	}
	opts := p.s.last.Options
	items := make([]list.Item, 0, len(opts))
	selected := 0
	for i, o := range opts {
		items = append(items, pickItem{id: o.CommitID, title: o.Label, desc: o.CommitID})
		if o.CommitID == p.s.last.Selection.CommitID {
			selected = i
		}
	}
	p.list.Title = "Commits of " + p.s.last.Selection.StreamName
	p.list.SetItems(items)
	p.list.Select(selected)
	return nil
}

func (p *commitsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resizeList(&p.list, msg.Width, msg.Height)
		return nil, nil
	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Back):
			return nil, navTo(PageDashboard)
		case key.Matches(msg, p.keys.Enter):
			if it, ok := selectedItem(p.list); ok {
				p.s.pickCommit(it.id)
				return nil, navTo(PageDashboard)
			}
			return nil, nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd, nil
}

func (p *commitsPage) View(width, height int) string {
	help := helpLine(p.keys.Enter, p.keys.Back, p.keys.Quit)
	if len(p.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, helpStyle.Render("This stream has no commits."), "", help)
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.list.View(), help)
}
