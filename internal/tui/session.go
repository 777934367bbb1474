// Package tui is the interactive terminal dashboard: a stream picker, a
// commit picker and the dashboard itself.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/pipeline"
)

// Runner executes dashboard runs and lists streams.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Dashboard, error)
	Streams(ctx context.Context, server, token string) ([]model.Stream, error)
}

// Options seed the first run.
type Options struct {
	Server      string
	Token       string
	StreamName  string
	CommitLabel string
}

// session is the state shared by the pages. Every run is built from it
// explicitly; nothing else carries selection state.
type session struct {
	ctx    context.Context
	runner Runner
	server string
	token  string

	streamName  string
	commitLabel string
	commitID    string

	streams []model.Stream
	last    *model.Dashboard
	runSeq  int
}

type streamsMsg struct {
	streams []model.Stream
	err     error
}

type dashboardMsg struct {
	seq int
	d   *model.Dashboard
	err error
}

func newSession(ctx context.Context, runner Runner, opts Options) *session {
	return &session{
		ctx:         ctx,
		runner:      runner,
		server:      opts.Server,
		token:       opts.Token,
		streamName:  opts.StreamName,
		commitLabel: opts.CommitLabel,
	}
}

// request builds the next pipeline request. The last selection is passed
// along so an unchanged pick survives a re-run.
func (s *session) request() pipeline.Request {
	req := pipeline.Request{
		Server:      s.server,
		Token:       s.token,
		StreamName:  s.streamName,
		CommitLabel: s.commitLabel,
		CommitID:    s.commitID,
	}
	if s.last != nil && s.last.Selection.StreamName == s.streamName {
		prev := s.last.Selection
		req.Previous = &prev
	}
	return req
}

func (s *session) pickStream(name string) {
	if name != s.streamName {
		s.last = nil
	}
	s.streamName = name
	s.commitLabel, s.commitID = "", ""
}

func (s *session) pickCommit(id string) {
	s.commitLabel, s.commitID = "", id
}

// finish records a completed run. Explicit picks are consumed; later runs
// keep the selection through Previous.
func (s *session) finish(d *model.Dashboard) {
	s.last = d
	s.streamName = d.Selection.StreamName
	s.commitLabel, s.commitID = "", ""
	if len(d.Streams) > 0 {
		s.streams = d.Streams
	}
}

func (s *session) fetchStreams() tea.Cmd {
	ctx, runner, server, token := s.ctx, s.runner, s.server, s.token
	return func() tea.Msg {
		streams, err := runner.Streams(ctx, server, token)
		return streamsMsg{streams: streams, err: err}
	}
}

func (s *session) runDashboard() (tea.Cmd, int) {
	s.runSeq++
	seq := s.runSeq
	ctx, runner, req := s.ctx, s.runner, s.request()
	return func() tea.Msg {
		d, err := runner.Run(ctx, req)
		return dashboardMsg{seq: seq, d: d, err: err}
	}, seq
}
