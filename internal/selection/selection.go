// Package selection turns the user's stream and commit picks into a
// Selection that is guaranteed to reference a fetched commit.
package selection

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/carbondash/internal/catalog"
	"github.com/tinytelemetry/carbondash/internal/model"
)

// Policy decides what happens when several commits share a label.
type Policy int

const (
	// FirstWins picks the first matching commit in fetch order, which is
	// the newest one.
	FirstWins Policy = iota
	// Strict refuses duplicate labels with model.ErrAmbiguousSelection.
	Strict
)

// ParsePolicy maps a config value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-wins":
		return FirstWins, nil
	case "strict":
		return Strict, nil
	}
	return FirstWins, fmt.Errorf("unknown duplicate policy %q (first-wins|strict)", s)
}

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "first-wins"
}

// Option is one entry of the commit picker.
type Option = model.CommitOption

// Options lists one (label, id) pair per commit in fetch order. Duplicate
// labels are kept; resolution decides between them.
func Options(commits []model.Commit) []Option {
	opts := make([]Option, 0, len(commits))
	for _, c := range commits {
		opts = append(opts, Option{Label: c.Message, CommitID: c.ID})
	}
	return opts
}

// Resolve picks a stream by name and a commit by label. Empty picks select
// the first listed stream and the newest commit. A stream without commits
// resolves to a Selection with an empty CommitID.
func Resolve(streamName, commitLabel string, streams []model.Stream, commits []model.Commit, policy Policy) (model.Selection, error) {
	sel, err := pickStream(streamName, streams)
	if err != nil {
		return model.Selection{}, err
	}

	opts := Options(commits)
	if len(opts) == 0 {
		if commitLabel != "" {
			return model.Selection{}, fmt.Errorf("commit %q in stream %q: %w", commitLabel, sel.StreamName, model.ErrNotFound)
		}
		return sel, nil
	}
	if commitLabel == "" {
		sel.CommitID, sel.CommitLabel = opts[0].CommitID, opts[0].Label
		return sel, nil
	}

	var matches []Option
	for _, o := range opts {
		if o.Label == commitLabel {
			matches = append(matches, o)
		}
	}
	switch {
	case len(matches) == 0:
		return model.Selection{}, fmt.Errorf("commit %q in stream %q: %w", commitLabel, sel.StreamName, model.ErrNotFound)
	case len(matches) > 1 && policy == Strict:
		return model.Selection{}, fmt.Errorf("commit label %q matches %d commits: %w", commitLabel, len(matches), model.ErrAmbiguousSelection)
	}
	sel.CommitID, sel.CommitLabel = matches[0].CommitID, matches[0].Label
	return sel, nil
}

// ResolveByID picks a commit by its ID, which is never ambiguous.
func ResolveByID(streamName, commitID string, streams []model.Stream, commits []model.Commit) (model.Selection, error) {
	sel, err := pickStream(streamName, streams)
	if err != nil {
		return model.Selection{}, err
	}
	for _, c := range commits {
		if c.ID == commitID {
			sel.CommitID, sel.CommitLabel = c.ID, c.Message
			return sel, nil
		}
	}
	return model.Selection{}, fmt.Errorf("commit %s in stream %q: %w", commitID, sel.StreamName, model.ErrNotFound)
}

// Reconcile keeps prev while its commit is still in commits. Otherwise the
// selection is stale and is re-resolved to the newest commit of prev's
// stream; the second return value reports staleness.
func Reconcile(prev model.Selection, commits []model.Commit) (model.Selection, bool) {
	for _, c := range commits {
		if c.ID == prev.CommitID && c.StreamID == prev.StreamID {
			prev.CommitLabel = c.Message
			return prev, false
		}
	}
	next := model.Selection{StreamID: prev.StreamID, StreamName: prev.StreamName}
	if len(commits) > 0 {
		next.CommitID, next.CommitLabel = commits[0].ID, commits[0].Message
	}
	return next, true
}

// IsStale reports whether sel no longer references one of commits.
func IsStale(sel model.Selection, commits []model.Commit) bool {
	_, stale := Reconcile(sel, commits)
	return stale
}

func pickStream(name string, streams []model.Stream) (model.Selection, error) {
	if len(streams) == 0 {
		return model.Selection{}, fmt.Errorf("no streams available: %w", model.ErrNotFound)
	}
	s := streams[0]
	if name != "" {
		var ok bool
		if s, ok = catalog.FirstExactMatch(streams, name); !ok {
			return model.Selection{}, fmt.Errorf("stream %q: %w", name, model.ErrNotFound)
		}
	}
	return model.Selection{StreamID: s.ID, StreamName: s.Name}, nil
}
