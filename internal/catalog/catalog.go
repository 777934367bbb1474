// Package catalog resolves streams, branches and commits through a Remote.
package catalog

import (
	"context"
	"fmt"

	"github.com/tinytelemetry/carbondash/internal/model"
)

// Limits bounds the size of every listing. Zero values fall back to the
// model defaults.
type Limits struct {
	Streams  int
	Branches int
	Commits  int
}

func (l Limits) withDefaults() Limits {
	if l.Streams <= 0 {
		l.Streams = model.DefaultStreamLimit
	}
	if l.Branches <= 0 {
		l.Branches = model.DefaultBranchLimit
	}
	if l.Commits <= 0 {
		l.Commits = model.DefaultCommitLimit
	}
	return l
}

// Accessor is the read-only catalog view over one session.
type Accessor struct {
	remote model.Remote
	limits Limits
}

// New creates an Accessor over remote.
func New(remote model.Remote, limits Limits) *Accessor {
	return &Accessor{remote: remote, limits: limits.withDefaults()}
}

// Limits returns the effective listing bounds.
func (a *Accessor) Limits() Limits {
	return a.limits
}

// ListStreams returns the streams visible to the session in listing order.
func (a *Accessor) ListStreams(ctx context.Context) ([]model.Stream, error) {
	return a.remote.ListStreams(ctx, a.limits.Streams)
}

// FindStreamByName returns the first stream whose name equals name exactly.
// Stream names are not unique on the server; the first match in listing
// order wins.
func (a *Accessor) FindStreamByName(ctx context.Context, name string) (model.Stream, error) {
	return a.FindStreamIn(ctx, name, nil)
}

// FindStreamIn is FindStreamByName over an already fetched listing. A nil
// listing is fetched first. Server search is consulted only when the name
// is not on the listing page.
func (a *Accessor) FindStreamIn(ctx context.Context, name string, listed []model.Stream) (model.Stream, error) {
	if listed == nil {
		var err error
		if listed, err = a.ListStreams(ctx); err != nil {
			return model.Stream{}, err
		}
	}
	if s, ok := FirstExactMatch(listed, name); ok {
		return s, nil
	}

	found, err := a.remote.SearchStreams(ctx, name, a.limits.Streams)
	if err != nil {
		return model.Stream{}, err
	}
	if s, ok := FirstExactMatch(found, name); ok {
		return s, nil
	}
	return model.Stream{}, fmt.Errorf("stream %q: %w", name, model.ErrNotFound)
}

// ListBranches returns the first page of branches of a stream.
func (a *Accessor) ListBranches(ctx context.Context, streamID string) ([]model.Branch, error) {
	return a.remote.ListBranches(ctx, streamID, a.limits.Branches)
}

// ListCommits returns up to limit commits, newest first. A non-positive
// limit uses the configured commit limit. History beyond the limit is not
// paged.
func (a *Accessor) ListCommits(ctx context.Context, streamID string, limit int) (model.CommitPage, error) {
	if limit <= 0 {
		limit = a.limits.Commits
	}
	return a.remote.ListCommits(ctx, streamID, limit)
}

// FirstExactMatch returns the first stream named exactly name.
func FirstExactMatch(streams []model.Stream, name string) (model.Stream, bool) {
	for _, s := range streams {
		if s.Name == name {
			return s, true
		}
	}
	return model.Stream{}, false
}
