// Package speckle is a minimal GraphQL client for a Speckle server. It only
// covers the read operations the dashboard pipeline consumes.
package speckle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tinytelemetry/carbondash/internal/model"
)

// Config holds the per-run connection parameters.
type Config struct {
	Server     string
	Token      string
	Timeout    time.Duration // per HTTP request; defaults to model.DefaultRequestTimeout
	MaxRetries int           // transport retries; 0 = fail on first error
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is an authenticated session against one server.
// A Client is not shared between pipeline runs.
type Client struct {
	base       *url.URL
	endpoint   string
	token      string
	http       *http.Client
	maxRetries int
	logger     *slog.Logger
	user       userNode
}

// Dial authenticates against the server and returns a session handle.
// An invalid token and an unreachable server both fail with
// model.ErrAuthentication.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	base, err := NormalizeServer(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: access token is empty", model.ErrAuthentication)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = model.DefaultRequestTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		base:       base,
		endpoint:   base.String() + "/graphql",
		token:      strings.TrimSpace(cfg.Token),
		http:       hc,
		maxRetries: max(0, cfg.MaxRetries),
		logger:     logger.With("server", base.Host),
	}

	var data activeUserData
	if err := c.query(ctx, "ActiveUser", activeUserQuery, nil, &data); err != nil {
		if errors.Is(err, model.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot reach %s: %v", model.ErrAuthentication, base.Host, err)
	}
	if data.ActiveUser == nil {
		return nil, fmt.Errorf("%w: token not accepted by %s", model.ErrAuthentication, base.Host)
	}
	c.user = *data.ActiveUser
	c.logger.Debug("authenticated", "user", c.user.Name)
	return c, nil
}

// Server returns the normalized base URL of the session.
func (c *Client) Server() *url.URL {
	u := *c.base
	return &u
}

// UserName returns the display name of the authenticated account.
func (c *Client) UserName() string {
	return c.user.Name
}

// EmbedURL returns the viewer embed address for ref on this server.
func (c *Client) EmbedURL(ref model.CommitRef) string {
	return EmbedURL(c.base, ref)
}

// ListStreams returns up to limit streams visible to the account.
func (c *Client) ListStreams(ctx context.Context, limit int) ([]model.Stream, error) {
	if limit <= 0 {
		limit = model.DefaultStreamLimit
	}
	var data streamListData
	if err := c.query(ctx, "StreamList", streamListQuery, map[string]any{"limit": limit}, &data); err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	if data.ActiveUser == nil {
		return nil, fmt.Errorf("list streams: %w: no active user in response", model.ErrAuthentication)
	}
	return streamsToModel(data.ActiveUser.Streams.Items), nil
}

// SearchStreams runs the server-side stream search. Matching is done by
// the server and is not an exact name comparison.
func (c *Client) SearchStreams(ctx context.Context, query string, limit int) ([]model.Stream, error) {
	if limit <= 0 {
		limit = model.DefaultStreamLimit
	}
	vars := map[string]any{"query": query, "limit": limit}
	var data streamSearchData
	if err := c.query(ctx, "StreamSearch", streamSearchQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("search streams %q: %w", query, err)
	}
	return streamsToModel(data.Streams.Items), nil
}

// ListBranches returns up to limit branches of a stream.
func (c *Client) ListBranches(ctx context.Context, streamID string, limit int) ([]model.Branch, error) {
	if limit <= 0 {
		limit = model.DefaultBranchLimit
	}
	vars := map[string]any{"streamId": streamID, "limit": limit}
	var data branchListData
	if err := c.query(ctx, "BranchList", branchListQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("list branches of %s: %w", streamID, err)
	}
	if data.Stream == nil {
		return nil, fmt.Errorf("list branches: stream %s: %w", streamID, model.ErrNotFound)
	}

	items := data.Stream.Branches.Items
	branches := make([]model.Branch, 0, len(items))
	for _, b := range items {
		branches = append(branches, model.Branch{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			StreamID:    streamID,
		})
	}
	return branches, nil
}

// ListCommits returns the newest commits of a stream, capped at limit.
func (c *Client) ListCommits(ctx context.Context, streamID string, limit int) (model.CommitPage, error) {
	if limit <= 0 {
		limit = model.DefaultCommitLimit
	}
	vars := map[string]any{"streamId": streamID, "limit": limit}
	var data commitListData
	if err := c.query(ctx, "CommitList", commitListQuery, vars, &data); err != nil {
		return model.CommitPage{}, fmt.Errorf("list commits of %s: %w", streamID, err)
	}
	if data.Stream == nil {
		return model.CommitPage{}, fmt.Errorf("list commits: stream %s: %w", streamID, model.ErrNotFound)
	}

	items := data.Stream.Commits.Items
	if len(items) > limit {
		items = items[:limit]
	}
	page := model.CommitPage{
		Commits:       make([]model.Commit, 0, len(items)),
		Limit:         limit,
		ReportedTotal: data.Stream.Commits.TotalCount,
	}
	for _, n := range items {
		page.Commits = append(page.Commits, model.Commit{
			ID:                n.ID,
			Message:           n.Message,
			SourceApplication: n.SourceApplication,
			AuthorName:        n.AuthorName,
			BranchName:        n.BranchName,
			CreatedAt:         n.CreatedAt,
			StreamID:          streamID,
		})
	}
	return page, nil
}

// query posts one GraphQL document and decodes its data into out.
// Only transport failures and 5xx responses are retried.
func (c *Client) query(ctx context.Context, op, doc string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: doc, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	attempt := 0
	send := func() error {
		attempt++
		start := time.Now()
		err := c.roundTrip(ctx, body, out)
		c.logger.Debug("graphql", "op", op, "attempt", attempt, "duration", time.Since(start), "err", err)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(send, policy); err != nil {
		if errors.Is(err, model.ErrAuthentication) || errors.Is(err, model.ErrNotFound) ||
			errors.Is(err, model.ErrServiceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrServiceUnavailable, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", model.ErrServiceUnavailable, err))
		}
		return fmt.Errorf("%w: %v", model.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return backoff.Permanent(fmt.Errorf("%w: server returned %s", model.ErrAuthentication, resp.Status))
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: server returned %s", model.ErrServiceUnavailable, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", model.ErrServiceUnavailable, err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: %s: decoding response: %v", model.ErrServiceUnavailable, resp.Status, err))
	}
	if len(envelope.Errors) > 0 {
		return backoff.Permanent(envelope.Errors.err())
	}
	if resp.StatusCode != http.StatusOK {
		return backoff.Permanent(fmt.Errorf("%w: unexpected status %s", model.ErrServiceUnavailable, resp.Status))
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: decoding data: %v", model.ErrServiceUnavailable, err))
	}
	return nil
}
