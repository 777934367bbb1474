package model

import "context"

// Remote is the read-only surface of the collaboration service consumed by
// the catalog.
type Remote interface {
	ListStreams(ctx context.Context, limit int) ([]Stream, error)
	SearchStreams(ctx context.Context, query string, limit int) ([]Stream, error)
	ListBranches(ctx context.Context, streamID string, limit int) ([]Branch, error)
	ListCommits(ctx context.Context, streamID string, limit int) (CommitPage, error)
}

// Session is an authenticated Remote that can also build viewer addresses.
type Session interface {
	Remote
	EmbedURL(ref CommitRef) string
}

// SchemaQuerier provides schema introspection and arbitrary read-only queries.
type SchemaQuerier interface {
	ExecuteQuery(query string) ([]map[string]interface{}, error)
	GetSchemaDescription() string
	TableRowCounts() (map[string]int64, error)
}

// DatasetWriter replaces the stored rows of one chart dataset.
type DatasetWriter interface {
	ReplaceDataset(ctx context.Context, name string, rows []DatasetRow) error
}
