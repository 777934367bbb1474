package model

import "time"

// Stream is a project container on the collaboration server.
// BranchCount is the total reported by the server, which can be larger
// than any branch listing fetched with a page limit.
type Stream struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	BranchCount   int            `json:"branch_count"`
	Collaborators []Collaborator `json:"collaborators"`
}

// Collaborator is a user with access to a stream. Name is the dedup key.
type Collaborator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Branch is a named line of commits. StreamID is a lookup reference only.
type Branch struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StreamID    string `json:"stream_id"`
}

// Commit is an immutable model snapshot inside a stream.
type Commit struct {
	ID                string    `json:"id"`
	Message           string    `json:"message"`
	SourceApplication string    `json:"source_application"`
	AuthorName        string    `json:"author_name,omitempty"`
	BranchName        string    `json:"branch_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	StreamID          string    `json:"stream_id"`
}

// CommitPage is one newest-first page of commits plus the total the server
// reports for the stream.
type CommitPage struct {
	Commits       []Commit `json:"commits"`
	Limit         int      `json:"limit"`
	ReportedTotal int      `json:"reported_total"`
}

// Selection is the user's (stream, commit) pick. CommitID is empty when the
// stream has no commits.
type Selection struct {
	StreamID    string `json:"stream_id"`
	StreamName  string `json:"stream_name"`
	CommitID    string `json:"commit_id"`
	CommitLabel string `json:"commit_label"`
}

// Ref returns the viewer reference for the selection.
func (s Selection) Ref() CommitRef {
	return CommitRef{StreamID: s.StreamID, CommitID: s.CommitID}
}

// IsZero reports whether nothing has been selected yet.
func (s Selection) IsZero() bool {
	return s.StreamID == "" && s.StreamName == "" && s.CommitID == ""
}

// CommitRef identifies the commit a host should embed in a viewer.
type CommitRef struct {
	StreamID string `json:"stream_id"`
	CommitID string `json:"commit_id"`
}

// SummaryCard is one presentation-ready statistic.
type SummaryCard struct {
	Label string   `json:"label"`
	Value int      `json:"value"`
	Names []string `json:"names"`
}

// DatasetRow is one projected (category, metric) pair.
type DatasetRow struct {
	Category string  `json:"category"`
	Metric   float64 `json:"metric"`
}

// TabularDataset holds the two canonical columns of a chart dataset.
// CategoryLabel and MetricLabel are display names for chart axes.
type TabularDataset struct {
	Name          string       `json:"name"`
	Title         string       `json:"title"`
	Chart         ChartKind    `json:"chart"`
	CategoryLabel string       `json:"category_label"`
	MetricLabel   string       `json:"metric_label"`
	Rows          []DatasetRow `json:"rows"`
}

// ChartKind tells a surface how a dataset is meant to be drawn.
type ChartKind string

const (
	ChartBar    ChartKind = "bar"
	ChartBarLog ChartKind = "bar-log"
	ChartDonut  ChartKind = "donut"
	ChartTable  ChartKind = "table"
)

// Dashboard is the result of one pipeline run.
type Dashboard struct {
	RunID     string           `json:"run_id"`
	Title     string           `json:"title"`
	About     string           `json:"about,omitempty"`
	Server    string           `json:"server"`
	Streams   []Stream         `json:"streams"`
	Selection Selection        `json:"selection"`
	Stale     bool             `json:"stale,omitempty"`
	Options   []CommitOption   `json:"commit_options"`
	Cards     []SummaryCard    `json:"cards"`
	EmbedURL  string           `json:"embed_url"`
	Datasets  []TabularDataset `json:"datasets"`

	// CommitsTruncated is set when the stream holds more commits than were
	// fetched; ReportedCommits is the server's total.
	CommitsTruncated bool `json:"commits_truncated,omitempty"`
	ReportedCommits  int  `json:"reported_commits"`
}

// CommitOption is one entry of a commit picker.
type CommitOption struct {
	Label    string `json:"label"`
	CommitID string `json:"commit_id"`
}
