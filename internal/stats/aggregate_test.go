package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinytelemetry/carbondash/internal/model"
)

func commits(tags ...string) []model.Commit {
	out := make([]model.Commit, len(tags))
	for i, tag := range tags {
		out[i] = model.Commit{ID: fmt.Sprintf("c%d", i), SourceApplication: tag}
	}
	return out
}

func TestAggregate_ContributorsDeduplicated(t *testing.T) {
	stream := model.Stream{
		ID:   "s1",
		Name: "25 King",
		Collaborators: []model.Collaborator{
			{Name: "Ana"}, {Name: "Bo"}, {Name: "Ana"},
		},
	}
	s := Aggregate(stream, nil, model.CommitPage{Limit: 100})
	assert.Equal(t, 2, s.Contributors.Count)
	assert.Equal(t, []string{"Ana", "Bo"}, s.Contributors.Names)
}

func TestAggregate_ConnectorsDeduplicated(t *testing.T) {
	page := model.CommitPage{Commits: commits("Revit", "Revit", "Rhino"), Limit: 100, ReportedTotal: 3}
	s := Aggregate(model.Stream{}, nil, page)
	assert.Equal(t, 2, s.Connectors.Count)
	assert.Equal(t, []string{"Revit", "Rhino"}, s.Connectors.Names)
}

func TestAggregate_ConnectorsSkipEmptyAndCaseSensitive(t *testing.T) {
	page := model.CommitPage{Commits: commits("", "revit", "Revit", ""), Limit: 100}
	s := Aggregate(model.Stream{}, nil, page)
	assert.Equal(t, []string{"revit", "Revit"}, s.Connectors.Names)
}

func TestAggregate_Branches(t *testing.T) {
	stream := model.Stream{BranchCount: 14}
	branches := []model.Branch{{Name: "main"}, {Name: "structure"}}
	s := Aggregate(stream, branches, model.CommitPage{})
	assert.Equal(t, 14, s.Branches.Reported)
	assert.Equal(t, 2, s.Branches.Listed)
	assert.Equal(t, []string{"main", "structure"}, s.Branches.Names)
}

func TestAggregate_CommitCount(t *testing.T) {
	tests := []struct {
		name          string
		fetched       int
		reported      int
		wantTruncated bool
	}{
		{"short history", 7, 7, false},
		{"exactly the limit", 100, 100, false},
		{"longer history", 100, 250, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := model.CommitPage{
				Commits:       make([]model.Commit, tt.fetched),
				Limit:         100,
				ReportedTotal: tt.reported,
			}
			s := Aggregate(model.Stream{}, nil, page)
			assert.Equal(t, tt.fetched, s.Commits.Fetched)
			assert.Equal(t, tt.wantTruncated, s.Commits.Truncated)
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(model.Stream{ID: "s"}, nil, model.CommitPage{})
	assert.Zero(t, s.Connectors.Count)
	assert.Empty(t, s.Connectors.Names)
	assert.NotNil(t, s.Branches.Names)
}
