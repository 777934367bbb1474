// Package report turns aggregated statistics into presentation-ready cards
// and renders dashboards as text, JSON or TOON.
package report

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/stats"
)

// Card labels, in display order.
const (
	LabelBranches     = "Number of branches"
	LabelCommits      = "Number of commits"
	LabelConnectors   = "Number of connectors"
	LabelContributors = "Number of contributors"
)

// BranchCount selects which branch total the branch card shows.
type BranchCount string

const (
	BranchCountReported BranchCount = "reported"
	BranchCountListed   BranchCount = "listed"
)

// ParseBranchCount validates a config value.
func ParseBranchCount(s string) (BranchCount, error) {
	switch BranchCount(strings.ToLower(strings.TrimSpace(s))) {
	case "", BranchCountReported:
		return BranchCountReported, nil
	case BranchCountListed:
		return BranchCountListed, nil
	}
	return "", fmt.Errorf("unknown branch count source %q (reported|listed)", s)
}

// Options tune card construction.
type Options struct {
	BranchCount BranchCount
}

// Cards maps a summary onto the four dashboard cards in fixed order.
// The commit card carries no names.
func Cards(s stats.Summary, opts Options) []model.SummaryCard {
	branches := s.Branches.Reported
	if opts.BranchCount == BranchCountListed {
		branches = s.Branches.Listed
	}
	return []model.SummaryCard{
		{Label: LabelBranches, Value: branches, Names: nonNil(s.Branches.Names)},
		{Label: LabelCommits, Value: s.Commits.Fetched, Names: []string{}},
		{Label: LabelConnectors, Value: s.Connectors.Count, Names: nonNil(s.Connectors.Names)},
		{Label: LabelContributors, Value: s.Contributors.Count, Names: nonNil(s.Contributors.Names)},
	}
}

// MarkdownList renders names as a markdown bullet list.
func MarkdownList(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return b.String()
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
