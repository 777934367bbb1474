// Package stats reduces one stream's catalog data to the dashboard figures.
package stats

import "github.com/tinytelemetry/carbondash/internal/model"

// Summary holds the four independent reductions over one stream.
type Summary struct {
	StreamID     string      `json:"stream_id"`
	StreamName   string      `json:"stream_name"`
	Branches     BranchStats `json:"branches"`
	Commits      CommitStats `json:"commits"`
	Connectors   NameSet     `json:"connectors"`
	Contributors NameSet     `json:"contributors"`
}

// BranchStats keeps both the server-reported total and the size of the
// fetched listing. They disagree when the listing was cut by its limit.
type BranchStats struct {
	Reported int      `json:"reported"`
	Listed   int      `json:"listed"`
	Names    []string `json:"names"`
}

// CommitStats describes the fetched commit page. Fetched is the displayed
// count; Truncated is set when the server holds more than the limit allowed.
type CommitStats struct {
	Fetched       int  `json:"fetched"`
	Limit         int  `json:"limit"`
	ReportedTotal int  `json:"reported_total"`
	Truncated     bool `json:"truncated"`
}

// NameSet is an ordered set of distinct names.
type NameSet struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// Aggregate computes the Summary for a stream.
func Aggregate(stream model.Stream, branches []model.Branch, page model.CommitPage) Summary {
	s := Summary{
		StreamID:   stream.ID,
		StreamName: stream.Name,
		Branches: BranchStats{
			Reported: stream.BranchCount,
			Listed:   len(branches),
			Names:    make([]string, 0, len(branches)),
		},
		Commits: CommitStats{
			Fetched:       len(page.Commits),
			Limit:         page.Limit,
			ReportedTotal: page.ReportedTotal,
		},
	}
	for _, b := range branches {
		s.Branches.Names = append(s.Branches.Names, b.Name)
	}
	s.Commits.Truncated = page.Limit > 0 && len(page.Commits) >= page.Limit &&
		page.ReportedTotal > len(page.Commits)

	tags := make([]string, 0, len(page.Commits))
	for _, c := range page.Commits {
		if c.SourceApplication != "" {
			tags = append(tags, c.SourceApplication)
		}
	}
	s.Connectors = Distinct(tags)

	names := make([]string, 0, len(stream.Collaborators))
	for _, c := range stream.Collaborators {
		names = append(names, c.Name)
	}
	s.Contributors = Distinct(names)
	return s
}

// Distinct keeps the first occurrence of every name, comparing exactly.
func Distinct(names []string) NameSet {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return NameSet{Count: len(out), Names: out}
}
