package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tinytelemetry/carbondash/internal/model"
)

var (
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold   = lipgloss.NewStyle().Bold(true)
)

// RenderText renders a dashboard for a terminal.
func RenderText(d *model.Dashboard) string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, "    "+cyan.Bold(true).Render(d.Title))
	if d.About != "" {
		lines = append(lines, "    "+dim.Render(d.About))
	}
	lines = append(lines, "")

	sel := d.Selection
	lines = append(lines, fmt.Sprintf("    Stream   %s", bold.Render(sel.StreamName)))
	if sel.CommitID == "" {
		lines = append(lines, fmt.Sprintf("    Commit   %s", dim.Render("no commits")))
	} else {
		lines = append(lines, fmt.Sprintf("    Commit   %s %s", sel.CommitLabel, dim.Render("("+sel.CommitID+")")))
	}
	if d.Stale {
		lines = append(lines, "    "+yellow.Render("previous commit is gone, showing the newest one"))
	}
	if d.EmbedURL != "" {
		lines = append(lines, fmt.Sprintf("    Viewer   %s", cyan.Render(d.EmbedURL)))
	}
	lines = append(lines, "")
	lines = append(lines, dim.Render("    ─────────────────────────────────"))
	lines = append(lines, "")

	for _, c := range d.Cards {
		lines = append(lines, fmt.Sprintf("    %-24s %s", c.Label, bold.Render(humanize.Comma(int64(c.Value)))))
		if len(c.Names) > 0 {
			lines = append(lines, dim.Render(indent(MarkdownList(c.Names), "      ")))
		}
	}

	for _, ds := range d.Datasets {
		lines = append(lines, "")
		lines = append(lines, bold.Render("    "+ds.Title))
		lines = append(lines, dim.Render(fmt.Sprintf("    %s / %s", ds.CategoryLabel, ds.MetricLabel)))
		width := 0
		for _, r := range ds.Rows {
			width = max(width, len(r.Category))
		}
		for _, r := range ds.Rows {
			lines = append(lines, fmt.Sprintf("      %-*s  %s", width, r.Category, FormatMetric(r.Metric)))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n") + "\n"
}

// FormatMetric renders a metric with thousands separators. Whole numbers
// carry no decimals.
func FormatMetric(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

func indent(s, prefix string) string {
	s = strings.TrimRight(s, "\n")
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
