package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/report"
)

const (
	chartHeight = 8
	legendWidth = 34
)

// renderDataset draws one dataset in the form its chart kind asks for.
func renderDataset(ds model.TabularDataset, width int) string {
	title := chartTitleStyle.Render(ds.Title)
	if len(ds.Rows) == 0 {
		return sectionStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No data available")))
	}

	inner := max(20, width-4)
	var body string
	switch ds.Chart {
	case model.ChartBar:
		body = renderBars(ds, inner, false)
	case model.ChartBarLog:
		body = renderBars(ds, inner, true)
	case model.ChartDonut:
		body = renderShares(ds, inner)
	default:
		body = renderTable(ds, inner)
	}
	return sectionStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// barValue scales a metric for drawing. Log scale uses log10(1+v) so
// zero stays at the baseline; negative values are drawn as zero.
func barValue(v float64, logScale bool) float64 {
	v = math.Max(0, v)
	if logScale {
		return math.Log10(1 + v)
	}
	return v
}

// renderBars draws a bar chart with a legend mapping colours to
// categories.
func renderBars(ds model.TabularDataset, width int, logScale bool) string {
	chartWidth := max(10, width-legendWidth-2)
	maxBars := max(1, chartWidth/3)
	rows := ds.Rows
	if len(rows) > maxBars {
		rows = rows[:maxBars]
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(2),
		barchart.WithNoAxis(),
	)
	for i, r := range rows {
		c := colorAt(i)
		bc.Push(barchart.BarData{
			Label: r.Category,
			Values: []barchart.BarValue{{
				Name:  r.Category,
				Value: barValue(r.Metric, logScale),
				Style: lipgloss.NewStyle().Foreground(c).Background(c),
			}},
		})
	}
	bc.Draw()

	var legend []string
	for i, r := range rows {
		swatch := lipgloss.NewStyle().Foreground(colorAt(i)).Render("■")
		legend = append(legend, fmt.Sprintf("%s %s %s", swatch,
			padRight(truncate(r.Category, legendWidth-16), legendWidth-16),
			report.FormatMetric(r.Metric)))
	}
	if hidden := len(ds.Rows) - len(rows); hidden > 0 {
		legend = append(legend, helpStyle.Render(fmt.Sprintf("+%d more", hidden)))
	}

	axis := ds.MetricLabel
	if logScale {
		axis += " (log scale)"
	}
	chart := lipgloss.JoinVertical(lipgloss.Left, bc.View(), helpStyle.Render(axis+" by "+ds.CategoryLabel))
	return lipgloss.JoinHorizontal(lipgloss.Top, chart, "  ", strings.Join(legend, "\n"))
}

// renderShares draws part-of-whole data as proportional horizontal bars,
// the terminal stand-in for a donut chart.
func renderShares(ds model.TabularDataset, width int) string {
	total := 0.0
	for _, r := range ds.Rows {
		total += math.Max(0, r.Metric)
	}

	labelWidth := 0
	for _, r := range ds.Rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Category))
	}
	labelWidth = min(labelWidth, width/3)
	barWidth := max(5, width-labelWidth-20)

	lines := make([]string, 0, len(ds.Rows)+1)
	for i, r := range ds.Rows {
		share := 0.0
		if total > 0 {
			share = math.Max(0, r.Metric) / total
		}
		n := int(math.Round(share * float64(barWidth)))
		bar := lipgloss.NewStyle().Foreground(colorAt(i)).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%s %s%s %5.1f%%",
			padRight(truncate(r.Category, labelWidth), labelWidth),
			bar, strings.Repeat(" ", barWidth-n), share*100))
	}
	lines = append(lines, helpStyle.Render(fmt.Sprintf("total %s %s", report.FormatMetric(total), ds.MetricLabel)))
	return strings.Join(lines, "\n")
}

// renderTable lists the rows with their values right-aligned.
func renderTable(ds model.TabularDataset, width int) string {
	values := make([]string, len(ds.Rows))
	valueWidth := lipgloss.Width(ds.MetricLabel)
	for i, r := range ds.Rows {
		values[i] = report.FormatMetric(r.Metric)
		valueWidth = max(valueWidth, len(values[i]))
	}
	labelWidth := max(10, width-valueWidth-2)

	lines := []string{helpStyle.Render(padRight(ds.CategoryLabel, labelWidth) + "  " + padLeft(ds.MetricLabel, valueWidth))}
	for i, r := range ds.Rows {
		lines = append(lines, padRight(truncate(r.Category, labelWidth), labelWidth)+"  "+padLeft(values[i], valueWidth))
	}
	return strings.Join(lines, "\n")
}

// renderCards lays the summary cards out side by side, wrapping when the
// terminal is narrow.
func renderCards(cards []model.SummaryCard, width int) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := len(cards)
	cardWidth := (width / perRow) - 2
	if cardWidth < 24 {
		perRow = max(1, width/26)
		cardWidth = max(20, width/perRow-2)
	}

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := []string{
			helpStyle.Render(c.Label),
			cardValueStyle.Render(report.FormatMetric(float64(c.Value))),
		}
		for _, n := range c.Names {
			body = append(body, "• "+truncate(n, cardWidth-4))
		}
		rendered = append(rendered, cardStyle.Width(cardWidth).Render(strings.Join(body, "\n")))
	}

	var rows []string
	for i := 0; i < len(rendered); i += perRow {
		end := min(i+perRow, len(rendered))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func padLeft(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return strings.Repeat(" ", n-w) + s
	}
	return s
}
