package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorNavy   = lipgloss.Color("17")
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("240")
	ColorWhite  = lipgloss.Color("255")
)

// chartColors cycles across bars and donut slices.
var chartColors = []lipgloss.Color{"39", "42", "220", "208", "170", "45", "141", "203", "118", "214"}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1)

	cardValueStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	linkStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Underline(true)
)

func colorAt(i int) lipgloss.Color {
	return chartColors[i%len(chartColors)]
}
