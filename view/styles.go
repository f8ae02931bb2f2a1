package view

import "github.com/charmbracelet/lipgloss"

var (
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorGray   = lipgloss.Color("#666666")
	ColorBlack  = lipgloss.Color("#000000")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	HighlightStyle = lipgloss.NewStyle().
			Background(ColorYellow).
			Foreground(ColorBlack)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

const (
	scrollMarker = "▶ "
	noMarker     = "  "
	markerWidth  = 2
)
