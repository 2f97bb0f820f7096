package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all popup colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // Soft pastel salmon pink - primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // Lighter coral accent - duplicate badges
	mintGreen   = lipgloss.Color("#A8E6CF") // Soft mint green - success states
	butterCream = lipgloss.Color("#FFF2A8") // Pale yellow - search matches
	mutedGray   = lipgloss.Color("#6B7280") // Muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Bright white - primary text
)

// Common Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	titleStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	urlStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(butterCream)

	selectedStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	windowBadgeStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Bold(true)

	duplicateBadgeStyle = lipgloss.NewStyle().
				Foreground(coralPink).
				Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
