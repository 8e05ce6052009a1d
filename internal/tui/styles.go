package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorTitle   = lipgloss.Color("205")
	ColorLabel   = lipgloss.Color("245")
	ColorSuccess = lipgloss.Color("42")
	ColorError   = lipgloss.Color("196")
	ColorLoading = lipgloss.Color("214")
	ColorMuted   = lipgloss.Color("240")

	titleStyle    = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true).MarginBottom(1)
	nameStyle     = lipgloss.NewStyle().Width(14).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(ColorError)
	helpStyle     = lipgloss.NewStyle().Foreground(ColorLabel).MarginTop(1)
)

func statusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Width(9)
	switch status {
	case "success":
		return base.Foreground(ColorSuccess)
	case "error":
		return base.Foreground(ColorError)
	case "loading":
		return base.Foreground(ColorLoading)
	default:
		return base.Foreground(ColorMuted)
	}
}
