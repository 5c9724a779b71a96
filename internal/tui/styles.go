package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/masmgr/histwalk/config"
)

// Styles holds all the lipgloss styles
type Styles struct {
	added      lipgloss.Style
	removed    lipgloss.Style
	changed    lipgloss.Style
	unchanged  lipgloss.Style
	lineNumber lipgloss.Style
	title      lipgloss.Style
	statusBar  lipgloss.Style
	enabled    lipgloss.Style
	disabled   lipgloss.Style
	muted      lipgloss.Style
	errorText  lipgloss.Style
}

// createStyles initializes all lipgloss styles from the configured colors
func createStyles(ui config.UIConfig) *Styles {
	accent := lipgloss.Color(ui.Accent)
	muted := lipgloss.Color(ui.Muted)
	return &Styles{
		added: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ui.Added)),
		removed: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ui.Removed)),
		changed: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		unchanged: lipgloss.NewStyle(),
		lineNumber: lipgloss.NewStyle().
			Foreground(muted).
			Width(5).
			Align(lipgloss.Right),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Bold(true).
			Padding(0, 1),
		statusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1),
		enabled: lipgloss.NewStyle().
			Bold(true),
		disabled: lipgloss.NewStyle().
			Faint(true),
		muted: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		errorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ui.Removed)).
			Bold(true),
	}
}
