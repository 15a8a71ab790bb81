// Package styles holds the lipgloss palette and styles shared by the TUI views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Primary   lipgloss.Color // titles, selection, assistant label
	Secondary lipgloss.Color // user label
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Bar       lipgloss.Color // status bar background
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#E4572E"),
		Secondary: lipgloss.Color("#29B6F6"),
		Text:      lipgloss.Color("#E8E6E3"),
		Muted:     lipgloss.Color("#8A8F98"),
		Error:     lipgloss.Color("#FF6B6B"),
		Border:    lipgloss.Color("#3B4048"),
		Bar:       lipgloss.Color("#1B1E23"),
	}
}

// Styles are the rendered styles built from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript styles for the chat view.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Thinking       lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Primary).Bold(true),
		Normal:     fg(theme.Text),
		Muted:      fg(theme.Muted),
		Error:      fg(theme.Error),
		InputField: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),

		UserLabel:      fg(theme.Secondary).Bold(true),
		AssistantLabel: fg(theme.Primary).Bold(true),
		Thinking:       fg(theme.Muted).Italic(true),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
