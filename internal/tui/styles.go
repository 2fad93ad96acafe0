package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/FerryCalvin/antam-autoq/internal/logview"
)

// Styles is the console's color scheme, tuned for dark terminals.
type Styles struct {
	Title     lipgloss.Style
	Pane      lipgloss.Style
	PaneTitle lipgloss.Style
	StatusBar lipgloss.Style

	RowActive   lipgloss.Style
	RowIdle     lipgloss.Style
	RowSelected lipgloss.Style

	LogNeutral lipgloss.Style
	LogError   lipgloss.Style
	LogSuccess lipgloss.Style
	LogPending lipgloss.Style
	LogSystem  lipgloss.Style

	Notice    lipgloss.Style
	NoticeErr lipgloss.Style

	FormLabel lipgloss.Style
	Help      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PaneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),

		RowActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		RowIdle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		RowSelected: lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237")),

		LogNeutral: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		LogError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		LogSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		LogPending: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		LogSystem:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),

		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		NoticeErr: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),

		FormLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// logStyle maps a classified log line to its render style.
func (s Styles) logStyle(tag logview.Tag) lipgloss.Style {
	switch tag {
	case logview.TagError:
		return s.LogError
	case logview.TagSuccess:
		return s.LogSuccess
	case logview.TagPending:
		return s.LogPending
	case logview.TagSystem:
		return s.LogSystem
	default:
		return s.LogNeutral
	}
}
