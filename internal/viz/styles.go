package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bifsim/internal/dynamo"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Accent)

	Subtle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Muted)

	StableStyle   = lipgloss.NewStyle().Foreground(CurrentTheme.Stable)
	UnstableStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Unstable)
	NeutralStyle  = lipgloss.NewStyle().Foreground(CurrentTheme.Neutral)
	EventStyle    = lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Event)
)

func applyTheme(t Theme) {
	Title = Title.Foreground(t.Accent)
	Subtle = Subtle.Foreground(t.Muted)
	StableStyle = StableStyle.Foreground(t.Stable)
	UnstableStyle = UnstableStyle.Foreground(t.Unstable)
	NeutralStyle = NeutralStyle.Foreground(t.Neutral)
	EventStyle = EventStyle.Foreground(t.Event)
}

// StabilityStyle returns the style used for a stability label.
func StabilityStyle(s dynamo.Stability) lipgloss.Style {
	switch s {
	case dynamo.Stable:
		return StableStyle
	case dynamo.Unstable:
		return UnstableStyle
	}
	return NeutralStyle
}

// Symbol renders the colored marker of a stability label.
func Symbol(s dynamo.Stability) string {
	return StabilityStyle(s).Render(s.Symbol())
}
