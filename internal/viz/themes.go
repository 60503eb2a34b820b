package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of diagrams and the explorer.
type Theme struct {
	Name     string
	Stable   lipgloss.Color
	Unstable lipgloss.Color
	Neutral  lipgloss.Color
	Event    lipgloss.Color
	Accent   lipgloss.Color
	Muted    lipgloss.Color
}

// Available themes
var (
	ThemeClassic = Theme{
		Name:     "classic",
		Stable:   lipgloss.Color("#1f77b4"),
		Unstable: lipgloss.Color("#d62728"),
		Neutral:  lipgloss.Color("#bcbd22"),
		Event:    lipgloss.Color("#2ca02c"),
		Accent:   lipgloss.Color("#00ffff"),
		Muted:    lipgloss.Color("#666688"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Stable:   lipgloss.Color("#00ff00"),
		Unstable: lipgloss.Color("#88ff88"),
		Neutral:  lipgloss.Color("#00cc00"),
		Event:    lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#006600"),
	}

	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Stable:   lipgloss.Color("#00ffff"),
		Unstable: lipgloss.Color("#ff00ff"),
		Neutral:  lipgloss.Color("#ffff00"),
		Event:    lipgloss.Color("#ff8800"),
		Accent:   lipgloss.Color("#ff00ff"),
		Muted:    lipgloss.Color("#666666"),
	}

	Themes = []Theme{ThemeClassic, ThemeRetroGreen, ThemeCyberpunk}

	CurrentTheme = ThemeClassic
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
