package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the replay layers. Braille cells carry one colour each, so the
// canvas itself uses Path and overlays are told apart in the side panel.
type Theme struct {
	Name    string
	Path    lipgloss.Color
	Robot   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeLawn = Theme{
		Name:    "lawn",
		Path:    lipgloss.Color("#5fd068"),
		Robot:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0ffe0"),
		Muted:   lipgloss.Color("#4a7a4a"),
		Warning: lipgloss.Color("#ff4757"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Path:    lipgloss.Color("#00ff00"),
		Robot:   lipgloss.Color("#88ff88"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Path:    lipgloss.Color("#ffffff"),
		Robot:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{ThemeLawn, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to lawn.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLawn
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(cur Theme) Theme {
	for i, t := range Themes {
		if t.Name == cur.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
