package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/splash"
)

const AppName = "cinematch"

const Tagline = "AI-Powered Movie Recommendations"

const CompactLogo = "🎬 CineMatch"

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#60A5FA"),
	lipgloss.Color("#818CF8"),
	lipgloss.Color("#A78BFA"),
	lipgloss.Color("#C084FC"),
	lipgloss.Color("#F472B6"),
}

// classRule applies one class on top of the styles of earlier classes.
type classRule func(lipgloss.Style) lipgloss.Style

// Theme resolves class names, as composed by format.Cn, to lipgloss styles
// for one palette. Swapping the App's theme is what dark mode toggles.
type Theme struct {
	Dark   bool
	Colors config.UIColors
	rules  map[string]classRule
}

// NewTheme builds the dark or light theme from the configured palettes.
// Empty palette entries fall back to the built-in defaults.
func NewTheme(ui config.UIConfig, dark bool) *Theme {
	defaults := config.Default().UI
	colors := mergeColors(ui.LightColors, defaults.LightColors)
	if dark {
		colors = mergeColors(ui.Colors, defaults.Colors)
	}
	t := &Theme{Dark: dark, Colors: colors}
	t.rules = t.buildRules()
	return t
}

func mergeColors(c, fallback config.UIColors) config.UIColors {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return config.UIColors{
		Primary:    pick(c.Primary, fallback.Primary),
		Secondary:  pick(c.Secondary, fallback.Secondary),
		Accent:     pick(c.Accent, fallback.Accent),
		Background: pick(c.Background, fallback.Background),
		Surface:    pick(c.Surface, fallback.Surface),
		Text:       pick(c.Text, fallback.Text),
		Muted:      pick(c.Muted, fallback.Muted),
		Error:      pick(c.Error, fallback.Error),
		Success:    pick(c.Success, fallback.Success),
		Warning:    pick(c.Warning, fallback.Warning),
	}
}

func (t *Theme) buildRules() map[string]classRule {
	c := t.Colors
	fg := func(hex string) classRule {
		return func(s lipgloss.Style) lipgloss.Style { return s.Foreground(lipgloss.Color(hex)) }
	}
	border := func(hex string) classRule {
		return func(s lipgloss.Style) lipgloss.Style {
			return s.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(hex))
		}
	}

	return map[string]classRule{
		"text":  fg(c.Text),
		"muted": fg(c.Muted),
		"bold":  func(s lipgloss.Style) lipgloss.Style { return s.Bold(true) },
		"faint": func(s lipgloss.Style) lipgloss.Style { return s.Faint(true) },

		"logo": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Primary)).Bold(true)
		},
		"tagline": fg(c.Muted),
		"header": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Text)).Bold(true)
		},
		"section-title": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Secondary)).Bold(true)
		},
		"label": fg(c.Text),
		"help":  func(s lipgloss.Style) lipgloss.Style { return s.Foreground(lipgloss.Color(c.Muted)).Italic(true) },

		"panel": func(s lipgloss.Style) lipgloss.Style {
			return border(c.Muted)(s).Padding(0, 1)
		},

		"input":          func(s lipgloss.Style) lipgloss.Style { return border(c.Muted)(s).Padding(0, 1) },
		"input--focused": border(c.Primary),

		"slider":          fg(c.Muted),
		"slider--focused": fg(c.Primary),
		"slider-value": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Text)).Background(lipgloss.Color(c.Surface)).Padding(0, 1)
		},

		"button": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Background)).Background(lipgloss.Color(c.Primary)).Bold(true).Padding(0, 2)
		},
		"button--focused": func(s lipgloss.Style) lipgloss.Style {
			return s.Background(lipgloss.Color(c.Accent))
		},
		"button--disabled": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Muted)).Background(lipgloss.Color(c.Surface)).Bold(false)
		},

		"chip": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Text)).Padding(0, 1)
		},
		"chip--focused": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Background)).Background(lipgloss.Color(c.Secondary))
		},

		"suggestion": fg(c.Muted),
		"suggestion--active": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Accent)).Bold(true)
		},

		"card":           func(s lipgloss.Style) lipgloss.Style { return border(c.Muted)(s).Padding(0, 1) },
		"card--selected": border(c.Accent),
		"card-title": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Text)).Bold(true)
		},
		"poster": fg(c.Muted),
		"rating": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Warning)).Bold(true)
		},
		"year": fg(c.Muted),
		"genre": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Secondary))
		},
		"overview": fg(c.Text),

		"skeleton": func(s lipgloss.Style) lipgloss.Style {
			return border(c.Surface)(s).Foreground(lipgloss.Color(c.Surface)).Padding(0, 1)
		},
		"spinner": fg(c.Primary),

		"banner": func(s lipgloss.Style) lipgloss.Style {
			return border(c.Success)(s).Foreground(lipgloss.Color(c.Success)).Padding(0, 1)
		},
		"error-panel": func(s lipgloss.Style) lipgloss.Style {
			return border(c.Error)(s).Padding(0, 1)
		},
		"error-title": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Error)).Bold(true)
		},
		"error": fg(c.Error),
		"empty": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Text)).Align(lipgloss.Center)
		},

		"separator":       fg(c.Muted),
		"status":          func(s lipgloss.Style) lipgloss.Style { return s.Foreground(lipgloss.Color(c.Muted)).Padding(0, 1) },
		"status--info":    fg(c.Muted),
		"status--success": fg(c.Success),
		"status--warn":    fg(c.Warning),
		"status--error": func(s lipgloss.Style) lipgloss.Style {
			return s.Foreground(lipgloss.Color(c.Error)).Bold(true)
		},
	}
}

// Style resolves space separated class names. Later classes override
// earlier ones and unknown names are ignored.
func (t *Theme) Style(classes string) lipgloss.Style {
	s := lipgloss.NewStyle()
	for _, name := range strings.Fields(classes) {
		if rule, ok := t.rules[name]; ok {
			s = rule(s)
		}
	}
	return s
}

// Render is shorthand for t.Style(classes).Render(text).
func (t *Theme) Render(classes, text string) string {
	return t.Style(classes).Render(text)
}

// Has reports whether the theme defines a class.
func (t *Theme) Has(class string) bool {
	_, ok := t.rules[class]
	return ok
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

func (t *Theme) ModeIcon() string {
	if t.Dark {
		return "☾ dark"
	}
	return "☀ light"
}

// GetCompactBanner renders the logo above a muted message.
func GetCompactBanner(t *Theme, message string) string {
	var coloredLines []string
	for _, line := range splash.LogoLines {
		coloredLines = append(coloredLines, t.Render("logo", line))
	}
	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	return lipgloss.JoinVertical(lipgloss.Center, logo, "", t.Render("help", message))
}

func GetWelcomeMessage(t *Theme) string {
	return GetCompactBanner(t, "Enter a movie you love and find similar recommendations")
}

// BannerText builds the startup banner printed before the TUI starts.
func BannerText(version string) string {
	lines := make([]string, len(splash.LogoLines)+1)
	copy(lines, splash.LogoLines)
	lines[len(splash.LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    %s %s", Tagline, versionTag))
	} else {
		lines = append(lines, "    "+Tagline)
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(splash.LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	banner := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(lipgloss.Color("#A78BFA")).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F472B6")).
		Render("★ ☆ ★ ☆ ★")

	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).Render(banner),
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).MarginBottom(1).Render(separator),
	)
}

func PrintBanner(version string) {
	fmt.Println(BannerText(version))
}
