package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

type palette struct {
	primary, secondary, accent    [2]string
	success, warning, errorColor  [2]string
	info, border, muted, selected [2]string
}

func adaptive(c [2]string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: c[0], Dark: c[1]}
}

func buildTheme(name string, p palette) Theme {
	return Theme{
		Name:      name,
		Primary:   adaptive(p.primary),
		Secondary: adaptive(p.secondary),
		Accent:    adaptive(p.accent),
		Success:   adaptive(p.success),
		Warning:   adaptive(p.warning),
		Error:     adaptive(p.errorColor),
		Info:      adaptive(p.info),
		Border:    adaptive(p.border),
		Muted:     adaptive(p.muted),
		Selected:  adaptive(p.selected),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default", palette{
		primary: [2]string{"#1E40AF", "#3B82F6"}, secondary: [2]string{"#6B7280", "#9CA3AF"}, accent: [2]string{"#7C3AED", "#A855F7"},
		success: [2]string{"#059669", "#10B981"}, warning: [2]string{"#D97706", "#F59E0B"}, errorColor: [2]string{"#DC2626", "#EF4444"},
		info: [2]string{"#0891B2", "#06B6D4"}, border: [2]string{"#D1D5DB", "#374151"}, muted: [2]string{"#6B7280", "#9CA3AF"},
		selected: [2]string{"#DBEAFE", "#1E3A8A"},
	})

	HighContrastTheme = buildTheme("high-contrast", palette{
		primary: [2]string{"#000000", "#FFFFFF"}, secondary: [2]string{"#666666", "#BBBBBB"}, accent: [2]string{"#000080", "#8080FF"},
		success: [2]string{"#006600", "#00FF00"}, warning: [2]string{"#CC6600", "#FFAA00"}, errorColor: [2]string{"#CC0000", "#FF4444"},
		info: [2]string{"#0066CC", "#4499FF"}, border: [2]string{"#000000", "#FFFFFF"}, muted: [2]string{"#666666", "#BBBBBB"},
		selected: [2]string{"#CCCCCC", "#333333"},
	})

	MinimalTheme = buildTheme("minimal", palette{
		primary: [2]string{"#2D3748", "#E2E8F0"}, secondary: [2]string{"#718096", "#A0AEC0"}, accent: [2]string{"#4A5568", "#CBD5E0"},
		success: [2]string{"#2F855A", "#68D391"}, warning: [2]string{"#C05621", "#F6AD55"}, errorColor: [2]string{"#C53030", "#FC8181"},
		info: [2]string{"#2B6CB0", "#63B3ED"}, border: [2]string{"#E2E8F0", "#2D3748"}, muted: [2]string{"#A0AEC0", "#718096"},
		selected: [2]string{"#EDF2F7", "#2D3748"},
	})
)

// themes lists the built-in themes in display order
var themes = []*Theme{&DefaultTheme, &HighContrastTheme, &MinimalTheme}

var currentTheme = DefaultTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	for _, theme := range themes {
		if theme.Name == name {
			SetTheme(theme)
			return true
		}
	}
	return false
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for _, theme := range themes {
		names = append(names, theme.Name)
	}
	return names
}

// Styles contains the styled components of the upload screen
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style

	ResultBox lipgloss.Style
	ErrorBox  lipgloss.Style
	Panel     lipgloss.Style
}

// GetStyles builds the styles for the current theme. With color off every
// style renders plain text, borders included.
func GetStyles(color bool) *Styles {
	return newStyles(lipgloss.NewRenderer(os.Stdout), color)
}

func newStyles(r *lipgloss.Renderer, color bool) *Styles {
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: r.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: r.NewStyle().
			Foreground(theme.Secondary),

		Label: r.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),

		Muted: r.NewStyle().
			Foreground(theme.Muted),

		Success: r.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Error: r.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: r.NewStyle().
			Foreground(theme.Info),

		Input: r.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		InputFocused: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Button: r.NewStyle().
			Foreground(theme.Primary).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2),

		ButtonFocused: r.NewStyle().
			Foreground(theme.Primary).
			Background(theme.Selected).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 2),

		ButtonDisabled: r.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Muted).
			Padding(0, 2),

		ResultBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Success).
			Padding(0, 2),

		ErrorBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 2),

		Panel: r.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}
