package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cinematch/internal/format"
)

// renderHeader returns a styled header with an optional muted subtitle on
// the right.
func renderHeader(t *Theme, title, subtitle string, width int) string {
	left := t.Render("header", truncateEnd(title, width-2))
	if subtitle == "" {
		return left
	}
	right := t.Render("muted", truncateEnd(subtitle, width/2))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
}

// renderInputFrame draws a rounded frame around an already rendered input.
func renderInputFrame(t *Theme, inputView string, focused bool, contentWidth int) string {
	return t.Style(format.Cn("input", map[string]bool{"input--focused": focused})).
		Width(contentWidth + 2).
		Render(inputView)
}

// renderButton renders a one-line button. Disabled wins over focused.
func renderButton(t *Theme, label string, focused, disabled bool) string {
	return t.Render(format.Cn("button", map[string]bool{
		"button--focused":  focused && !disabled,
		"button--disabled": disabled,
	}), label)
}

// renderCentered centers content within a width by height box.
func renderCentered(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
