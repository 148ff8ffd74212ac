package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/format"
	"github.com/pders01/cinematch/internal/recommend"
)

// skeletonCards is how many placeholder cards show while loading.
const skeletonCards = 6

const cardGap = 1

// gridColumns is the number of card columns for a region width.
func gridColumns(width int) int {
	switch {
	case width >= 100:
		return 3
	case width >= 60:
		return 2
	default:
		return 1
	}
}

func cardWidth(width, cols int) int {
	w := (width - cardGap*(cols-1)) / cols
	if w < 20 {
		w = 20
	}
	return w
}

// cardLines builds the content lines of one card, unstyled by the frame.
func cardLines(t *Theme, m recommend.Movie, cc config.CardConfig, inner int) []string {
	var lines []string

	poster := "🎬 no poster"
	if m.PosterPath != "" {
		poster = "▣ " + truncateMiddle(format.ImageURL(m.PosterPath, cc.ImageSize), inner-2)
	}
	lines = append(lines, t.Render("poster", poster))

	title := format.Truncate(m.Title, cc.TitleLength)
	titleLine := t.Render("card-title", wrap.String(wordwrap.String(title, inner), inner))
	if m.HasRating() {
		badge := t.Render("rating", fmt.Sprintf("★ %.1f", m.VoteAverage))
		if lipgloss.Width(title)+1+lipgloss.Width(badge) <= inner {
			titleLine = spread(titleLine, badge, inner)
		} else {
			lines = append(lines, badge)
		}
	}
	lines = append(lines, titleLine)

	var meta []string
	if year := format.FormatReleaseYear(m.ReleaseYear); year != "" {
		meta = append(meta, t.Render("year", year))
	}
	for _, g := range m.GenreList(cc.MaxGenres) {
		meta = append(meta, t.Render("genre", g))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, t.Render("muted", " · ")))
	}

	if overview := strings.TrimSpace(m.Overview); overview != "" {
		text := format.Truncate(overview, cc.OverviewLength)
		lines = append(lines, "", t.Render("overview", wrap.String(wordwrap.String(text, inner), inner)))
	}
	return lines
}

func renderCard(t *Theme, m recommend.Movie, cc config.CardConfig, width, height int, selected bool) string {
	inner := width - 4
	content := lipgloss.JoinVertical(lipgloss.Left, cardLines(t, m, cc, inner)...)
	return t.Style(format.Cn("card", map[string]bool{"card--selected": selected})).
		Width(width - 2).
		Height(height).
		Render(content)
}

// gridRows renders movies as rows of cards. Cards in one row share a
// height.
func gridRows(t *Theme, movies []recommend.Movie, cc config.CardConfig, width, selected int) []string {
	cols := gridColumns(width)
	cw := cardWidth(width, cols)

	var rows []string
	for start := 0; start < len(movies); start += cols {
		end := start + cols
		if end > len(movies) {
			end = len(movies)
		}
		height := 0
		for _, m := range movies[start:end] {
			h := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, cardLines(t, m, cc, cw-4)...))
			if h > height {
				height = h
			}
		}
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, renderCard(t, movies[i], cc, cw, height, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return rows
}

// visibleRows keeps the rows that fit in height and include the row of the
// selected card.
func visibleRows(rows []string, selectedRow, height int) []string {
	if height <= 0 || len(rows) == 0 {
		return rows
	}
	if selectedRow < 0 {
		selectedRow = 0
	}
	if selectedRow >= len(rows) {
		selectedRow = len(rows) - 1
	}
	start, used := selectedRow, lipgloss.Height(rows[selectedRow])
	for start > 0 && used+lipgloss.Height(rows[start-1]) <= height {
		start--
		used += lipgloss.Height(rows[start])
	}
	end := selectedRow + 1
	for end < len(rows) && used+lipgloss.Height(rows[end]) <= height {
		used += lipgloss.Height(rows[end])
		end++
	}
	return rows[start:end]
}

func renderResults(t *Theme, movies []recommend.Movie, cc config.CardConfig, width, height, selected int) string {
	header := renderHeader(t, MsgResultsHeader, MsgResultsCount(len(movies)), width)
	rows := gridRows(t, movies, cc, width, selected)
	rows = visibleRows(rows, selected/gridColumns(width), height-2)
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header, ""}, rows...)...)
}

func renderSkeleton(t *Theme, spinnerView string, width int) string {
	cols := gridColumns(width)
	cw := cardWidth(width, cols)
	bar := func(frac float64) string {
		n := int(float64(cw-4) * frac)
		if n < 1 {
			n = 1
		}
		return strings.Repeat("▒", n)
	}
	card := t.Style("skeleton").Width(cw - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		bar(1), "", bar(0.75), bar(0.5), "", bar(1), bar(0.83),
	))

	var rows []string
	for start := 0; start < skeletonCards; start += cols {
		var cards []string
		for i := start; i < start+cols && i < skeletonCards; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, card)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	status := t.Render("spinner", spinnerView) + " " + t.Render("muted", MsgSearching)
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{status, ""}, rows...)...)
}

func renderEmpty(t *Theme, width int) string {
	return t.Style("empty").Width(width).Render(lipgloss.JoinVertical(lipgloss.Center,
		"",
		"🎬",
		"",
		t.Render("header", MsgNoResults),
		t.Render("muted", MsgNoResultsHint),
		"",
	))
}

func renderError(t *Theme, message string, width int) string {
	return t.Style("error-panel").Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		t.Render("error-title", "⚠ "+MsgErrorTitle),
		t.Render("error", wrap.String(wordwrap.String(message, width-4), width-4)),
	))
}

func renderBanner(t *Theme, corrected string, width int) string {
	return t.Style("banner").Width(width - 2).Render("✔ " + MsgShowingResultsFor(corrected))
}
