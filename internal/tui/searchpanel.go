package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cinematch/internal/format"
	"github.com/pders01/cinematch/internal/search"
)

// SearchHandlers receives every edit the search panel makes. The panel
// never owns the title or threshold; it forwards changes upward.
type SearchHandlers interface {
	SetTitle(title string)
	SetThreshold(value float64)
	SubmitSearch() tea.Cmd
}

// PanelProps is the state the panel renders from.
type PanelProps struct {
	Title     string
	Threshold Threshold
	Loading   bool
	// Spinner is the rendered spinner frame shown while loading.
	Spinner string
}

// PanelRow is a focusable row of the search panel, top to bottom.
type PanelRow int

const (
	RowTitle PanelRow = iota
	RowThreshold
	RowSubmit
	RowSamples
)

const titlePlaceholder = "e.g., The Godfather, Inception, Pulp Fiction..."

type SearchPanel struct {
	handlers SearchHandlers
	input    textinput.Model
	samples  []string

	active bool
	row    PanelRow
	sample int

	suggestions []*search.Suggestion
	// suggestion is the highlighted suggestion, -1 for none.
	suggestion int

	nextKey string
	prevKey string
}

// NewSearchPanel builds a panel with the title row focused. modifierKey is
// the configured modifier with its trailing "+", e.g. "ctrl+".
func NewSearchPanel(handlers SearchHandlers, samples []string, modifierKey string) *SearchPanel {
	ti := textinput.New()
	ti.Placeholder = titlePlaceholder
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.Focus()

	return &SearchPanel{
		handlers:   handlers,
		input:      ti,
		samples:    samples,
		active:     true,
		suggestion: -1,
		nextKey:    modifierKey + "n",
		prevKey:    modifierKey + "p",
	}
}

// CanSubmit reports whether the submit control is enabled.
func CanSubmit(props PanelProps) bool {
	return !props.Loading && strings.TrimSpace(props.Title) != ""
}

func (p *SearchPanel) Row() PanelRow { return p.row }

// Editing reports whether keystrokes go to the title input.
func (p *SearchPanel) Editing() bool {
	return p.active && p.row == RowTitle && p.input.Focused()
}

// Focus moves focus to row and returns the cursor blink command when the
// title input gains focus.
func (p *SearchPanel) Focus(row PanelRow) tea.Cmd {
	p.active = true
	p.row = row
	if row == RowTitle {
		return p.input.Focus()
	}
	p.input.Blur()
	return nil
}

// Blur removes focus from the whole panel.
func (p *SearchPanel) Blur() {
	p.active = false
	p.input.Blur()
	p.suggestion = -1
}

// Focused reports whether any panel row has focus.
func (p *SearchPanel) Focused() bool {
	return p.active
}

// SyncTitle makes the input show title without moving the cursor when the
// value is already current.
func (p *SearchPanel) SyncTitle(title string) {
	if p.input.Value() != title {
		p.input.SetValue(title)
		p.input.CursorEnd()
	}
}

func (p *SearchPanel) SetWidth(w int) {
	p.input.Width = w
}

// SetSuggestions replaces the suggestion list and clears the highlight.
func (p *SearchPanel) SetSuggestions(s []*search.Suggestion) {
	p.suggestions = s
	p.suggestion = -1
}

func (p *SearchPanel) Suggestions() []*search.Suggestion { return p.suggestions }

// HighlightedSuggestion returns the highlighted title, if any.
func (p *SearchPanel) HighlightedSuggestion() (string, bool) {
	if p.suggestion < 0 || p.suggestion >= len(p.suggestions) {
		return "", false
	}
	return p.suggestions[p.suggestion].Title, true
}

func (p *SearchPanel) SelectedSample() int { return p.sample }

// HandleKey applies a key to the focused row. It reports false when the key
// leaves the panel, so the caller can move focus elsewhere.
func (p *SearchPanel) HandleKey(msg tea.KeyMsg, props PanelProps) (tea.Cmd, bool) {
	switch p.row {
	case RowTitle:
		return p.handleTitleKey(msg, props)
	case RowThreshold:
		return p.handleThresholdKey(msg, props)
	case RowSubmit:
		return p.handleSubmitKey(msg, props)
	case RowSamples:
		return p.handleSamplesKey(msg)
	}
	return nil, false
}

func (p *SearchPanel) handleTitleKey(msg tea.KeyMsg, props PanelProps) (tea.Cmd, bool) {
	switch key := msg.String(); key {
	case "enter":
		if props.Loading {
			return nil, true
		}
		return p.handlers.SubmitSearch(), true
	case p.nextKey:
		p.cycleSuggestion(1)
		return nil, true
	case p.prevKey:
		p.cycleSuggestion(-1)
		return nil, true
	case "tab":
		if title, ok := p.HighlightedSuggestion(); ok {
			p.handlers.SetTitle(title)
			p.suggestion = -1
			return nil, true
		}
		return p.Focus(RowThreshold), true
	case "down":
		return p.Focus(RowThreshold), true
	case "up":
		return nil, true
	case "shift+tab":
		return nil, false
	case "esc":
		if p.suggestion >= 0 {
			p.suggestion = -1
			return nil, true
		}
		return nil, false
	}

	p.SyncTitle(props.Title)
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if v := p.input.Value(); v != props.Title {
		p.handlers.SetTitle(v)
	}
	return cmd, true
}

func (p *SearchPanel) cycleSuggestion(delta int) {
	n := len(p.suggestions)
	if n == 0 {
		p.suggestion = -1
		return
	}
	if p.suggestion < 0 {
		if delta > 0 {
			p.suggestion = 0
		} else {
			p.suggestion = n - 1
		}
		return
	}
	p.suggestion = ((p.suggestion+delta)%n + n) % n
}

func (p *SearchPanel) handleThresholdKey(msg tea.KeyMsg, props PanelProps) (tea.Cmd, bool) {
	switch msg.String() {
	case "left", "h", "-":
		p.handlers.SetThreshold(props.Threshold.Step(-1).Float())
	case "right", "l", "+", "=":
		p.handlers.SetThreshold(props.Threshold.Step(1).Float())
	case "home":
		p.handlers.SetThreshold(MinThreshold.Float())
	case "end":
		p.handlers.SetThreshold(MaxThreshold.Float())
	case "up", "shift+tab":
		return p.Focus(RowTitle), true
	case "down", "tab":
		return p.Focus(RowSubmit), true
	}
	return nil, true
}

func (p *SearchPanel) handleSubmitKey(msg tea.KeyMsg, props PanelProps) (tea.Cmd, bool) {
	switch msg.String() {
	case "enter", " ":
		if !CanSubmit(props) {
			return nil, true
		}
		return p.handlers.SubmitSearch(), true
	case "up", "shift+tab":
		return p.Focus(RowThreshold), true
	case "down", "tab":
		if len(p.samples) == 0 {
			return nil, false
		}
		return p.Focus(RowSamples), true
	}
	return nil, true
}

func (p *SearchPanel) handleSamplesKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "left", "h":
		if p.sample > 0 {
			p.sample--
		}
	case "right", "l":
		if p.sample < len(p.samples)-1 {
			p.sample++
		}
	case "enter", " ":
		if p.sample < len(p.samples) {
			p.handlers.SetTitle(p.samples[p.sample])
		}
		return p.Focus(RowTitle), true
	case "up", "shift+tab":
		return p.Focus(RowSubmit), true
	case "down", "tab":
		return nil, false
	}
	return nil, true
}

// View renders the panel at the given outer width.
func (p *SearchPanel) View(props PanelProps, t *Theme, width int) string {
	inner := width - 4
	if inner < 16 {
		inner = 16
	}
	focused := p.Focused()

	rows := []string{
		t.Render("section-title", "✦ Discover Movies"),
		t.Render("muted", truncateEnd("Enter a movie you love and find similar recommendations", inner)),
		"",
		p.label(t, "Movie Title", RowTitle, focused),
		renderInputFrame(t, p.input.View(), p.Editing(), inner-2),
	}
	rows = append(rows, p.suggestionLines(t, inner)...)

	value := t.Render("slider-value", props.Threshold.String())
	label := p.label(t, "Similarity Threshold", RowThreshold, focused)
	gap := inner - lipgloss.Width(label) - lipgloss.Width(value)
	if gap < 1 {
		gap = 1
	}
	rows = append(rows,
		"",
		label+strings.Repeat(" ", gap)+value,
		renderSlider(t, props.Threshold, inner, focused && p.row == RowThreshold),
		spread(t.Render("muted", "More Flexible"), t.Render("muted", "More Strict"), inner),
		"",
	)

	buttonLabel := MsgSubmitIdle
	if props.Loading {
		buttonLabel = strings.TrimSpace(props.Spinner + " " + MsgSearching)
	}
	rows = append(rows, renderButton(t, buttonLabel, focused && p.row == RowSubmit, !CanSubmit(props)))

	if len(p.samples) > 0 {
		rows = append(rows, "", p.label(t, "Try these popular movies:", RowSamples, focused))
		rows = append(rows, p.sampleLines(t, inner)...)
	}

	return t.Style("panel").Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (p *SearchPanel) label(t *Theme, text string, row PanelRow, focused bool) string {
	if focused && p.row == row {
		return t.Render("label bold", "› "+text)
	}
	return t.Render("label", "  "+text)
}

func (p *SearchPanel) suggestionLines(t *Theme, width int) []string {
	if len(p.suggestions) == 0 || !p.Editing() {
		return nil
	}
	lines := make([]string, 0, len(p.suggestions))
	for i, s := range p.suggestions {
		active := i == p.suggestion
		marker := "  "
		if active {
			marker = "↳ "
		}
		lines = append(lines, t.Render(
			format.Cn("suggestion", map[string]bool{"suggestion--active": active}),
			truncateEnd(marker+s.Title, width),
		))
	}
	return lines
}

func (p *SearchPanel) sampleLines(t *Theme, width int) []string {
	var lines []string
	var line string
	for i, s := range p.samples {
		chip := t.Render(format.Cn("chip", map[string]bool{
			"chip--focused": p.row == RowSamples && i == p.sample,
		}), s)
		switch {
		case line == "":
			line = chip
		case lipgloss.Width(line)+1+lipgloss.Width(chip) > width:
			lines = append(lines, line)
			line = chip
		default:
			line += " " + chip
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// renderSlider draws a track with a knob at the threshold position.
func renderSlider(t *Theme, th Threshold, width int, focused bool) string {
	if width < 3 {
		width = 3
	}
	pos := int(th-MinThreshold) * (width - 1) / int(MaxThreshold-MinThreshold)
	track := strings.Repeat("━", pos) + "●" + strings.Repeat("─", width-1-pos)
	return t.Render(format.Cn("slider", map[string]bool{"slider--focused": focused}), track)
}

func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
