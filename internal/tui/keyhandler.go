package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/cinematch/internal/config"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	bindings    config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, bindings: cfg.Keys.Bindings, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}

	// Any key skips the intro.
	if !kh.app.state.SplashDone {
		return kh.app, kh.app.splash.Skip()
	}

	if model, cmd, handled := kh.handleModifierKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToView(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewMain && !kh.app.resultsFocused && kh.app.panel.Editing()
}

// handleModifierKeys handles bindings that work even while typing.
func (kh *KeyHandler) handleModifierKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.modifierKey + kh.bindings.Quit:
		return kh.app, tea.Quit, true
	case kh.modifierKey + kh.bindings.ToggleDark:
		return kh.app, kh.app.ToggleDarkMode(), true
	case kh.modifierKey + kh.bindings.Open:
		return kh.app, kh.openSelected(), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, handled := kh.app.panel.HandleKey(msg, kh.app.panelProps())
	if handled {
		return kh.app, cmd
	}
	// The key leaves the title row backwards or escapes it.
	kh.focusResults()
	return kh.app, nil
}

// handleCustomKeys handles the single-key bindings available when no text
// input has focus.
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.bindings.Quit:
		return kh.app, tea.Quit, true
	case kh.bindings.ToggleDark:
		return kh.app, kh.app.ToggleDarkMode(), true
	case kh.bindings.Help:
		kh.app.showHelp = !kh.app.showHelp
		return kh.app, nil, true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	if kh.app.view == ViewMain && kh.app.resultsFocused {
		switch key {
		case kh.bindings.Open:
			return kh.app, kh.openSelected(), true
		case "/":
			return kh.app, kh.focusPanel(RowTitle), true
		}
	}
	return kh.app, nil, false
}

// delegateToView passes keys we don't intercept to the focused component.
func (kh *KeyHandler) delegateToView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		var cmd tea.Cmd
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewMain:
		if kh.app.resultsFocused {
			return kh.handleResultsKey(msg)
		}
		cmd, handled := kh.app.panel.HandleKey(msg, kh.app.panelProps())
		if !handled {
			if kh.focusResults() {
				return kh.app, nil
			}
			return kh.app, kh.focusPanel(RowTitle)
		}
		return kh.app, cmd
	}
	return kh.app, nil
}

func (kh *KeyHandler) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		kh.app.moveSelection(-1, 0)
	case "right", "l":
		kh.app.moveSelection(1, 0)
	case "up", "k":
		kh.app.moveSelection(0, -1)
	case "down", "j":
		kh.app.moveSelection(0, 1)
	case "enter":
		return kh.app, kh.app.openDetail()
	case "tab":
		return kh.app, kh.focusPanel(RowTitle)
	case "shift+tab":
		return kh.app, kh.focusPanel(RowSamples)
	}
	return kh.app, nil
}

// focusResults moves focus to the card grid. It reports false when there
// are no cards to focus.
func (kh *KeyHandler) focusResults() bool {
	if SelectRegion(kh.app.state) != RegionResults {
		return false
	}
	kh.app.panel.Blur()
	kh.app.resultsFocused = true
	return true
}

func (kh *KeyHandler) focusPanel(row PanelRow) tea.Cmd {
	kh.app.resultsFocused = false
	return kh.app.panel.Focus(row)
}

// navigateBack steps out of the detail reader, then the grid, then back to
// the title input.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewDetail {
		kh.app.view = ViewMain
		kh.app.loadingDetail = false
		return kh.app, nil
	}
	return kh.app, kh.focusPanel(RowTitle)
}

func (kh *KeyHandler) openSelected() tea.Cmd {
	m, ok := kh.app.selectedMovie()
	if !ok {
		return nil
	}
	url := kh.app.posterURL(m)
	return tea.Batch(kh.app.setStatus(MsgOpening, StatusInfo, 0), kh.app.openURL(url))
}

// GetHelpForCurrentView returns the key hints for the status line.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	mod := kh.modifierKey
	var help []string

	switch {
	case kh.app.view == ViewDetail:
		help = []string{"↑/↓: scroll", mod + kh.bindings.Open + ": open poster", kh.bindings.Back + ": back"}

	case kh.app.resultsFocused:
		help = []string{"←↑↓→: select", "enter: details", kh.bindings.Open + ": open poster", "tab: search", kh.bindings.Back + ": back"}

	case kh.app.panel.Editing():
		help = []string{"enter: search", mod + "n/" + mod + "p: suggestions", "tab: next"}
		if len(kh.app.state.Results) > 0 {
			help = append(help, "esc: results")
		}
		// Single-key bindings would be typed into the input here.
		return append(help, mod+kh.bindings.ToggleDark+": theme", "ctrl+c: quit")

	case kh.app.panel.Row() == RowThreshold:
		help = []string{"←/→: adjust", "↑/↓: move", kh.bindings.ToggleDark + ": theme"}

	case kh.app.panel.Row() == RowSamples:
		help = []string{"←/→: choose", "enter: use title", "↑: back", kh.bindings.ToggleDark + ": theme"}

	default:
		help = []string{"enter: search", "↑/↓: move", kh.bindings.ToggleDark + ": theme"}
	}

	if !kh.app.showHelp {
		if len(help) > 3 {
			help = help[:3]
		}
		return append(help, kh.bindings.Help+": more")
	}
	help = append(help, mod+kh.bindings.Quit+": quit", "ctrl+c: quit")
	if n, ok := kh.app.indexedTitles(); ok {
		help = append(help, fmt.Sprintf("%d titles indexed", n))
	}
	return help
}
