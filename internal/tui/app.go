// Package tui is the interactive terminal client: a search panel, the
// recommendation grid with its loading, error and empty states, a detail
// reader, and the startup splash.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/format"
	"github.com/pders01/cinematch/internal/media"
	"github.com/pders01/cinematch/internal/recommend"
	"github.com/pders01/cinematch/internal/search"
	"github.com/pders01/cinematch/internal/splash"
	"github.com/pders01/cinematch/internal/storage"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// sideBySideWidth is the terminal width from which the panel sits left
	// of the results instead of above them.
	sideBySideWidth = 110
	panelWidth      = 44

	statusTTL = 4 * time.Second
)

type App struct {
	config      *config.Config
	store       *storage.Store
	recommender recommend.Recommender
	suggester   search.Suggester
	opener      media.Opener
	keyHandler  *KeyHandler
	theme       *Theme

	splash   splash.Model
	panel    *SearchPanel
	spinner  spinner.Model
	viewport viewport.Model

	state State
	view  View
	// seq identifies the newest search; replies for older ones are dropped.
	seq            int
	selected       int
	resultsFocused bool
	showHelp       bool

	status     string
	statusKind StatusKind
	statusSeq  int
	statusTTL  time.Duration

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	rendererStyle   string
	loadingDetail   bool
	detailTitle     string
}

// NewApp wires the client, suggestion engine and media launcher for cfg.
// store may be nil, in which case nothing is persisted.
func NewApp(store *storage.Store, cfg *config.Config) (*App, error) {
	client, err := recommend.NewClient(recommend.Options{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
	})
	if err != nil {
		return nil, wrapErr("creating recommendation client", err)
	}

	indexPath := cfg.Database.SearchIndex
	if store == nil {
		indexPath = ""
	}
	suggester, err := search.Open(store, indexPath)
	if err != nil {
		debuglog.Warnf("suggestions disabled: %v", err)
		suggester = nil
	}

	dark := false
	if store != nil {
		if dark, err = store.GetDarkMode(); err != nil {
			debuglog.Warnf("reading dark mode preference: %v", err)
		}
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	app := &App{
		config:      cfg,
		store:       store,
		recommender: client,
		suggester:   suggester,
		opener:      media.NewLauncher(cfg),
		theme:       NewTheme(cfg.UI, dark),
		splash: splash.New(splash.Options{
			Duration:  cfg.UI.Splash.Duration,
			Tick:      cfg.UI.Splash.Tick,
			PostDelay: cfg.UI.Splash.PostDelay,
		}),
		spinner:  sp,
		viewport: viewport.New(0, 0),
		state: State{
			Threshold:  ThresholdFromFloat(cfg.Search.DefaultThreshold),
			DarkMode:   dark,
			SplashDone: !cfg.UI.Splash.Enabled,
		},
		view:      ViewMain,
		statusTTL: statusTTL,
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	app.panel = NewSearchPanel(app, cfg.Search.SampleTitles, app.keyHandler.modifierKey)
	app.resize(defaultWidth, defaultHeight)
	if n, ok := app.indexedTitles(); ok {
		debuglog.Infof("suggestions: %d titles indexed", n)
	}
	return app, nil
}

// indexedTitles is the size of the suggestion corpus when the engine
// reports it.
func (a *App) indexedTitles() (int, bool) {
	ds, ok := a.suggester.(search.DebugStatser)
	if !ok {
		return 0, false
	}
	n, err := ds.DocCount()
	if err != nil {
		debuglog.Debugf("suggestion doc count: %v", err)
		return 0, false
	}
	return n, true
}

// State returns a copy of the interaction state.
func (a *App) State() State { return a.state }

// Close stops the splash and releases the suggestion index.
func (a *App) Close() error {
	a.splash.Stop()
	if c, ok := a.suggester.(search.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if !a.state.SplashDone {
		cmds = append(cmds, a.splash.Start())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// SetTitle replaces the query and refreshes the suggestions for it.
func (a *App) SetTitle(title string) {
	a.state.Query = title
	a.panel.SyncTitle(title)
	a.refreshSuggestions()
}

// SetThreshold stores value rounded to a tenth and clamped to [0.1, 1.0].
func (a *App) SetThreshold(value float64) {
	a.state.Threshold = ThresholdFromFloat(value)
}

// SubmitSearch starts a search for the current title. It does nothing
// while a search is loading or when the title is blank.
func (a *App) SubmitSearch() tea.Cmd {
	title := strings.TrimSpace(a.state.Query)
	if title == "" || a.state.Loading {
		return nil
	}

	a.seq++
	a.state.Loading = true
	a.state.Err = ""
	a.state.Results = nil
	a.state.CorrectedTitle = ""
	a.state.Searched = true
	a.selected = 0
	a.resultsFocused = false
	a.panel.SetSuggestions(nil)

	req := recommend.NewRequest(title, a.state.Threshold.Float())
	debuglog.Infof("search #%d: %q at %s", a.seq, req.Title, a.state.Threshold)
	return tea.Batch(
		a.setStatus(MsgSearching, StatusInfo, 0),
		a.spinner.Tick,
		a.fetchRecommendations(a.seq, req),
	)
}

// ToggleDarkMode flips the theme and persists the choice. The theme
// changes even when saving fails.
func (a *App) ToggleDarkMode() tea.Cmd {
	a.state.DarkMode = !a.state.DarkMode
	a.theme = NewTheme(a.config.UI, a.state.DarkMode)
	a.glamourRenderer = nil
	return tea.Batch(
		a.setStatus(MsgThemeSwitched(a.state.DarkMode), StatusInfo, a.statusTTL),
		a.persistDarkMode(a.state.DarkMode),
	)
}

func (a *App) refreshSuggestions() {
	limit := a.config.Search.SuggestionLimit
	if a.suggester == nil || limit <= 0 {
		a.panel.SetSuggestions(nil)
		return
	}
	suggestions, err := a.suggester.Suggest(strings.TrimSpace(a.state.Query), limit)
	if err != nil {
		debuglog.Debugf("suggest %q: %v", a.state.Query, err)
		suggestions = nil
	}
	a.panel.SetSuggestions(suggestions)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		a.splash, _ = a.splash.Update(msg)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case splash.CompleteMsg:
		a.state.SplashDone = true
		return a, a.panel.Focus(RowTitle)

	case searchResultMsg:
		return a, a.applySearchResult(msg)

	case titlesRecordedMsg:
		if msg.err != nil {
			debuglog.Warnf("%v", msg.err)
			return a, nil
		}
		debuglog.Debugf("recorded %d titles", msg.count)
		return a, nil

	case darkModeSavedMsg:
		if msg.err != nil {
			debuglog.Errorf("saving dark mode: %v", msg.err)
			return a, a.setStatus(MsgPreferenceFail, StatusWarn, a.statusTTL)
		}
		return a, nil

	case detailRenderedMsg:
		if a.view == ViewDetail && msg.title == a.detailTitle {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingDetail = false
		}
		return a, nil

	case urlOpenedMsg:
		return a, a.setStatus("Opened "+truncateMiddle(msg.url, 60), StatusSuccess, a.statusTTL)

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case errorMsg:
		debuglog.Errorf("%v", msg.err)
		return a, a.setStatus(msg.err.Error(), StatusError, a.statusTTL)

	case spinner.TickMsg:
		if !a.state.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if !a.state.SplashDone {
		var cmd tea.Cmd
		a.splash, cmd = a.splash.Update(msg)
		return a, cmd
	}
	return a, nil
}

// applySearchResult stores a reply unless a newer search superseded it.
func (a *App) applySearchResult(msg searchResultMsg) tea.Cmd {
	if msg.seq != a.seq {
		debuglog.Debugf("dropping stale reply for search #%d", msg.seq)
		return nil
	}
	a.state.Loading = false

	if msg.err != nil {
		logSearchFailure(msg.query, msg.err)
		a.state.Err = recommend.ErrorMessage(msg.err)
		return a.setStatus(MsgErrorTitle, StatusError, a.statusTTL)
	}

	a.state.Results = msg.resp.Recommended
	a.state.CorrectedTitle = strings.TrimSpace(msg.resp.CorrectedTitle)
	a.selected = 0

	status := a.setStatus(MsgResultsCount(len(a.state.Results)), StatusSuccess, a.statusTTL)
	if len(a.state.Results) == 0 {
		status = a.setStatus(MsgNoResults, StatusInfo, a.statusTTL)
	}
	return tea.Batch(status, a.recordTitles(msg.query, msg.resp))
}

// setStatus shows text in the status line. A positive ttl clears it again.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	return clearStatusAfter(a.statusSeq, ttl)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.viewport.Width = width
	a.viewport.Height = height - 2

	pw := width
	if width >= sideBySideWidth {
		pw = panelWidth
	}
	a.panel.SetWidth(pw - 10)
}

// selectedMovie returns the card under the cursor when results show.
func (a *App) selectedMovie() (recommend.Movie, bool) {
	if SelectRegion(a.state) != RegionResults || a.selected < 0 || a.selected >= len(a.state.Results) {
		return recommend.Movie{}, false
	}
	return a.state.Results[a.selected], true
}

// moveSelection moves the card cursor by dx columns and dy rows.
func (a *App) moveSelection(dx, dy int) {
	n := len(a.state.Results)
	if n == 0 {
		return
	}
	cols := gridColumns(a.resultsWidth())
	next := a.selected + dx + dy*cols
	if next < 0 || next >= n {
		return
	}
	a.selected = next
}

// posterURL is the poster for m, or its TMDB search page when it has none.
func (a *App) posterURL(m recommend.Movie) string {
	if m.PosterPath == "" {
		return media.MovieSearchURL(m.Title)
	}
	return format.ImageURL(m.PosterPath, a.config.UI.Card.ImageSize)
}

func (a *App) openDetail() tea.Cmd {
	m, ok := a.selectedMovie()
	if !ok {
		return nil
	}
	a.view = ViewDetail
	a.loadingDetail = true
	a.detailTitle = m.Title
	r, err := a.getRenderer()
	if err != nil {
		debuglog.Warnf("glamour renderer: %v", err)
		r = nil
	}
	return renderDetail(r, m, a.config.UI.Card.ImageSize)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	style := a.theme.GlamourStyle()
	if a.glamourRenderer == nil || a.rendererStyle != style || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
		a.rendererStyle = style
	}
	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) resultsWidth() int {
	if a.width >= sideBySideWidth {
		return a.width - panelWidth - 2
	}
	return a.width
}

func (a *App) View() string {
	if SelectRegion(a.state) == RegionSplash {
		return a.splash.View()
	}

	var content string
	switch a.view {
	case ViewDetail:
		if a.loadingDetail {
			content = renderCentered(a.width, a.height-2, a.theme.Render("muted", "Loading details..."))
		} else {
			content = a.viewport.View()
		}
	default:
		content = a.mainView()
	}

	separatorWidth := a.width
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	separator := a.theme.Render("separator", strings.Repeat("─", separatorWidth))
	return lipgloss.JoinVertical(lipgloss.Left, content, separator, a.statusBar())
}

func (a *App) mainView() string {
	height := a.height - 2
	header := renderHeader(a.theme, CompactLogo+"  "+a.theme.Render("tagline", Tagline), a.theme.ModeIcon(), a.width)

	props := a.panelProps()
	if a.width >= sideBySideWidth {
		panel := a.panel.View(props, a.theme, panelWidth)
		regionHeight := height - lipgloss.Height(header) - 1
		region := a.regionView(a.resultsWidth(), regionHeight)
		body := lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", region)
		return lipgloss.NewStyle().Height(height).MaxHeight(height).
			Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
	}

	panel := a.panel.View(props, a.theme, a.width)
	if a.resultsFocused {
		panel = a.panelSummary(props)
	}
	regionHeight := height - lipgloss.Height(header) - lipgloss.Height(panel) - 2
	region := a.regionView(a.width, regionHeight)
	return lipgloss.NewStyle().Height(height).MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, "", panel, "", region))
}

// panelSummary stands in for the panel on narrow screens while the grid
// has focus.
func (a *App) panelSummary(props PanelProps) string {
	line := a.theme.Render("label bold", "› "+truncateEnd(props.Title, a.width/2)) +
		a.theme.Render("muted", "  threshold "+props.Threshold.String()+"  (tab: edit)")
	return a.theme.Style("panel").Width(a.width - 2).Render(line)
}

func (a *App) panelProps() PanelProps {
	return PanelProps{
		Title:     a.state.Query,
		Threshold: a.state.Threshold,
		Loading:   a.state.Loading,
		Spinner:   a.spinner.View(),
	}
}

// regionView renders the area below or beside the panel.
func (a *App) regionView(width, height int) string {
	var parts []string
	if ShowBanner(a.state) {
		parts = append(parts, renderBanner(a.theme, a.state.CorrectedTitle, width))
		height -= 3
	}

	switch SelectRegion(a.state) {
	case RegionSkeleton:
		parts = append(parts, renderSkeleton(a.theme, a.spinner.View(), width))
	case RegionError:
		parts = append(parts, renderError(a.theme, a.state.Err, width))
	case RegionResults:
		selected := -1
		if a.resultsFocused {
			selected = a.selected
		}
		parts = append(parts, renderResults(a.theme, a.state.Results, a.config.UI.Card, width, height, selected))
	case RegionEmpty:
		parts = append(parts, renderEmpty(a.theme, width))
	default:
		parts = append(parts, renderCentered(width, 0, GetWelcomeMessage(a.theme)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) statusBar() string {
	help := strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")
	status, kind := a.status, a.statusKind
	if status == "" && a.view == ViewMain && SelectRegion(a.state) == RegionIdle {
		status, kind = MsgReady, StatusInfo
	}
	line := a.theme.Render("muted", help)
	if status != "" {
		line = a.theme.Render(kind.class(), status) + a.theme.Render("muted", "  "+help)
	}
	return a.theme.Style("status").Width(a.width).MaxHeight(1).Render(line)
}
