package tui

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/media"
	"github.com/pders01/cinematch/internal/recommend"
	"github.com/pders01/cinematch/internal/splash"
	"github.com/pders01/cinematch/internal/storage"
)

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (f *fakeOpener) Open(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, url)
	return f.err
}

type backend struct {
	hits atomic.Int32
	mu   sync.Mutex
	last map[string]any
}

func newBackend(t *testing.T, status int, body string) (*backend, string) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(data, &payload)
		b.mu.Lock()
		b.last = payload
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestApp(t *testing.T, baseURL string, store *storage.Store) (*App, *fakeOpener) {
	t.Helper()
	cfg := config.TestConfig()
	cfg.API.BaseURL = baseURL

	app, err := NewApp(store, cfg)
	require.NoError(t, err)
	opener := &fakeOpener{}
	app.opener = opener
	app.statusTTL = time.Millisecond
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	t.Cleanup(func() { _ = app.Close() })
	return app, opener
}

// runCmd executes cmd and any batch it expands to, returning the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// runSearch types title, submits it and applies the backend reply.
func runSearch(t *testing.T, app *App, title string) {
	t.Helper()
	app.SetTitle(title)
	cmd := app.SubmitSearch()
	require.NotNil(t, cmd)
	assert.True(t, app.State().Loading)

	var delivered bool
	for _, msg := range runCmd(cmd) {
		if res, ok := msg.(searchResultMsg); ok {
			app.Update(res)
			delivered = true
		}
	}
	require.True(t, delivered, "search produced no reply")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func titles(movies []recommend.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestSearch_InceptionScenario(t *testing.T) {
	be, url := newBackend(t, http.StatusOK, `{"recommended":["Interstellar","Tenet"],"corrected_title":"Inception"}`)
	app, _ := newTestApp(t, url, nil)

	runSearch(t, app, "inception")

	st := app.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, []string{"Interstellar", "Tenet"}, titles(st.Results))
	assert.Equal(t, "Inception", st.CorrectedTitle)
	assert.True(t, ShowBanner(st))
	assert.Equal(t, RegionResults, SelectRegion(st))

	be.mu.Lock()
	assert.Equal(t, "inception", be.last["title"])
	assert.InDelta(t, 0.6, be.last["similarity_threshold"], 1e-9)
	be.mu.Unlock()

	view := app.View()
	assert.Contains(t, view, "Showing results for: Inception")
	assert.Contains(t, view, "Interstellar")
	assert.Contains(t, view, "Tenet")
	assert.Contains(t, view, "2 recommendations")
}

func TestSearch_BackendDetail(t *testing.T) {
	_, url := newBackend(t, http.StatusServiceUnavailable, `{"detail":"model unavailable"}`)
	app, _ := newTestApp(t, url, nil)

	runSearch(t, app, "Heat")

	st := app.State()
	assert.Equal(t, "model unavailable", st.Err)
	assert.Empty(t, st.Results)
	assert.False(t, st.Loading)
	assert.False(t, ShowBanner(st))
	assert.Equal(t, RegionError, SelectRegion(st))

	view := app.View()
	assert.Contains(t, view, "Something went wrong")
	assert.Contains(t, view, "model unavailable")
}

func TestSearch_EmptyList(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":[],"corrected_title":""}`)
	app, _ := newTestApp(t, url, nil)

	runSearch(t, app, "Obscure Film")

	st := app.State()
	assert.Empty(t, st.Err)
	assert.Empty(t, st.Results)
	assert.Equal(t, RegionEmpty, SelectRegion(st))
	assert.Contains(t, app.View(), "No recommendations found")
	assert.NotContains(t, app.View(), "Something went wrong")
}

func TestSearch_FallbackMessage(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:1", nil)
	app.SetTitle("Heat")
	require.NotNil(t, app.SubmitSearch())

	app.Update(searchResultMsg{seq: app.seq, query: "Heat", err: errors.New("connection refused")})
	assert.Equal(t, recommend.FallbackMessage, app.State().Err)
	assert.False(t, app.State().Loading)
}

func TestSubmitSearch_Gating(t *testing.T) {
	be, url := newBackend(t, http.StatusOK, `{"recommended":[]}`)
	app, _ := newTestApp(t, url, nil)

	for _, title := range []string{"", "   ", "\t\n"} {
		app.SetTitle(title)
		before := app.State()
		assert.Nil(t, app.SubmitSearch(), "title %q", title)
		assert.Equal(t, before, app.State(), "title %q", title)
	}
	assert.Zero(t, be.hits.Load())
}

func TestSubmitSearch_DisabledWhileLoading(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Heat"]}`)
	app, _ := newTestApp(t, url, nil)

	app.SetTitle("Ronin")
	require.NotNil(t, app.SubmitSearch())
	seq := app.seq
	assert.Nil(t, app.SubmitSearch())
	assert.Equal(t, seq, app.seq)
}

func TestSearch_StaleReplyDropped(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:1", nil)
	app.SetTitle("Heat")
	require.NotNil(t, app.SubmitSearch())

	stale := &recommend.Response{Recommended: []recommend.Movie{{Title: "Old"}}}
	app.Update(searchResultMsg{seq: app.seq - 1, query: "Heat", resp: stale})
	assert.True(t, app.State().Loading)
	assert.Empty(t, app.State().Results)

	fresh := &recommend.Response{Recommended: []recommend.Movie{{Title: "Ronin"}}}
	app.Update(searchResultMsg{seq: app.seq, query: "Heat", resp: fresh})
	assert.False(t, app.State().Loading)
	assert.Equal(t, []string{"Ronin"}, titles(app.State().Results))
}

func TestSearch_ResultsReplacedWholesale(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Interstellar","Tenet"],"corrected_title":"Inception"}`)
	app, _ := newTestApp(t, url, nil)
	runSearch(t, app, "inception")

	app.SetTitle("heat")
	require.NotNil(t, app.SubmitSearch())
	st := app.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Results)
	assert.Empty(t, st.CorrectedTitle)
	assert.Empty(t, st.Err)
	assert.Equal(t, RegionSkeleton, SelectRegion(st))
}

func TestSelectRegion(t *testing.T) {
	results := []recommend.Movie{{Title: "Heat"}}
	tests := []struct {
		name  string
		state State
		want  Region
	}{
		{"splash first", State{Loading: true, Err: "x"}, RegionSplash},
		{"loading wins", State{SplashDone: true, Loading: true, Err: "x", Results: results}, RegionSkeleton},
		{"error", State{SplashDone: true, Err: "boom", Results: results}, RegionError},
		{"results", State{SplashDone: true, Results: results}, RegionResults},
		{"empty after search", State{SplashDone: true, Searched: true, Query: "Heat"}, RegionEmpty},
		{"no search yet", State{SplashDone: true, Query: "Heat"}, RegionIdle},
		{"title cleared", State{SplashDone: true, Searched: true, Query: "  "}, RegionIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRegion(tt.state))
		})
	}
}

func TestShowBanner(t *testing.T) {
	assert.True(t, ShowBanner(State{SplashDone: true, CorrectedTitle: "Heat"}))
	assert.False(t, ShowBanner(State{SplashDone: true}))
	assert.False(t, ShowBanner(State{SplashDone: true, CorrectedTitle: "Heat", Loading: true}))
	assert.False(t, ShowBanner(State{SplashDone: true, CorrectedTitle: "Heat", Err: "x"}))
	assert.False(t, ShowBanner(State{CorrectedTitle: "Heat"}))
}

func TestToggleDarkMode_Persists(t *testing.T) {
	store := newTestStore(t)
	app, _ := newTestApp(t, "http://127.0.0.1:1", store)
	require.False(t, app.State().DarkMode)
	require.False(t, app.theme.Dark)

	for _, msg := range runCmd(app.ToggleDarkMode()) {
		app.Update(msg)
	}
	assert.True(t, app.State().DarkMode)
	assert.True(t, app.theme.Dark)

	dark, err := store.GetDarkMode()
	require.NoError(t, err)
	assert.True(t, dark)

	reopened, _ := newTestApp(t, "http://127.0.0.1:1", store)
	assert.True(t, reopened.State().DarkMode)

	for _, msg := range runCmd(app.ToggleDarkMode()) {
		app.Update(msg)
	}
	dark, err = store.GetDarkMode()
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestToggleDarkMode_PersistFailure(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	app, _ := newTestApp(t, "http://127.0.0.1:1", store)
	require.NoError(t, store.Close())

	var saved *darkModeSavedMsg
	for _, msg := range runCmd(app.ToggleDarkMode()) {
		if m, ok := msg.(darkModeSavedMsg); ok {
			saved = &m
			app.Update(m)
		}
	}
	require.NotNil(t, saved)
	assert.Error(t, saved.err)
	assert.True(t, app.State().DarkMode, "toggle applies even when saving fails")
	assert.Equal(t, MsgPreferenceFail, app.status)
	assert.Equal(t, StatusWarn, app.statusKind)
}

func TestSplash_GatesMainScreen(t *testing.T) {
	cfg := config.TestConfig()
	cfg.UI.Splash.Enabled = true
	app, err := NewApp(nil, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.Init())
	assert.Equal(t, RegionSplash, SelectRegion(app.State()))
	assert.Contains(t, app.View(), "Your Personal Movie Companion")

	// A key during the intro skips it and is not typed.
	_, cmd := app.Update(key("x"))
	require.NotNil(t, cmd)
	assert.Empty(t, app.State().Query)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, splash.CompleteMsg{}, msgs[0])
	app.Update(msgs[0])

	assert.True(t, app.State().SplashDone)
	assert.Equal(t, RegionIdle, SelectRegion(app.State()))
	assert.True(t, app.panel.Editing())

	_, cmd = app.Update(key("y"))
	_ = cmd
	assert.Equal(t, "y", app.State().Query)
}

func TestNewApp_InvalidBaseURL(t *testing.T) {
	cfg := config.TestConfig()
	cfg.API.BaseURL = "http://exa mple.com"
	_, err := NewApp(nil, cfg)
	assert.Error(t, err)
}

// searchAndRecord runs one search for title and records its titles.
func searchAndRecord(t *testing.T, app *App, title string) titlesRecordedMsg {
	t.Helper()
	app.SetTitle(title)
	var recordCmd tea.Cmd
	for _, msg := range runCmd(app.SubmitSearch()) {
		if res, ok := msg.(searchResultMsg); ok {
			recordCmd = app.recordTitles(res.query, res.resp)
			app.Update(res)
		}
	}
	msgs := runCmd(recordCmd)
	require.Len(t, msgs, 1)
	rec := msgs[0].(titlesRecordedMsg)
	require.NoError(t, rec.err)
	return rec
}

func TestRecordTitles_FeedsSuggestions(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Interstellar","Tenet"],"corrected_title":"Inception"}`)
	store := newTestStore(t)
	app, _ := newTestApp(t, url, store)

	rec := searchAndRecord(t, app, "inseption")
	assert.Equal(t, 3, rec.count)

	entry, err := store.GetTitle("Inception")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Count)
	assert.Equal(t, storage.SourceCorrected, entry.Source)

	_, err = store.GetTitle("inseption")
	assert.Error(t, err, "typed queries are not kept by default")

	app.SetTitle("inter")
	require.NotEmpty(t, app.panel.Suggestions())
	assert.Equal(t, "Interstellar", app.panel.Suggestions()[0].Title)
}

func TestRecordTitles_RememberQueries(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Interstellar","Tenet"],"corrected_title":"Inception"}`)
	store := newTestStore(t)
	app, _ := newTestApp(t, url, store)
	app.config.Search.RememberQueries = true

	rec := searchAndRecord(t, app, "inception")
	assert.Equal(t, 3, rec.count, "query and corrected title share one entry")

	entry, err := store.GetTitle("Inception")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Count)
	assert.Equal(t, storage.SourceCorrected, entry.Source)

	searchAndRecord(t, app, "Heat")
	entry, err = store.GetTitle("heat")
	require.NoError(t, err)
	assert.Equal(t, storage.SourceQuery, entry.Source)
}

func TestOpenSelected(t *testing.T) {
	body := `{"recommended":[{"title":"Interstellar","poster_path":"/int.jpg"},{"title":"Tenet"}],"corrected_title":"Inception"}`
	_, url := newBackend(t, http.StatusOK, body)
	app, opener := newTestApp(t, url, nil)
	runSearch(t, app, "inception")

	for _, msg := range runCmd(app.keyHandler.openSelected()) {
		app.Update(msg)
	}
	app.selected = 1
	for _, msg := range runCmd(app.keyHandler.openSelected()) {
		app.Update(msg)
	}

	assert.Equal(t, []string{
		"https://image.tmdb.org/t/p/w500/int.jpg",
		media.MovieSearchURL("Tenet"),
	}, opener.opened)
}

func TestOpenSelected_Error(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Tenet"]}`)
	app, opener := newTestApp(t, url, nil)
	opener.err = errors.New("no display")
	runSearch(t, app, "inception")

	for _, msg := range runCmd(app.keyHandler.openSelected()) {
		app.Update(msg)
	}
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "no display")
}

func TestStatusBar_ReadyWhenIdle(t *testing.T) {
	_, url := newBackend(t, http.StatusOK, `{"recommended":["Interstellar","Tenet"]}`)
	app, _ := newTestApp(t, url, nil)
	assert.Contains(t, app.statusBar(), MsgReady)

	runSearch(t, app, "inception")
	app.Update(statusClearMsg{seq: app.statusSeq})
	require.Empty(t, app.status)
	assert.NotContains(t, app.statusBar(), MsgReady, "results are showing")
}
