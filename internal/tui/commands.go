package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/format"
	"github.com/pders01/cinematch/internal/recommend"
	"github.com/pders01/cinematch/internal/search"
	"github.com/pders01/cinematch/internal/storage"
)

type searchResultMsg struct {
	seq   int
	query string
	resp  *recommend.Response
	err   error
}

type titlesRecordedMsg struct {
	count int
	err   error
}

type darkModeSavedMsg struct {
	dark bool
	err  error
}

type detailRenderedMsg struct {
	title   string
	content string
}

type urlOpenedMsg struct {
	url string
}

type statusClearMsg struct {
	seq int
}

type errorMsg struct {
	err error
}

// fetchRecommendations runs one backend request under the configured
// timeout. The reply carries seq so a stale one can be dropped.
func (a *App) fetchRecommendations(seq int, req recommend.Request) tea.Cmd {
	rec := a.recommender
	timeout := a.config.API.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := rec.Recommend(ctx, req)
		return searchResultMsg{seq: seq, query: req.Title, resp: resp, err: err}
	}
}

type titleBatch struct {
	source storage.TitleSource
	titles []string
}

// recordTitles feeds a finished search into the suggestion corpus. The
// typed query is only kept when search.remember_queries is set.
func (a *App) recordTitles(query string, resp *recommend.Response) tea.Cmd {
	store, suggester := a.store, a.suggester
	if store == nil || resp == nil {
		return nil
	}
	var batches []titleBatch
	if a.config.Search.RememberQueries {
		batches = append(batches, titleBatch{storage.SourceQuery, []string{query}})
	}
	batches = append(batches,
		titleBatch{storage.SourceCorrected, []string{resp.CorrectedTitle}},
		titleBatch{storage.SourceRecommended, resp.Titles()},
	)
	return func() tea.Msg {
		var all []*storage.TitleEntry
		index := make(map[string]int)
		for _, b := range batches {
			entries, err := store.RecordTitles(b.source, b.titles...)
			if err != nil {
				return titlesRecordedMsg{err: wrapErr("recording titles", err)}
			}
			for _, e := range entries {
				if i, ok := index[e.ID]; ok {
					all[i] = e
					continue
				}
				index[e.ID] = len(all)
				all = append(all, e)
			}
		}
		if l, ok := suggester.(search.UpdateListener); ok {
			l.OnTitlesRecorded(all)
		}
		return titlesRecordedMsg{count: len(all)}
	}
}

func (a *App) persistDarkMode(dark bool) tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return darkModeSavedMsg{dark: dark, err: store.SetDarkMode(dark)}
	}
}

// renderDetail renders the markdown description of m with r.
func renderDetail(r *glamour.TermRenderer, m recommend.Movie, imageSize string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return detailRenderedMsg{title: m.Title, content: detailMarkdown(m, imageSize)}
		}
		rendered, err := r.Render(detailMarkdown(m, imageSize))
		if err != nil {
			return detailRenderedMsg{
				title:   m.Title,
				content: fmt.Sprintf("# Error\n\nFailed to render details: %s\n\nPress Escape to go back.", err.Error()),
			}
		}
		return detailRenderedMsg{title: m.Title, content: rendered}
	}
}

func detailMarkdown(m recommend.Movie, imageSize string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Title)

	var meta []string
	if m.HasRating() {
		meta = append(meta, fmt.Sprintf("**★ %.1f**", m.VoteAverage))
	}
	if year := format.FormatReleaseYear(m.ReleaseYear); year != "" {
		meta = append(meta, year)
	}
	if genres := m.GenreList(0); len(genres) > 0 {
		meta = append(meta, "*"+strings.Join(genres, ", ")+"*")
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")
	}

	if m.PosterPath != "" {
		fmt.Fprintf(&b, "[Poster](%s)\n\n", format.ImageURL(m.PosterPath, imageSize))
	}

	b.WriteString("---\n\n")
	if overview := strings.TrimSpace(m.Overview); overview != "" {
		b.WriteString(overview)
	} else {
		b.WriteString("*No overview available.*")
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) openURL(url string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: fmt.Errorf("no opener configured for %s", url)}
		}
		if err := opener.Open(url); err != nil {
			return errorMsg{err: wrapErr("failed to open "+url, err)}
		}
		return urlOpenedMsg{url: url}
	}
}

// clearStatusAfter clears the status line after d unless a newer status
// replaced it.
func clearStatusAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func logSearchFailure(query string, err error) {
	debuglog.WithFields(map[string]any{"query": query}).Warnf("search failed: %v", err)
}
