// Package search provides type-ahead title suggestions for the search
// panel, backed by the suggestion corpus in storage.
package search

import "github.com/pders01/cinematch/internal/storage"

// Suggestion is a corpus title that matches what the user has typed.
type Suggestion struct {
	Title string
	Count int
	Score float64
}

// Suggester defines the minimal suggestion API used by the TUI.
type Suggester interface {
	Suggest(query string, limit int) ([]*Suggestion, error)
}

// UpdateListener can be implemented by engines that keep their own copy of
// the corpus and want to hear about newly recorded titles.
type UpdateListener interface {
	OnTitlesRecorded(entries []*storage.TitleEntry)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Closer is implemented by engines holding on-disk resources.
type Closer interface {
	Close() error
}
