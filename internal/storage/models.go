package storage

import (
	"strings"
	"time"
)

// TitleSource records where a title in the suggestion corpus came from.
type TitleSource string

const (
	SourceQuery       TitleSource = "query"
	SourceCorrected   TitleSource = "corrected"
	SourceRecommended TitleSource = "recommended"
)

// TitleEntry is one movie title known to the suggestion corpus. It holds no
// recommendation data; it only helps the user type.
type TitleEntry struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Source    TitleSource `json:"source"`
	Count     int         `json:"count"`
	FirstSeen time.Time   `json:"first_seen"`
	LastSeen  time.Time   `json:"last_seen"`
}

// TitleID is the corpus key for a title: lowercased with runs of
// whitespace collapsed, so "the  Matrix" and "The Matrix" are one entry.
func TitleID(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
