package recommend

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Movie is one recommended film. Only Title is guaranteed; the backend may
// omit or null every other field.
type Movie struct {
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	Genres      string  `json:"genres,omitempty"`
	ReleaseYear int     `json:"release_year,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
}

// GenreList splits Genres on ", " and keeps at most limit entries. A limit
// of zero or less keeps all of them.
func (m Movie) GenreList(limit int) []string {
	if strings.TrimSpace(m.Genres) == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(m.Genres, ", ") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		out = append(out, g)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// HasRating reports whether the card should show a rating badge.
func (m Movie) HasRating() bool { return m.VoteAverage > 0 }

type movieWire struct {
	Title       *string         `json:"title"`
	PosterPath  *string         `json:"poster_path"`
	Overview    *string         `json:"overview"`
	Genres      json.RawMessage `json:"genres"`
	ReleaseYear json.RawMessage `json:"release_year"`
	VoteAverage json.RawMessage `json:"vote_average"`
}

// UnmarshalJSON accepts either a movie object or a bare title string. Any
// other JSON value decodes to an untitled movie, which Response drops.
func (m *Movie) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*m = Movie{}
		return nil
	}
	if data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*m = Movie{Title: strings.TrimSpace(title)}
		return nil
	}
	if data[0] != '{' {
		*m = Movie{}
		return nil
	}

	var w movieWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Movie{
		Title:       strings.TrimSpace(deref(w.Title)),
		PosterPath:  deref(w.PosterPath),
		Overview:    deref(w.Overview),
		Genres:      decodeGenres(w.Genres),
		ReleaseYear: decodeYear(w.ReleaseYear),
		VoteAverage: decodeNumber(w.VoteAverage),
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodeGenres accepts "Action, Drama" or ["Action", "Drama"].
func decodeGenres(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

// decodeYear is decodeNumber limited to 1..9999; anything else is unknown.
func decodeYear(raw json.RawMessage) int {
	f := decodeNumber(raw)
	if f < 1 || f >= 10000 {
		return 0
	}
	return int(f)
}

// decodeNumber accepts a JSON number or a numeric string; anything else is 0.
func decodeNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// Request is the body of POST /recommend.
type Request struct {
	Title               string  `json:"title" validate:"required,notblank,max=500"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"gte=0.1,lte=1,tenths"`
}

// NewRequest trims the title; the backend matches on the trimmed text.
func NewRequest(title string, threshold float64) Request {
	return Request{Title: strings.TrimSpace(title), SimilarityThreshold: threshold}
}

// Response is a successful reply from the backend.
type Response struct {
	Recommended    []Movie `json:"recommended"`
	CorrectedTitle string  `json:"corrected_title"`
}

// UnmarshalJSON normalises the recommended list: bare strings become
// movies and entries without a title are dropped.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w struct {
		Recommended    []Movie `json:"recommended"`
		CorrectedTitle *string `json:"corrected_title"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	movies := make([]Movie, 0, len(w.Recommended))
	for _, m := range w.Recommended {
		if m.Title == "" {
			continue
		}
		movies = append(movies, m)
	}
	*r = Response{
		Recommended:    movies,
		CorrectedTitle: strings.TrimSpace(deref(w.CorrectedTitle)),
	}
	return nil
}

// Titles returns the titles of all recommended movies in order.
func (r *Response) Titles() []string {
	out := make([]string, len(r.Recommended))
	for i, m := range r.Recommended {
		out[i] = m.Title
	}
	return out
}
