package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/cinematch/internal/storage"
)

// minQueryRunes is the shortest input that produces suggestions.
const minQueryRunes = 2

// Engine scores the corpus in memory. It is the fallback when no bleve
// index is available.
type Engine struct {
	mu      sync.RWMutex
	entries map[string]*storage.TitleEntry
}

// NewEngine loads the corpus from store. A nil store gives an empty engine.
func NewEngine(store *storage.Store) (*Engine, error) {
	e := &Engine{entries: make(map[string]*storage.TitleEntry)}
	if store == nil {
		return e, nil
	}
	entries, err := store.GetAllTitles()
	if err != nil {
		return nil, err
	}
	e.OnTitlesRecorded(entries)
	return e, nil
}

// OnTitlesRecorded merges new or updated entries into the corpus.
func (e *Engine) OnTitlesRecorded(entries []*storage.TitleEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		cp := *entry
		e.entries[entry.ID] = &cp
	}
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries), nil
}

// Suggest returns corpus titles in which every query term is a word or a
// word prefix, best first. The title the user already typed is left out.
func (e *Engine) Suggest(query string, limit int) ([]*Suggestion, error) {
	if !suggestable(query) || limit <= 0 {
		return []*Suggestion{}, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Suggestion{}, nil
	}
	queryID := storage.TitleID(query)

	e.mu.RLock()
	var results []*Suggestion
	for id, entry := range e.entries {
		if id == queryID {
			continue
		}
		if score := scoreTitle(entry.Title, queryID, terms); score > 0 {
			score *= 1.0 + 0.1*math.Log1p(float64(entry.Count))
			results = append(results, &Suggestion{Title: entry.Title, Count: entry.Count, Score: score})
		}
	}
	e.mu.RUnlock()

	sortSuggestions(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func suggestable(query string) bool {
	return len([]rune(strings.TrimSpace(query))) >= minQueryRunes
}

func sortSuggestions(results []*Suggestion) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
	})
}

// scoreTitle returns 0 unless every term matches some word of the title.
// Whole-word matches outrank prefix matches and a title that starts with
// the full query gets a bonus.
func scoreTitle(title, queryID string, terms []string) float64 {
	words := tokenize(title)
	if len(words) == 0 {
		return 0
	}

	var score float64
	for _, term := range terms {
		best := 0.0
		for _, word := range words {
			switch {
			case word == term:
				best = math.Max(best, 2.0)
			case strings.HasPrefix(word, term):
				best = math.Max(best, 1.0)
			}
		}
		if best == 0 {
			return 0
		}
		score += best
	}

	if strings.HasPrefix(storage.TitleID(title), queryID) {
		score += 3.0
	}

	// shorter titles are closer to what was typed
	coverage := float64(len(terms)) / float64(len(words))
	return score * (1.0 + math.Log(1.0+coverage))
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single characters are kept so a partly typed word still
// narrows the results.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			terms = append(terms, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		terms = append(terms, current.String())
	}

	return terms
}
