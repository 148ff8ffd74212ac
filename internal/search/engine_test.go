package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cinematch/internal/storage"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	seed := map[string]int{
		"The Matrix":            3,
		"The Matrix Reloaded":   1,
		"The Dark Knight":       5,
		"The Dark Knight Rises": 1,
		"Inception":             2,
		"Interstellar":          1,
		"Heat":                  1,
	}
	for title, n := range seed {
		for i := 0; i < n; i++ {
			_, err := store.RecordTitles(storage.SourceRecommended, title)
			require.NoError(t, err)
		}
	}
	return store
}

func titlesOf(results []*Suggestion) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestEngine_Suggest(t *testing.T) {
	engine, err := NewEngine(setupTestStore(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"multi-term prefix", "the ma", 5, []string{"The Matrix", "The Matrix Reloaded"}},
		{"single prefix", "in", 5, []string{"Inception", "Interstellar"}},
		{"whole word ranks shorter titles first", "knight", 5, []string{"The Dark Knight", "The Dark Knight Rises"}},
		{"case insensitive", "INTER", 5, []string{"Interstellar"}},
		{"limit", "the", 2, []string{"The Matrix", "The Dark Knight"}},
		{"typed title excluded", "heat", 5, []string{}},
		{"too short", "h", 5, []string{}},
		{"no match", "zz", 5, []string{}},
		{"zero limit", "the", 0, []string{}},
		{"all terms required", "matrix knight", 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.Suggest(tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titlesOf(results))
		})
	}
}

func TestEngine_OnTitlesRecorded(t *testing.T) {
	engine, err := NewEngine(nil)
	require.NoError(t, err)

	n, _ := engine.DocCount()
	assert.Equal(t, 0, n)

	engine.OnTitlesRecorded([]*storage.TitleEntry{
		{ID: "pulp fiction", Title: "Pulp Fiction", Count: 1},
		nil,
		{ID: "", Title: "ignored"},
	})
	n, _ = engine.DocCount()
	assert.Equal(t, 1, n)

	results, err := engine.Suggest("pul", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pulp Fiction"}, titlesOf(results))

	// updating an entry replaces it
	engine.OnTitlesRecorded([]*storage.TitleEntry{{ID: "pulp fiction", Title: "Pulp Fiction", Count: 9}})
	results, err = engine.Suggest("pul", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].Count)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"2001", "a", "space", "odyssey"}, tokenize("2001: A Space Odyssey"))
	assert.Equal(t, []string{"amélie"}, tokenize("Amélie!"))
	assert.Empty(t, tokenize(" -- "))
}

func TestScoreTitle(t *testing.T) {
	assert.Zero(t, scoreTitle("Heat", "x", []string{"x"}))
	assert.Zero(t, scoreTitle("", "x", []string{"x"}))
	exact := scoreTitle("The Matrix", "matrix", []string{"matrix"})
	prefix := scoreTitle("The Matrix", "mat", []string{"mat"})
	assert.Greater(t, exact, prefix)
}

func TestOpen(t *testing.T) {
	store := setupTestStore(t)

	s, err := Open(store, "")
	require.NoError(t, err)
	assert.IsType(t, &Engine{}, s)

	s, err = Open(store, filepath.Join(t.TempDir(), "index.bleve"))
	require.NoError(t, err)
	be, ok := s.(*BleveEngine)
	require.True(t, ok)
	defer be.Close()
	n, err := be.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
