package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cinematch/internal/storage"
)

func TestBleveEngine_Suggest(t *testing.T) {
	be, err := newMemBleveEngine(setupTestStore(t))
	require.NoError(t, err)
	defer be.Close()

	results, err := be.Suggest("the ma", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Matrix", "The Matrix Reloaded"}, titlesOf(results))

	results, err = be.Suggest("knight", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Dark Knight", "The Dark Knight Rises"}, titlesOf(results))

	results, err = be.Suggest("heat", 5)
	require.NoError(t, err)
	assert.Empty(t, results, "the typed title is not suggested back")

	results, err = be.Suggest("the", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = be.Suggest("x", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBleveEngine_OnTitlesRecorded(t *testing.T) {
	be, err := newMemBleveEngine(nil)
	require.NoError(t, err)
	defer be.Close()

	n, err := be.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	be.OnTitlesRecorded([]*storage.TitleEntry{
		{ID: "pulp fiction", Title: "Pulp Fiction", Count: 2},
		{ID: "the godfather", Title: "The Godfather", Count: 1},
		nil,
	})

	n, err = be.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := be.Suggest("god", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Godfather", results[0].Title)
	assert.Equal(t, 1, results[0].Count)
}

func TestNewBleveEngine_Persists(t *testing.T) {
	store := setupTestStore(t)
	indexPath := filepath.Join(t.TempDir(), "nested", "index.bleve")

	be, err := NewBleveEngine(store, indexPath)
	require.NoError(t, err)
	be.OnTitlesRecorded([]*storage.TitleEntry{{ID: "up", Title: "Up", Count: 1}})
	require.NoError(t, be.Close())

	_, err = os.Stat(indexPath)
	require.NoError(t, err)

	be, err = NewBleveEngine(store, indexPath)
	require.NoError(t, err)
	defer be.Close()

	n, err := be.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 8, n, "seven seeded titles plus the one indexed before reopening")
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	store := setupTestStore(t)

	// a regular file where the index directory's parent should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s, err := Open(store, filepath.Join(blocker, "index.bleve"))
	require.NoError(t, err)
	assert.IsType(t, &Engine{}, s)
}
