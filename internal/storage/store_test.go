package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_InvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestStore_SchemaVersion(t *testing.T) {
	store := setupTestStore(t)
	v, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)
}

func TestStore_DarkMode(t *testing.T) {
	store := setupTestStore(t)

	enabled, err := store.GetDarkMode()
	require.NoError(t, err)
	assert.False(t, enabled, "unset preference defaults to light mode")

	require.NoError(t, store.SetDarkMode(true))
	v, found, err := store.GetPreference(KeyDarkMode)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", v)

	enabled, err = store.GetDarkMode()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, store.SetDarkMode(false))
	enabled, err = store.GetDarkMode()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestStore_DarkModeUnrecognisedValue(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SetPreference(KeyDarkMode, "yes"))

	enabled, err := store.GetDarkMode()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestStore_DarkModePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefs.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SetDarkMode(true))
	require.NoError(t, store.Close())

	store, err = NewStoreWithTimeout(dbPath, 2*time.Second)
	require.NoError(t, err)
	defer store.Close()

	enabled, err := store.GetDarkMode()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, dbPath, store.Path())
}

func TestStore_RecordTitles(t *testing.T) {
	store := setupTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	touched, err := store.RecordTitles(SourceQuery, "inception", "  ", "the  matrix", "Inception")
	require.NoError(t, err)
	require.Len(t, touched, 2)
	assert.Equal(t, "inception", touched[0].ID)
	assert.Equal(t, 2, touched[0].Count, "duplicates within one call are counted")
	assert.Equal(t, "the matrix", touched[1].Title, "whitespace collapsed")

	later := fixed.Add(time.Hour)
	store.now = func() time.Time { return later }

	touched, err = store.RecordTitles(SourceCorrected, "Inception")
	require.NoError(t, err)
	require.Len(t, touched, 1)
	assert.Equal(t, "Inception", touched[0].Title, "backend spelling wins")
	assert.Equal(t, SourceCorrected, touched[0].Source)
	assert.Equal(t, 3, touched[0].Count)
	assert.True(t, touched[0].FirstSeen.Equal(fixed))
	assert.True(t, touched[0].LastSeen.Equal(later))

	// a later user query does not overwrite the backend spelling
	_, err = store.RecordTitles(SourceQuery, "INCEPTION")
	require.NoError(t, err)
	entry, err := store.GetTitle("inception")
	require.NoError(t, err)
	assert.Equal(t, "Inception", entry.Title)
	assert.Equal(t, 4, entry.Count)
}

func TestStore_GetAllTitlesOrdering(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.RecordTitles(SourceRecommended, "Heat", "Alien", "Ronin")
	require.NoError(t, err)
	_, err = store.RecordTitles(SourceRecommended, "Ronin", "Ronin", "Alien")
	require.NoError(t, err)

	entries, err := store.GetAllTitles()
	require.NoError(t, err)
	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Ronin", "Alien", "Heat"}, titles)
}

func TestStore_DeleteAndClearTitles(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.RecordTitles(SourceRecommended, "Heat", "Alien")
	require.NoError(t, err)

	require.NoError(t, store.DeleteTitle("HEAT"))
	_, err = store.GetTitle("Heat")
	assert.Error(t, err)

	require.NoError(t, store.ClearTitles())
	entries, err := store.GetAllTitles()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// corpus still writable after clearing
	_, err = store.RecordTitles(SourceQuery, "Up")
	require.NoError(t, err)
}

func TestTitleID(t *testing.T) {
	assert.Equal(t, "the dark knight", TitleID("  The   Dark\tKnight "))
	assert.Equal(t, "", TitleID("   "))
}
