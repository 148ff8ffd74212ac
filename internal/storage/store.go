package storage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

var (
	prefsBucket  = []byte("preferences")
	titlesBucket = []byte("titles")
	metaBucket   = []byte("metadata")
)

const (
	// KeyDarkMode stores "true" or "false".
	KeyDarkMode = "darkMode"

	keySchemaVersion = "schema_version"
	schemaVersion    = 1

	DefaultTimeout = 1 * time.Second
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, DefaultTimeout)
}

// NewStoreWithTimeout opens the database, waiting at most timeout for the
// file lock held by another process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{prefsBucket, titlesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		meta := tx.Bucket(metaBucket)
		if meta.Get([]byte(keySchemaVersion)) == nil {
			return meta.Put([]byte(keySchemaVersion), []byte(strconv.Itoa(schemaVersion)))
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file location.
func (s *Store) Path() string {
	return s.db.Path()
}

// GetPreference returns the stored value for key and whether it was set.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get([]byte(key))
		if data != nil {
			value = string(data)
			found = true
		}
		return nil
	})
	return value, found, err
}

func (s *Store) SetPreference(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(prefsBucket).Put([]byte(key), []byte(value))
	})
}

// GetDarkMode reports the persisted dark-mode flag. Only the exact value
// "true" enables it; a missing or unrecognised value means light mode.
func (s *Store) GetDarkMode() (bool, error) {
	v, _, err := s.GetPreference(KeyDarkMode)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) SetDarkMode(enabled bool) error {
	return s.SetPreference(KeyDarkMode, strconv.FormatBool(enabled))
}

// RecordTitles adds titles to the suggestion corpus or bumps their count.
// Blank titles are ignored. It returns the stored state of every entry it
// touched, in input order with duplicates removed.
func (s *Store) RecordTitles(source TitleSource, titles ...string) ([]*TitleEntry, error) {
	var touched []*TitleEntry
	now := s.now()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(titlesBucket)
		seen := make(map[string]*TitleEntry, len(titles))
		for _, raw := range titles {
			title := strings.Join(strings.Fields(raw), " ")
			if title == "" {
				continue
			}
			id := TitleID(title)

			entry, ok := seen[id]
			if !ok {
				entry = &TitleEntry{ID: id, Title: title, Source: source, FirstSeen: now}
				if data := b.Get([]byte(id)); data != nil {
					if err := json.Unmarshal(data, entry); err != nil {
						return fmt.Errorf("decoding title %q: %w", id, err)
					}
				}
				seen[id] = entry
				touched = append(touched, entry)
			}
			entry.Count++
			entry.LastSeen = now
			// Backend spellings replace whatever the user typed.
			if source != SourceQuery {
				entry.Title = title
				entry.Source = source
			}

			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}

func (s *Store) GetTitle(title string) (*TitleEntry, error) {
	var entry TitleEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(titlesBucket).Get([]byte(TitleID(title)))
		if data == nil {
			return fmt.Errorf("title not found")
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAllTitles returns the corpus ordered by count, most used first, then
// by title.
func (s *Store) GetAllTitles() ([]*TitleEntry, error) {
	var entries []*TitleEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(titlesBucket).ForEach(func(_ []byte, v []byte) error {
			var entry TitleEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				// skip corrupt entries rather than losing the whole corpus
				return nil
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, err
}

func (s *Store) DeleteTitle(title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(titlesBucket).Delete([]byte(TitleID(title)))
	})
}

// ClearTitles empties the suggestion corpus.
func (s *Store) ClearTitles() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(titlesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(titlesBucket)
		return err
	})
}

// SchemaVersion returns the layout version written when the file was created.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get([]byte(keySchemaVersion))
		if data == nil {
			return nil
		}
		n, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("invalid schema version %q: %w", data, err)
		}
		v = n
		return nil
	})
	return v, err
}
