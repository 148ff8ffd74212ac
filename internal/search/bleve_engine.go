package search

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/storage"
)

const titleAnalyzer = "title"

// BleveEngine serves suggestions from an on-disk Bleve index.
type BleveEngine struct {
	store *storage.Store
	idx   bleve.Index
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes
// the current corpus.
func NewBleveEngine(store *storage.Store, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

// newMemBleveEngine builds an engine over an in-memory index.
func newMemBleveEngine(store *storage.Store) (*BleveEngine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	// No stop-word removal: "The" and "A" are significant in film titles.
	_ = im.AddCustomAnalyzer(titleAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	im.DefaultAnalyzer = titleAnalyzer

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = titleAnalyzer
	title.Store = true
	title.IncludeTermVectors = true

	count := bleve.NewNumericFieldMapping()
	count.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("count", count)

	im.DefaultMapping = dm
	return im
}

func titleDoc(e *storage.TitleEntry) map[string]any {
	return map[string]any{
		"title": e.Title,
		"count": float64(e.Count),
	}
}

func (b *BleveEngine) reindexAll() error {
	if b.store == nil {
		return nil
	}
	entries, err := b.store.GetAllTitles()
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, e := range entries {
		if err := batch.Index(e.ID, titleDoc(e)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveEngine) Suggest(query string, limit int) ([]*Suggestion, error) {
	if !suggestable(query) || limit <= 0 {
		return []*Suggestion{}, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Suggestion{}, nil
	}

	// Every term must hit a title word, exactly (boosted) or as a prefix.
	var perTerm []bleveQuery.Query
	for _, term := range terms {
		exact := bleve.NewTermQuery(term)
		exact.SetField("title")
		exact.SetBoost(2.0)

		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField("title")
		prefix.SetBoost(1.0)

		perTerm = append(perTerm, bleve.NewDisjunctionQuery(exact, prefix))
	}
	q := bleve.NewConjunctionQuery(perTerm...)

	queryID := storage.TitleID(query)
	// one extra hit in case the typed title itself is in the index
	srch := bleve.NewSearchRequestOptions(q, limit+1, 0, false)
	srch.Fields = []string{"title", "count"}
	res, err := b.idx.Search(srch)
	if err != nil {
		return nil, err
	}

	out := make([]*Suggestion, 0, len(res.Hits))
	for _, h := range res.Hits {
		if h.ID == queryID {
			continue
		}
		s := &Suggestion{Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			s.Title = t
		}
		if c, ok := h.Fields["count"].(float64); ok {
			s.Count = int(c)
		}
		if s.Title == "" {
			continue
		}
		s.Score *= 1.0 + 0.1*math.Log1p(float64(s.Count))
		out = append(out, s)
	}
	sortSuggestions(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// OnTitlesRecorded indexes the provided entries.
func (b *BleveEngine) OnTitlesRecorded(entries []*storage.TitleEntry) {
	batch := b.idx.NewBatch()
	for _, e := range entries {
		if e == nil || e.ID == "" {
			continue
		}
		_ = batch.Index(e.ID, titleDoc(e))
	}
	if err := b.idx.Batch(batch); err != nil {
		debuglog.Warnf("indexing %d titles: %v", len(entries), err)
	}
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}
