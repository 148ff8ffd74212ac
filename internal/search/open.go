package search

import (
	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/storage"
)

// Open returns the bleve engine for indexPath, or the in-memory engine when
// indexPath is empty or the index cannot be opened (another instance may
// hold its lock).
func Open(store *storage.Store, indexPath string) (Suggester, error) {
	if indexPath != "" {
		be, err := NewBleveEngine(store, indexPath)
		if err == nil {
			debuglog.Infof("search: using bleve index at %s", indexPath)
			return be, nil
		}
		debuglog.Warnf("search: bleve index unavailable, falling back to memory: %v", err)
	}
	e, err := NewEngine(store)
	if err != nil {
		return nil, err
	}
	return e, nil
}
