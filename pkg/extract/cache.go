package extract

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// snapshot is the on-disk form of a memoized extract.
type snapshot struct {
	Header []string
	Rows   [][]string
}

func (e *Extractor) cachePath(stem string) string {
	return filepath.Join(e.cfg.CacheDir, stem+".gob")
}

func (e *Extractor) readCache(stem string) (*Table, bool, error) {
	f, err := os.Open(e.cachePath(stem))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open cache file for %s: %w", stem, err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache file for %s: %w", stem, err)
	}

	return NewTable(stem, snap.Header, snap.Rows), true, nil
}

func (e *Extractor) writeCache(stem string, t *Table) error {
	if err := os.MkdirAll(e.cfg.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	f, err := os.Create(e.cachePath(stem))
	if err != nil {
		return fmt.Errorf("failed to create cache file for %s: %w", stem, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snapshot{Header: t.Header, Rows: t.Rows}); err != nil {
		return fmt.Errorf("failed to encode cache file for %s: %w", stem, err)
	}

	return nil
}
