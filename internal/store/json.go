package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

// Snapshot file names inside the data directory.
const (
	streetNamesFile      = "street_names.json"
	completedQueriesFile = "completed_queries.json"
	streetNumbersFile    = "street_numbers.json"
)

// JSONStore persists snapshots as three JSON files in a directory. Each
// save rewrites the files whole, via temp file and rename so a crash
// mid-write never leaves a truncated file behind.
type JSONStore struct {
	dir string
}

// NewJSON creates a JSONStore rooted at dir ("." when empty).
func NewJSON(dir string) *JSONStore {
	if dir == "" {
		dir = "."
	}
	return &JSONStore{dir: dir}
}

// Load reads the snapshot files that exist. Returns nil when none do.
func (s *JSONStore) Load(ctx context.Context) (*crawl.Snapshot, error) {
	log := zap.L().With(zap.String("component", "store.json"))
	snap := &crawl.Snapshot{StreetNumbers: make(map[string][]string)}
	found := false

	ok, err := readJSONFile(filepath.Join(s.dir, streetNamesFile), &snap.Streets)
	if err != nil {
		return nil, err
	}
	if ok {
		found = true
		log.Info("loaded street names", zap.Int("count", len(snap.Streets)))
	}

	ok, err = readJSONFile(filepath.Join(s.dir, completedQueriesFile), &snap.CompletedQueries)
	if err != nil {
		return nil, err
	}
	if ok {
		found = true
		log.Info("loaded completed queries", zap.Int("count", len(snap.CompletedQueries)))
	}

	ok, err = readJSONFile(filepath.Join(s.dir, streetNumbersFile), &snap.StreetNumbers)
	if err != nil {
		return nil, err
	}
	if ok {
		found = true
		log.Info("loaded house numbers", zap.Int("streets", len(snap.StreetNumbers)))
	}

	if !found {
		return nil, nil
	}
	return snap, nil
}

// Save writes all three snapshot files.
func (s *JSONStore) Save(ctx context.Context, snap *crawl.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrapf(err, "store: create data dir %s", s.dir)
	}

	if err := writeJSONFile(filepath.Join(s.dir, streetNamesFile), snap.Streets); err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(s.dir, completedQueriesFile), snap.CompletedQueries); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(s.dir, streetNumbersFile), snap.StreetNumbers)
}

// Close is a no-op for the file backend.
func (s *JSONStore) Close() error { return nil }

func readJSONFile(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "store: read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, eris.Wrapf(err, "store: decode %s", path)
	}
	return true, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "store: encode %s", path)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "store: rename %s", path)
	}
	return nil
}
