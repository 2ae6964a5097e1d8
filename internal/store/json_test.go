package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

func testSnapshot() *crawl.Snapshot {
	return &crawl.Snapshot{
		Streets:          []string{"Ahornweg", "Buchenstraße"},
		CompletedQueries: []string{"A", "Bu"},
		StreetNumbers: map[string][]string{
			"Ahornweg": {"1", "2b", "10"},
			"Leerweg":  {},
		},
	}
}

func TestJSONStore_LoadWithoutFilesReturnsNil(t *testing.T) {
	s := NewJSON(t.TempDir())
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestJSONStore_SaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir)

	require.NoError(t, s.Save(context.Background(), testSnapshot()))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, []string{"Ahornweg", "Buchenstraße"}, loaded.Streets)
	assert.Equal(t, []string{"A", "Bu"}, loaded.CompletedQueries)
	assert.Equal(t, []string{"1", "2b", "10"}, loaded.StreetNumbers["Ahornweg"])
	assert.Contains(t, loaded.StreetNumbers, "Leerweg")
}

func TestJSONStore_WritesThreeFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir)

	require.NoError(t, s.Save(context.Background(), testSnapshot()))

	for _, name := range []string{"street_names.json", "completed_queries.json", "street_numbers.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestJSONStore_FilesAreValidStandaloneJSON(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir)
	require.NoError(t, s.Save(context.Background(), testSnapshot()))

	data, err := os.ReadFile(filepath.Join(dir, "street_numbers.json"))
	require.NoError(t, err)

	var numbers map[string][]string
	require.NoError(t, json.Unmarshal(data, &numbers))
	assert.Equal(t, []string{"1", "2b", "10"}, numbers["Ahornweg"])

	// Umlauts stay readable, not escaped.
	names, err := os.ReadFile(filepath.Join(dir, "street_names.json"))
	require.NoError(t, err)
	assert.Contains(t, string(names), "Buchenstraße")
}

func TestJSONStore_SaveOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir)

	require.NoError(t, s.Save(context.Background(), testSnapshot()))

	snap := testSnapshot()
	snap.Streets = append(snap.Streets, "Zeppelinstraße")
	require.NoError(t, s.Save(context.Background(), snap))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Streets, 3)
}

func TestJSONStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewJSON(dir)
	require.NoError(t, s.Save(context.Background(), testSnapshot()))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
}

func TestJSONStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "street_names.json"), []byte("not json"), 0o644))

	s := NewJSON(dir)
	_, err := s.Load(context.Background())
	require.Error(t, err)
}
