// Package store persists crawl snapshots. Three backends share one
// interface: JSON files in a data directory (the default), a single SQLite
// database, and Postgres for shared or remote state.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

// Store loads and saves crawl snapshots.
type Store interface {
	// Load returns the persisted snapshot, or nil when no prior state exists.
	Load(ctx context.Context) (*crawl.Snapshot, error)

	// Save writes the full snapshot, replacing any previous one.
	Save(ctx context.Context, snap *crawl.Snapshot) error

	// Close releases backend resources.
	Close() error
}

// RunRecorder is implemented by backends that keep a log of crawl runs.
type RunRecorder interface {
	// StartRun records the beginning of a crawl run and returns its id.
	StartRun(ctx context.Context, phase string) (string, error)

	// FinishRun records completion counts for a run.
	FinishRun(ctx context.Context, runID string, streets, numbers int) error
}

// Options selects and configures a backend.
type Options struct {
	Driver      string // json | sqlite | postgres
	DataDir     string // json driver
	SQLitePath  string // sqlite driver
	DatabaseURL string // postgres driver
}

// Open creates the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "json":
		return NewJSON(opts.DataDir), nil
	case "sqlite":
		return NewSQLite(ctx, opts.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q (valid: json, sqlite, postgres)", opts.Driver)
	}
}
