package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

// SQLiteStore persists snapshots in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS streets (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS completed_queries (
	prefix TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS processed_streets (
	street TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS house_numbers (
	street TEXT NOT NULL,
	number TEXT NOT NULL,
	PRIMARY KEY (street, number)
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	phase       TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	streets     INTEGER,
	numbers     INTEGER
);
`

// NewSQLite opens (creating if needed) the database at path and configures
// WAL mode.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "streetcrawl.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full snapshot. Returns nil when the database is empty.
func (s *SQLiteStore) Load(ctx context.Context) (*crawl.Snapshot, error) {
	snap := &crawl.Snapshot{StreetNumbers: make(map[string][]string)}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM streets ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select streets")
	}
	if err := scanStrings(rows, &snap.Streets); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT prefix FROM completed_queries ORDER BY prefix`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select completed queries")
	}
	if err := scanStrings(rows, &snap.CompletedQueries); err != nil {
		return nil, err
	}

	var processed []string
	rows, err = s.db.QueryContext(ctx, `SELECT street FROM processed_streets`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select processed streets")
	}
	if err := scanStrings(rows, &processed); err != nil {
		return nil, err
	}
	for _, street := range processed {
		snap.StreetNumbers[street] = nil
	}

	rows, err = s.db.QueryContext(ctx, `SELECT street, number FROM house_numbers`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select house numbers")
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var street, number string
		if err := rows.Scan(&street, &number); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan house number")
		}
		snap.StreetNumbers[street] = append(snap.StreetNumbers[street], number)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate house numbers")
	}

	if len(snap.Streets) == 0 && len(snap.CompletedQueries) == 0 && len(snap.StreetNumbers) == 0 {
		return nil, nil
	}
	for _, numbers := range snap.StreetNumbers {
		crawl.SortHouseNumbers(numbers)
	}
	return snap, nil
}

// Save upserts the snapshot in one transaction. Merges are monotonic so
// INSERT OR IGNORE suffices; nothing is ever deleted.
func (s *SQLiteStore) Save(ctx context.Context, snap *crawl.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range snap.Streets {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO streets (name) VALUES (?)`, name); err != nil {
			return eris.Wrap(err, "sqlite: insert street")
		}
	}
	for _, prefix := range snap.CompletedQueries {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO completed_queries (prefix) VALUES (?)`, prefix); err != nil {
			return eris.Wrap(err, "sqlite: insert completed query")
		}
	}
	for street, numbers := range snap.StreetNumbers {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO processed_streets (street) VALUES (?)`, street); err != nil {
			return eris.Wrap(err, "sqlite: insert processed street")
		}
		for _, number := range numbers {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO house_numbers (street, number) VALUES (?, ?)`, street, number); err != nil {
				return eris.Wrap(err, "sqlite: insert house number")
			}
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

// StartRun records the beginning of a crawl run.
func (s *SQLiteStore) StartRun(ctx context.Context, phase string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, phase, started_at) VALUES (?, ?, ?)`,
		id, phase, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}
	return id, nil
}

// FinishRun records completion counts for a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, streets, numbers int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, streets = ?, numbers = ? WHERE id = ?`,
		time.Now().UTC(), streets, numbers, runID,
	)
	return eris.Wrap(err, "sqlite: finish run")
}

func scanStrings(rows *sql.Rows, out *[]string) error {
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return eris.Wrap(err, "sqlite: scan row")
		}
		*out = append(*out, v)
	}
	return eris.Wrap(rows.Err(), "sqlite: iterate rows")
}
