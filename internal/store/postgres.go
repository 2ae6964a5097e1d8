package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore persists snapshots in Postgres, for crawls whose state is
// shared between machines.
type PostgresStore struct {
	pool Pool
}

const postgresMigration = `
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
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	streets     INTEGER,
	numbers     INTEGER
);
`

// NewPostgres creates a PostgresStore with a connection pool and runs the
// migration.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	s := &PostgresStore{pool: pool}
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: migrate")
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Load reads the full snapshot. Returns nil when all tables are empty.
func (s *PostgresStore) Load(ctx context.Context) (*crawl.Snapshot, error) {
	snap := &crawl.Snapshot{StreetNumbers: make(map[string][]string)}

	if err := s.queryStrings(ctx, `SELECT name FROM streets ORDER BY name`, &snap.Streets); err != nil {
		return nil, err
	}
	if err := s.queryStrings(ctx, `SELECT prefix FROM completed_queries ORDER BY prefix`, &snap.CompletedQueries); err != nil {
		return nil, err
	}

	var processed []string
	if err := s.queryStrings(ctx, `SELECT street FROM processed_streets`, &processed); err != nil {
		return nil, err
	}
	for _, street := range processed {
		snap.StreetNumbers[street] = nil
	}

	rows, err := s.pool.Query(ctx, `SELECT street, number FROM house_numbers`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select house numbers")
	}
	defer rows.Close()
	for rows.Next() {
		var street, number string
		if err := rows.Scan(&street, &number); err != nil {
			return nil, eris.Wrap(err, "postgres: scan house number")
		}
		snap.StreetNumbers[street] = append(snap.StreetNumbers[street], number)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate house numbers")
	}

	if len(snap.Streets) == 0 && len(snap.CompletedQueries) == 0 && len(snap.StreetNumbers) == 0 {
		return nil, nil
	}
	for _, numbers := range snap.StreetNumbers {
		crawl.SortHouseNumbers(numbers)
	}
	return snap, nil
}

// Save upserts the snapshot in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *crawl.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, name := range snap.Streets {
		if _, err := tx.Exec(ctx, `INSERT INTO streets (name) VALUES ($1) ON CONFLICT DO NOTHING`, name); err != nil {
			return eris.Wrap(err, "postgres: insert street")
		}
	}
	for _, prefix := range snap.CompletedQueries {
		if _, err := tx.Exec(ctx, `INSERT INTO completed_queries (prefix) VALUES ($1) ON CONFLICT DO NOTHING`, prefix); err != nil {
			return eris.Wrap(err, "postgres: insert completed query")
		}
	}
	for street, numbers := range snap.StreetNumbers {
		if _, err := tx.Exec(ctx, `INSERT INTO processed_streets (street) VALUES ($1) ON CONFLICT DO NOTHING`, street); err != nil {
			return eris.Wrap(err, "postgres: insert processed street")
		}
		for _, number := range numbers {
			if _, err := tx.Exec(ctx, `INSERT INTO house_numbers (street, number) VALUES ($1, $2) ON CONFLICT DO NOTHING`, street, number); err != nil {
				return eris.Wrap(err, "postgres: insert house number")
			}
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save")
}

// StartRun records the beginning of a crawl run.
func (s *PostgresStore) StartRun(ctx context.Context, phase string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, phase, started_at) VALUES ($1, $2, $3)`,
		id, phase, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert run")
	}
	return id, nil
}

// FinishRun records completion counts for a run.
func (s *PostgresStore) FinishRun(ctx context.Context, runID string, streets, numbers int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET finished_at = $1, streets = $2, numbers = $3 WHERE id = $4`,
		time.Now().UTC(), streets, numbers, runID,
	)
	return eris.Wrap(err, "postgres: finish run")
}

func (s *PostgresStore) queryStrings(ctx context.Context, sql string, out *[]string) error {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return eris.Wrapf(err, "postgres: query %s", sql)
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return eris.Wrap(err, "postgres: scan row")
		}
		*out = append(*out, v)
	}
	return eris.Wrap(rows.Err(), "postgres: iterate rows")
}
