package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
	"github.com/geodaten-labs/streetcrawl/internal/fetcher"
	"github.com/geodaten-labs/streetcrawl/internal/resilience"
	"github.com/geodaten-labs/streetcrawl/internal/store"
	"github.com/geodaten-labs/streetcrawl/internal/suggest"
)

// openStore opens the snapshot backend selected by the configuration.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		DataDir:     cfg.Store.DataDir,
		SQLitePath:  cfg.Store.SQLitePath,
		DatabaseURL: cfg.Store.DatabaseURL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// loadState opens the store and rehydrates crawl state from it.
func loadState(ctx context.Context, st store.Store) (*crawl.State, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load snapshot")
	}
	state := crawl.NewState()
	state.Restore(snap)
	return state, nil
}

// newSuggestClient builds the autocomplete client from the configuration.
func newSuggestClient() *suggest.Client {
	return suggest.NewHTTP(
		fetcher.Options{
			UserAgent:         cfg.HTTP.UserAgent,
			Timeout:           time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			Retry: resilience.RetryConfig{
				MaxAttempts: cfg.HTTP.MaxRetries,
			},
		},
		suggest.Endpoints{
			StreetURL: cfg.Service.StreetURL,
			NumberURL: cfg.Service.NumberURL,
		},
	)
}
