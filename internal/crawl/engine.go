package crawl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Saver persists crawl snapshots. Satisfied by the store implementations.
type Saver interface {
	Save(ctx context.Context, snap *Snapshot) error
}

// Options configures an engine run.
type Options struct {
	StreetsOnly bool // stop after the street phase
	NumbersOnly bool // skip the street phase even if no streets are loaded
	Force       bool // re-run the street phase over already-completed prefixes
	Workers     int  // parallel streets during the number phase; <=1 is sequential
	SaveEvery   int  // snapshot cadence in streets during the number phase
}

// Engine drives a full crawl: street collection first, then house-number
// collection per street, with periodic snapshots so either phase can be
// resumed after interruption.
type Engine struct {
	state     *State
	suggester Suggester
	saver     Saver
	pruner    *Pruner
	explorer  *Explorer
}

// NewEngine creates an engine over the given state, autocomplete client,
// and snapshot store.
func NewEngine(state *State, suggester Suggester, saver Saver) *Engine {
	return &Engine{
		state:     state,
		suggester: suggester,
		saver:     saver,
		pruner:    NewGermanPruner(),
		explorer:  NewExplorer(),
	}
}

// Run executes both crawl phases. The street phase is skipped when streets
// are already loaded (unless Force); each street is skipped when it is
// already present in the number index. A save failure aborts the run: a
// partial snapshot on disk beats silently losing computed results.
func (e *Engine) Run(ctx context.Context, opts Options) error {
	log := zap.L().With(zap.String("component", "crawl.engine"))

	if opts.SaveEvery <= 0 {
		opts.SaveEvery = 50
	}

	if !opts.NumbersOnly {
		if e.state.StreetCount() == 0 || opts.Force {
			if opts.Force {
				e.state.ClearCompletedQueries()
			}
			if err := e.collectStreets(ctx); err != nil {
				return err
			}
			if err := e.save(ctx); err != nil {
				return err
			}
			log.Info("street collection complete",
				zap.Int("streets", e.state.StreetCount()),
				zap.Int("completed_queries", e.state.CompletedCount()),
			)
		} else {
			log.Info("streets already loaded, skipping street phase",
				zap.Int("streets", e.state.StreetCount()),
			)
		}
	}

	if opts.StreetsOnly {
		return nil
	}

	if err := e.collectNumbers(ctx, opts); err != nil {
		return err
	}
	if err := e.save(ctx); err != nil {
		return err
	}

	log.Info("crawl complete",
		zap.Int("streets", e.state.StreetCount()),
		zap.Int("streets_with_numbers", e.state.ProcessedStreetCount()),
		zap.Int("house_numbers", e.state.NumberCount()),
	)
	return nil
}

// collectStreets explores the street namespace from every seed letter.
func (e *Engine) collectStreets(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "crawl.engine"))
	scope := &streetScope{state: e.state, suggester: e.suggester, pruner: e.pruner}

	for _, letter := range SeedLetters {
		start := time.Now()
		if err := e.explorer.Explore(ctx, scope, string(letter)); err != nil {
			return eris.Wrapf(err, "engine: explore letter %q", string(letter))
		}
		log.Info("letter done",
			zap.String("letter", string(letter)),
			zap.Int("streets_total", e.state.StreetCount()),
			zap.Int("completed_total", e.state.CompletedCount()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}

// collectNumbers explores house numbers for every known street, snapshotting
// every SaveEvery streets. With Workers > 1 streets are processed in
// parallel; all state mutation stays serialized behind the state's mutex.
func (e *Engine) collectNumbers(ctx context.Context, opts Options) error {
	log := zap.L().With(zap.String("component", "crawl.engine"))

	streets := e.state.Streets()
	total := len(streets)
	log.Info("starting house-number collection", zap.Int("streets", total))

	var processed, skipped atomic.Int64

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, street := range streets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if e.state.StreetDone(street) {
				log.Debug("street already processed, skipping", zap.String("street", street))
				skipped.Add(1)
				return nil
			}

			if err := e.collectStreetNumbers(gctx, street); err != nil {
				return err
			}

			n := processed.Add(1)
			if n%10 == 0 {
				log.Info("progress",
					zap.Int64("processed", n),
					zap.Int64("skipped", skipped.Load()),
					zap.Int("total", total),
				)
			}
			if n%int64(opts.SaveEvery) == 0 {
				if err := e.save(gctx); err != nil {
					return err
				}
				log.Info("progress saved", zap.Int64("processed", n), zap.Int("total", total))
			}
			return nil
		})
	}

	return g.Wait()
}

// collectStreetNumbers explores all house numbers of one street. The street
// key is recorded up front: key presence is what marks the street visited
// on resume, and a street may legitimately end with zero numbers.
func (e *Engine) collectStreetNumbers(ctx context.Context, street string) error {
	e.state.EnsureStreet(street)

	scope := &numberScope{state: e.state, suggester: e.suggester, street: street}
	for _, digit := range SeedDigits {
		if err := e.explorer.Explore(ctx, scope, string(digit)); err != nil {
			return eris.Wrapf(err, "engine: explore numbers for %q", street)
		}
	}
	return nil
}

func (e *Engine) save(ctx context.Context) error {
	if err := e.saver.Save(ctx, e.state.Snapshot()); err != nil {
		return eris.Wrap(err, "engine: save snapshot")
	}
	return nil
}
