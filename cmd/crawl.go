package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
	"github.com/geodaten-labs/streetcrawl/internal/store"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the crawl to completion, resuming from persisted state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "crawl"))

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		state, err := loadState(ctx, st)
		if err != nil {
			return err
		}

		streetsOnly, _ := cmd.Flags().GetBool("streets-only")
		numbersOnly, _ := cmd.Flags().GetBool("numbers-only")
		force, _ := cmd.Flags().GetBool("force")
		workers, _ := cmd.Flags().GetInt("workers")
		if streetsOnly && numbersOnly {
			return eris.New("--streets-only and --numbers-only are mutually exclusive")
		}
		if workers <= 0 {
			workers = cfg.Crawl.Workers
		}

		var runID string
		recorder, records := st.(store.RunRecorder)
		if records {
			runID, err = recorder.StartRun(ctx, phaseName(streetsOnly, numbersOnly))
			if err != nil {
				return err
			}
		}

		engine := crawl.NewEngine(state, newSuggestClient(), st)
		if err := engine.Run(ctx, crawl.Options{
			StreetsOnly: streetsOnly,
			NumbersOnly: numbersOnly,
			Force:       force,
			Workers:     workers,
			SaveEvery:   cfg.Crawl.SaveEvery,
		}); err != nil {
			return eris.Wrap(err, "crawl")
		}

		if records {
			if err := recorder.FinishRun(ctx, runID, state.StreetCount(), state.NumberCount()); err != nil {
				log.Warn("failed to record run completion", zap.Error(err))
			}
		}

		log.Info("done",
			zap.Int("streets", state.StreetCount()),
			zap.Int("streets_with_numbers", state.ProcessedStreetCount()),
			zap.Int("house_numbers", state.NumberCount()),
		)
		return nil
	},
}

func phaseName(streetsOnly, numbersOnly bool) string {
	switch {
	case streetsOnly:
		return "streets"
	case numbersOnly:
		return "numbers"
	default:
		return "full"
	}
}

func init() {
	crawlCmd.Flags().Bool("streets-only", false, "collect street names only")
	crawlCmd.Flags().Bool("numbers-only", false, "skip street collection even when no streets are loaded")
	crawlCmd.Flags().Bool("force", false, "re-run street collection over already-completed prefixes")
	crawlCmd.Flags().Int("workers", 0, "parallel streets during house-number collection (default from config)")
	rootCmd.AddCommand(crawlCmd)
}
