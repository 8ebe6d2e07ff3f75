package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rustyeddy/combo/sim"
	"github.com/spf13/cobra"
)

type runOptions struct {
	Seed        string
	Duration    time.Duration
	CandleEvery time.Duration
}

func newRunCmd(rc *rootConfig) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless play session",
		Long: `Start the tick loop, append a new candle at a fixed interval, log every
finalized candle and print a summary when the session ends.

Examples:
  combo run --duration 10s --candle-every 500ms
  combo run --seed replay-1 --log-format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.CandleEvery <= 0 {
				return fmt.Errorf("--candle-every must be positive")
			}
			if opts.Duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			clock := clockwork.NewRealClock()
			engineOpts := []sim.Option{sim.WithClock(clock), sim.WithLogger(rc.log)}
			if opts.Seed != "" {
				engineOpts = append(engineOpts, sim.WithSource(sim.NewRandSource(sim.SeedFromString(opts.Seed))))
			}

			e, err := sim.NewEngine(rc.cfg, engineOpts...)
			if err != nil {
				return err
			}

			sum := runSession(ctx, e, clock, *opts, rc.log)
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "replay key for the random source (random when empty)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 5*time.Second, "session length")
	cmd.Flags().DurationVar(&opts.CandleEvery, "candle-every", time.Second, "interval between new candles")

	return cmd
}

// runSession plays e until the duration elapses or ctx is cancelled,
// appending a candle every CandleEvery.
func runSession(ctx context.Context, e *sim.Engine, clock clockwork.Clock, opts runOptions, log *slog.Logger) sim.Summary {
	e.Start()

	ticker := clock.NewTicker(opts.CandleEvery)
	defer ticker.Stop()
	deadline := clock.NewTimer(opts.Duration)
	defer deadline.Stop()

	log.Info("session started",
		"duration", opts.Duration,
		"candle_every", opts.CandleEvery,
		"tick_period", e.Config().Tick.Period)

	for {
		select {
		case <-ticker.Chan():
			next := e.AddCandle()
			s := e.State()
			prev := s.Candles[len(s.Candles)-2]
			log.Info("candle finalized",
				"id", prev.ID,
				"close", prev.Close,
				"target_min", prev.Target.Min,
				"target_max", prev.Target.Max,
				"in_target", prev.InTarget,
				"next_combo", next.ComboCount)
		case <-deadline.Chan():
			log.Info("session finished")
			e.Stop()
			return sim.Summarize(e.State())
		case <-ctx.Done():
			log.Info("session interrupted", "error", ctx.Err())
			e.Stop()
			return sim.Summarize(e.State())
		}
	}
}

func printSummary(w io.Writer, sum sim.Summary) {
	fmt.Fprintln(w, "=== Session Summary ===")
	fmt.Fprintf(w, "Candles:     %d\n", sum.Candles)
	fmt.Fprintf(w, "Scored:      %d / %d (%.1f%%)\n", sum.Hits, sum.Finalized, sum.HitRate*100)
	fmt.Fprintf(w, "Best combo:  %d\n", sum.BestCombo)
	fmt.Fprintf(w, "Combo now:   %d\n", sum.Combo)
}
