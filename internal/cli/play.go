package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rustyeddy/combo/market"
	"github.com/rustyeddy/combo/sim"
	"github.com/spf13/cobra"
)

const playHelp = `commands:
  add                  append a candle and select it
  set <field> <value>  edit open|high|low|close (o/h/l/c) of the selection
  select <i>           move the cursor
  start | stop | toggle
  show                 print the selected candle
  quit`

func newPlayCmd(rc *rootConfig) *cobra.Command {
	var seed string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive the engine interactively from stdin",
		Long: `Read one command per line and apply it to a fresh engine. The selected
candle is printed after every command that changed the state. EOF or quit
ends the session and prints the summary.

` + playHelp + `

Examples:
  combo play
  printf 'add\nset close 120\nquit\n' | combo play --seed replay-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engineOpts := []sim.Option{sim.WithClock(clockwork.NewRealClock()), sim.WithLogger(rc.log)}
			if seed != "" {
				engineOpts = append(engineOpts, sim.WithSource(sim.NewRandSource(sim.SeedFromString(seed))))
			}

			e, err := sim.NewEngine(rc.cfg, engineOpts...)
			if err != nil {
				return err
			}

			sum, err := playSession(e, cmd.InOrStdin(), cmd.OutOrStdout(), rc.log)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "replay key for the random source (random when empty)")
	return cmd
}

// playSession applies the commands read from in until EOF or quit. Command
// errors are reported on out and do not end the session; only a read error
// does.
func playSession(e *sim.Engine, in io.Reader, out io.Writer, log *slog.Logger) (sim.Summary, error) {
	// ticks notify from the play loop goroutine
	var changes atomic.Uint64
	unsubscribe := e.Subscribe(func() {
		changes.Add(1)
		s := e.State()
		if c, ok := s.Selected(); ok {
			log.Debug("state changed", "selected", s.SelectedIndex, "close", c.Close, "playing", s.IsPlaying)
		}
	})
	defer unsubscribe()
	defer e.Stop()

	fmt.Fprintln(out, playHelp)
	printSelected(out, e.State())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}

		before := changes.Load()
		if err := applyCommand(e, fields, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if changes.Load() != before {
			printSelected(out, e.State())
		}
	}
	if err := scanner.Err(); err != nil {
		return sim.Summary{}, fmt.Errorf("read commands: %w", err)
	}

	e.Stop()
	return sim.Summarize(e.State()), nil
}

func applyCommand(e *sim.Engine, fields []string, out io.Writer) error {
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "add":
		e.AddCandle()
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <field> <value>")
		}
		f, err := market.ParseField(args[0])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", args[1], err)
		}
		return e.UpdateField(f, v)
	case "select":
		if len(args) != 1 {
			return fmt.Errorf("usage: select <i>")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad index %q: %w", args[0], err)
		}
		return e.SetSelectedIndex(i)
	case "start":
		e.Start()
	case "stop":
		e.Stop()
	case "toggle":
		e.TogglePlay()
	case "show":
		printSelected(out, e.State())
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printSelected(w io.Writer, s sim.State) {
	c, ok := s.Selected()
	if !ok {
		fmt.Fprintln(w, "no candle selected")
		return
	}

	status := "paused"
	if s.IsPlaying {
		status = "playing"
	}
	fmt.Fprintf(w, "#%d/%d O %.2f H %.2f L %.2f C %.2f target [%.2f, %.2f] combo %d %s\n",
		s.SelectedIndex, len(s.Candles),
		c.Open, c.High, c.Low, c.Close,
		c.Target.Min, c.Target.Max,
		c.ComboCount, status)
}
