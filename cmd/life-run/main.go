// Command life-run drives the Life engine without a window. It loads a pattern
// and stamps structures, advances the grid, and writes the result in the save
// format.
//
//	life-run -pattern start.txt -stamp glider@10,10 -steps 100 -out end.txt
//	life-run -stamp glider-gun@1,1 -duration 5s -interval 20
//	life-run -pattern start.txt -steps 200 -sweep
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"lifegrid/internal/app"
	"lifegrid/pkg/core"
	"lifegrid/pkg/sims/life"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "life-run:", err)
		os.Exit(1)
	}
}

type stamp struct {
	kind life.Structure
	at   core.Coord
}

// parseStamp reads "name@x,y".
func parseStamp(s string) (stamp, error) {
	name, pos, ok := strings.Cut(s, "@")
	if !ok {
		return stamp{}, fmt.Errorf("stamp %q: want name@x,y", s)
	}
	kind, err := life.ParseStructure(name)
	if err != nil {
		return stamp{}, err
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return stamp{}, fmt.Errorf("stamp %q: want name@x,y", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if err := errors.Join(errX, errY); err != nil {
		return stamp{}, fmt.Errorf("stamp %q: %w", s, err)
	}
	return stamp{kind: kind, at: core.Coord{X: x, Y: y}}, nil
}

type options struct {
	steps    int
	duration time.Duration
	out      string
	fill     float64
	sweep    bool
	workers  int
	stamps   []stamp
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("life-run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := app.NewConfig()
	cfg.Bind(fs)

	opts := options{workers: runtime.NumCPU()}
	fs.IntVar(&opts.steps, "steps", 100, "generations to step synchronously")
	fs.DurationVar(&opts.duration, "duration", 0, "run on the scheduler for this long instead of -steps")
	fs.StringVar(&opts.out, "out", "-", "output file for the final pattern (- for stdout)")
	fs.Float64Var(&opts.fill, "fill", 0, "randomly fill the whole grid with this density before stamping")
	fs.BoolVar(&opts.sweep, "sweep", false, "step the starting pattern under every rule and print a population table")
	fs.IntVar(&opts.workers, "workers", opts.workers, "worker goroutines for -sweep")
	fs.Func("stamp", "stamp a structure, name@x,y (repeatable)", func(s string) error {
		st, err := parseStamp(s)
		if err != nil {
			return err
		}
		opts.stamps = append(opts.stamps, st)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Resolve(fs); err != nil {
		return err
	}
	if opts.steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", opts.steps)
	}

	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	lc, err := cfg.LifeConfig()
	if err != nil {
		return err
	}
	sim := life.NewWithConfig(lc)
	ctrl := app.NewController(sim, cfg.IntervalMs, logger)
	defer ctrl.Close()

	if err := seed(ctrl, cfg, opts); err != nil {
		return err
	}

	if opts.sweep {
		return sweep(context.Background(), sim, opts, stdout, logger)
	}

	start := time.Now()
	if opts.duration > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
		defer cancel()
		ctrl.Run()
		<-ctx.Done()
		ctrl.Pause()
	} else {
		for i := 0; i < opts.steps; i++ {
			ctrl.StepOnce()
		}
	}
	logger.Info("Run finished.",
		"generation", sim.Generation(),
		"population", sim.Population(),
		"rule", sim.ActiveRule().Name,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return writePattern(ctrl, opts.out, stdout)
}

func seed(ctrl *app.Controller, cfg *app.Config, opts options) error {
	if opts.fill > 0 && cfg.Pattern != "" {
		return errors.New("-fill and -pattern both replace the whole grid; use one")
	}
	if opts.fill > 0 {
		if !ctrl.SetDensity(opts.fill) {
			return fmt.Errorf("fill density must be in (0,1], got %g", opts.fill)
		}
		ctrl.Randomize(core.Coord{}, ctrl.Sim().Size())
	}
	if cfg.Pattern != "" {
		if _, err := ctrl.LoadFile(cfg.Pattern); err != nil {
			return err
		}
	}
	for _, st := range opts.stamps {
		ctrl.Stamp(st.kind, st.at)
	}
	return nil
}

func writePattern(ctrl *app.Controller, out string, stdout io.Writer) error {
	if out == "" || out == "-" {
		return ctrl.Save(stdout)
	}
	return ctrl.SaveFile(out)
}

type sweepResult struct {
	rule       life.Rule
	population int
}

// sweep steps a copy of the starting grid under each rule in the table.
func sweep(ctx context.Context, start *life.Life, opts options, stdout io.Writer, logger *slog.Logger) error {
	rules := start.Rules()
	initial, err := life.Deserialize(start.Serialize())
	if err != nil {
		return err
	}
	size := start.Size()
	results := make([]sweepResult, len(rules))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.workers))
	for i := range rules {
		g.Go(func() error {
			sim := life.NewWithConfig(life.Config{Width: size.W, Height: size.H, Rule: i, Rules: rules})
			sim.Initialize(initial)
			for n := 0; n < opts.steps; n++ {
				if n%64 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				sim.Step()
			}
			results[i] = sweepResult{rule: rules[i], population: sim.Population()}
			logger.Debug("Sweep finished rule.", "rule", rules[i].Name, "population", results[i].population)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "rule\tnotation\tpopulation after %d\n", opts.steps)
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", res.rule.Name, res.rule.Notation(), res.population)
	}
	return tw.Flush()
}
